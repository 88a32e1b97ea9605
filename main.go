package main

import "github.com/lizzy-go/lizzy/cmd"

func main() {
	cmd.Execute()
}
