package main

import "github.com/lepinkainen/flicklog/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
