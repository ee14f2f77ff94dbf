package main

import "collabCanvas/cmd/commands"

func main() {
	commands.Execute()
}
