package main

import "github.com/bryanchriswhite/FocusVibrance/cmd/focusvibrance/commands"

func main() {
	commands.Execute()
}
