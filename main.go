package main

import "github.com/Alturino/focushoney/cmd"

func main() {
	cmd.Start()
}
