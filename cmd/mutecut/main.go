package main

import "github.com/forPelevin/mutecut/internal/cli"

func main() {
	cli.Main()
}
