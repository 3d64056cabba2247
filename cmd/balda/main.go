package main

import "github.com/mcoot/baldagame/internal/cli"

func main() {
	cli.Execute()
}
