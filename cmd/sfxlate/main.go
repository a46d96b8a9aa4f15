package main

import "sfxlate/internal/cli"

func main() {
	cli.Execute()
}
