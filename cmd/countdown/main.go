package main

import "countdown/internal/cli"

func main() {
	cli.Execute()
}
