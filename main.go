package main

import "loclint/internal/cli"

func main() {
	cli.Execute()
}
