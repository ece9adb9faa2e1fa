package main

import "axiom/internal/cli"

func main() {
	cli.Execute()
}
