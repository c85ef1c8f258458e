package main

import "vecspace/internal/cli"

func main() {
	cli.Execute()
}
