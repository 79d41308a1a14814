package main

import "linknorm/internal/cli"

func main() {
	cli.Execute()
}
