package main

import "clearance/internal/cli"

func main() {
	cli.Execute()
}
