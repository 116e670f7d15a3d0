package main

import "mcumeson/internal/cli"

func main() {
	cli.Execute()
}
