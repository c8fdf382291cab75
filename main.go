package main

import "github.com/raysh454/promptlab/internal/cli"

func main() {
	cli.Execute()
}
