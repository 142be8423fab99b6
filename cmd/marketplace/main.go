package main

import "github.com/dimitribekale/ai-marketplace/internal/cli"

func main() {
	cli.Execute()
}
