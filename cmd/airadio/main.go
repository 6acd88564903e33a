package main

import "github.com/timmfy/ai-radio/internal/cli"

func main() {
	cli.Execute()
}
