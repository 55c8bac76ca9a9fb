package main

import "viralclip/internal/cli"

func main() {
	cli.Main()
}
