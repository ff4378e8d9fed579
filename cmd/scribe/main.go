package main

import "github.com/mvp-joe/project-scribe/internal/cli"

func main() {
	cli.Execute()
}
