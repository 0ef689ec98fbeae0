package main

import "github.com/star/tlehist/internal/cli"

func main() {
	cli.Execute()
}
