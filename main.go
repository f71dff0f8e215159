package main

import "github.com/robalobadob/ycdle/internal/cli"

func main() {
	cli.Execute()
}
