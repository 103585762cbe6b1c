package main

import (
	"pairsniper/internal/cli"
)

func main() {
	cli.Execute()
}
