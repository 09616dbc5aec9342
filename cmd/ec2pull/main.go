package main

import (
	"os"

	"github.com/pratik-mahalle/ec2pull/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
