package main

import (
	"os"

	"audiobook-storefront/app/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
