package main

import (
	"os"

	"github.com/pedrokkrause/fourier-ephem/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
