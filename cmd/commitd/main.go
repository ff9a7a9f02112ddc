package main

import (
	"fmt"
	"os"

	"github.com/commitd-io/commitd/cmd/commitd/daemon"
)

func main() {
	if err := daemon.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error while executing commitd CLI: %s", err.Error())
		os.Exit(1)
	}
}
