// Collectables API server and command-line interface.
//
// The github.com/moonstream-to/collectables package is the entrypoint to the collectables tooling. The
// collection ledger itself lives in the ledger package and collections are deployed through the factory
// package. This package defines the structure of the collectables API and also defines the command-line
// interface that can be used to configure and start the API server and to sign ownership claims.

package main

import (
	"os"
)

func main() {
	command := CreateRootCommand()
	err := command.Execute()
	if err != nil {
		os.Exit(1)
	}
}
