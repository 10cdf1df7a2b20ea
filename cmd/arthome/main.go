// Command arthome is the platform CLI: run the API server, bootstrap
// indexes, seed data, prune expired promo codes, and inspect routes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "arthome",
		Short: "Art Home Soni platform",
	}

	root.AddCommand(
		serveCmd(),
		dbIndexCmd(),
		dbSeedCmd(),
		promoPruneCmd(),
		routeListCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
