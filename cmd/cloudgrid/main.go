// The cloudgrid command runs datacenter packet-delivery simulations
// described by a YAML topology file.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cloudgrid",
	Short: "Discrete-event simulator for packet delivery between virtualized workloads",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
