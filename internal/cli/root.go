// Package cli wires configuration, storage and transports into the
// dresscutur command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

const serviceName = "dresscutur-backend"

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dresscutur",
		Short:         "DressCutur atelier backend: catalog, contact form and booking calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newAdminCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
