package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ygarasab/acaimar-api/cmd/admin/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "acaimar-admin",
		Short: "Administration tool for the AÇAIMAR API",
		Long:  "CLI tool for managing AÇAIMAR API user accounts without going through the HTTP surface",
	}

	rootCmd.AddCommand(commands.NewUsersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
