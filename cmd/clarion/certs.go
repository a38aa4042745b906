package main

import (
	"github.com/spf13/cobra"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Manage TLS certificates",
	Long: `Manage TLS certificates for the Clarion API server.

The certs command provides utilities for the certificates that secure
the analysis API: validation, inspection, and generation of self-signed
certificates for local testing.

Subcommands:
  validate - Validate certificate and key pair
  info     - Display certificate details
  generate - Generate self-signed certificate for testing

Examples:
  # Validate certificate and key
  clarion certs validate --cert server.crt --key server.key

  # Display certificate information
  clarion certs info server.crt

  # Generate self-signed certificate for testing
  clarion certs generate --host localhost`,
}

func init() {
	rootCmd.AddCommand(certsCmd)
}
