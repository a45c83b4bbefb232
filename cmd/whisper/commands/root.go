// Package commands implements the whisper client CLI: local key handling,
// sending sealed messages and reading an inbox against a whisperbox server.
package commands

import (
	"github.com/spf13/cobra"
)

var serverURL string

// Execute runs the CLI.
func Execute() error {
	root := &cobra.Command{
		Use:           "whisper",
		Short:         "Client for a handle-addressed encrypted mailbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9000", "whisperbox server URL")

	root.AddCommand(
		keygenCmd(),
		profileCmd(),
		sendCmd(),
		inboxCmd(),
	)

	return root.Execute()
}
