package commands

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"Folio/ContactClient"
)

var (
	relayURL string
	timeout  time.Duration
	client   *ContactClient.Client
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "contact",
		Short:        "Send a message through the portfolio contact relay",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = ContactClient.NewClient(relayURL, &http.Client{Timeout: timeout})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&relayURL, "url", "http://localhost:8787", "relay base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the relay")

	root.AddCommand(sendCmd())
	return root
}
