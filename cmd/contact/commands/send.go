package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"Folio/ContactClient"
	"Folio/Models"
)

// send: submit one message and print the final form state.
func sendCmd() *cobra.Command {
	var sub Models.Submission
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit the contact form once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := ContactClient.NewForm(client)
			form.Set(sub)

			err := form.Submit(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), form.State())
			return err
		},
	}
	cmd.Flags().StringVar(&sub.Name, "name", "", "your name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "your email address")
	cmd.Flags().StringVar(&sub.Subject, "subject", "", "message subject")
	cmd.Flags().StringVarP(&sub.Message, "message", "m", "", "message body")
	return cmd
}
