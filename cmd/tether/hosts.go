package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHostsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hosts",
		Short: "prints the hosts that requests are sent to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}

			for _, ep := range client.Transport().Hosts() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), ep.String()); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
