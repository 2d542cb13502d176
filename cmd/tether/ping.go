package main

import (
	"fmt"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dogmatiq/tether"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newPingCommand(a *app) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "checks that every host responds to requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, err := a.clientOptions()
			if err != nil {
				return err
			}

			// options is shared by the goroutines below, so appending to it
			// must always allocate.
			options = slices.Clip(options)

			client, err := tether.New(options...)
			if err != nil {
				return err
			}

			hosts := client.Transport().Hosts()
			results := make([]string, len(hosts))
			var unreachable atomic.Int64

			var g errgroup.Group
			if concurrency > 0 {
				g.SetLimit(concurrency)
			}

			for i, ep := range hosts {
				g.Go(func() error {
					c, err := tether.New(append(options, tether.WithHosts(ep))...)
					if err != nil {
						return err
					}

					start := time.Now()
					res, err := c.PerformRequest(cmd.Context(), http.MethodHead, "/", nil, nil)
					if err != nil {
						unreachable.Add(1)
						results[i] = fmt.Sprintf("%s: unreachable: %s", ep, err)
						return nil
					}

					results[i] = fmt.Sprintf(
						"%s: %d %s (%s)",
						ep,
						res.Status,
						http.StatusText(res.Status),
						time.Since(start).Round(time.Millisecond),
					)

					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			for _, r := range results {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), r); err != nil {
					return err
				}
			}

			if n := unreachable.Load(); n != 0 {
				return fmt.Errorf("%d of %d host(s) are unreachable", n, len(hosts))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "the maximum number of hosts to ping at once, 0 means no limit")

	return cmd
}
