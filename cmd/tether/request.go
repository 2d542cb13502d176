package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dogmatiq/tether"
	"github.com/spf13/cobra"
)

func newRequestCommand(a *app) *cobra.Command {
	var (
		params []string
		body   string
	)

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "performs a request against one of the hosts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParams(params)
			if err != nil {
				return err
			}

			client, err := a.newClient()
			if err != nil {
				return err
			}

			var b any
			if cmd.Flags().Changed("body") {
				b = body
			}

			res, err := client.PerformRequest(
				cmd.Context(),
				strings.ToUpper(args[0]),
				args[1],
				values,
				b,
			)
			if err != nil {
				return err
			}

			return writeResponse(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "a query parameter in key=value form, may be repeated")
	cmd.Flags().StringVarP(&body, "body", "d", "", "the request body")

	return cmd
}

// parseParams parses a list of key=value pairs into query parameters.
func parseParams(params []string) (url.Values, error) {
	if len(params) == 0 {
		return nil, nil
	}

	values := url.Values{}

	for _, p := range params {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", p)
		}

		values.Add(k, v)
	}

	return values, nil
}

// writeResponse writes the status line and body of res to w.
func writeResponse(w io.Writer, res *tether.Response) error {
	if _, err := fmt.Fprintf(w, "%d %s\n", res.Status, http.StatusText(res.Status)); err != nil {
		return err
	}

	if len(res.Body) == 0 {
		return nil
	}

	if _, err := w.Write(res.Body); err != nil {
		return err
	}

	if !bytes.HasSuffix(res.Body, []byte("\n")) {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	return nil
}
