// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/metrics"
)

func (c *cli) deleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := args[0]
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q: want a positive integer", args[1])
			}
			if _, err := c.svc.Schema(resource); err != nil {
				return err
			}

			confirmed := yes
			if !confirmed {
				confirmed, err = confirm(c.in, c.out, fmt.Sprintf("Delete %s #%d? [y/N] ", resource, id))
				if err != nil {
					return err
				}
			}

			result, err := c.svc.Delete(cmd.Context(), resource, id, confirmed)
			if errors.Is(err, collection.ErrConfirmationRequired) {
				metrics.DeletesDeclined.WithLabelValues("cli").Inc()
				fmt.Fprintln(c.out, c.styles.dim.Render("Nothing deleted."))
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Deleted %s #%d. %d records remain.\n", resource, id, len(result.Collection.Items))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm prompts on out and reads one answer from in. Only "y" and "yes"
// confirm; end of input declines.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
