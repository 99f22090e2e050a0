// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfmark/internal/collection"
)

func (c *cli) listCommand() *cobra.Command {
	var (
		q     collection.ListQuery
		owned string
	)
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List a collection, filtered and sorted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := collection.ParseOwnedFilter(owned)
			if err != nil {
				return err
			}
			q.Owned = filter

			page, err := c.svc.List(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			schema, err := c.svc.Schema(args[0])
			if err != nil {
				return err
			}

			c.styles.degradedNotice(c.errOut, page.Degraded)
			c.styles.heading(c.out, "%s: %d of %d", schema.Label, page.Visible, page.Total)
			fmt.Fprintln(c.out, c.styles.recordTable(schema, page.Items, page.Query))
			if page.HasMore {
				fmt.Fprintln(c.out, c.styles.dim.Render(fmt.Sprintf("more available: --page %d", page.Page+1)))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&q.Query, "query", "q", "", "case-insensitive text filter")
	f.StringVar(&q.Sort, "sort", "", "sort field (default: the resource's default sort)")
	f.BoolVar(&q.Desc, "desc", false, "sort descending")
	f.IntVar(&q.Page, "page", 1, "number of pages to show")
	f.IntVar(&q.PageSize, "page-size", 0, "items per page")
	f.StringVar(&owned, "owned", "all", "all, owned or wishlist")
	return cmd
}

func (c *cli) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <resource> <query>",
		Short: "Search a collection on the backend and highlight matches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n, limit := len([]rune(args[1])), c.svc.Config().MaxQueryLength; limit > 0 && n > limit {
				return fmt.Errorf("query is %d characters, the limit is %d", n, limit)
			}
			result, err := c.svc.Search(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			schema, err := c.svc.Schema(args[0])
			if err != nil {
				return err
			}

			c.styles.degradedNotice(c.errOut, result.Degraded)
			c.styles.heading(c.out, "%s matching %q: %d", schema.Label, args[1], len(result.Items))
			fmt.Fprintln(c.out, c.styles.recordTable(schema, result.Items, args[1]))
			return nil
		},
	}
}

func (c *cli) groupsCommand() *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "groups <resource>",
		Short: "Count records per value of a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.svc.Groups(cmd.Context(), args[0], by)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(v.Groups))
			for _, g := range v.Groups {
				rows = append(rows, []string{g.Key, strconv.Itoa(len(g.Items))})
			}
			c.styles.degradedNotice(c.errOut, v.Degraded)
			c.styles.heading(c.out, "%s by %s", args[0], v.Field)
			fmt.Fprintln(c.out, c.styles.table([]string{v.Field, "count"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "field to group by (default: the resource's first group field)")
	return cmd
}

func (c *cli) topCommand() *cobra.Command {
	var (
		by, score string
		n         int
	)
	cmd := &cobra.Command{
		Use:   "top <resource>",
		Short: "Rank groups by their average score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.svc.Top(cmd.Context(), args[0], by, score, n)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(v.Groups))
			for i, g := range v.Groups {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					g.Key,
					strconv.FormatFloat(g.Average, 'f', 2, 64),
					strconv.Itoa(g.Rated),
				})
			}
			c.styles.degradedNotice(c.errOut, v.Degraded)
			c.styles.heading(c.out, "Top %s by average %s", v.By, v.Score)
			fmt.Fprintln(c.out, c.styles.table([]string{"#", v.By, "average", "rated"}, rows))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&by, "by", "", "group key (default: the resource's rank key)")
	f.StringVar(&score, "score", "", "numeric field to average (default: rating)")
	f.IntVar(&n, "n", 0, "number of groups (default from configuration)")
	return cmd
}

func (c *cli) sampleCommand() *cobra.Command {
	var (
		flag string
		n    int
	)
	cmd := &cobra.Command{
		Use:   "sample <resource>",
		Short: "Pick random records with a flag set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.svc.Sample(cmd.Context(), args[0], flag, n)
			if err != nil {
				return err
			}
			schema, err := c.svc.Schema(args[0])
			if err != nil {
				return err
			}

			c.styles.degradedNotice(c.errOut, v.Degraded)
			c.styles.heading(c.out, "Random %s from %s", v.Flag, schema.Label)
			fmt.Fprintln(c.out, c.styles.recordTable(schema, v.Items, ""))
			return nil
		},
	}
	cmd.Flags().StringVar(&flag, "flag", "", "favourite, watchlist, owned or a boolean field")
	cmd.Flags().IntVar(&n, "n", 0, "number of picks (default from configuration)")
	_ = cmd.MarkFlagRequired("flag")
	return cmd
}

func (c *cli) recentCommand() *cobra.Command {
	var (
		field string
		n     int
	)
	cmd := &cobra.Command{
		Use:   "recent <resource>",
		Short: "Show the most recently added records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.svc.Recent(cmd.Context(), args[0], field, n)
			if err != nil {
				return err
			}
			schema, err := c.svc.Schema(args[0])
			if err != nil {
				return err
			}

			c.styles.degradedNotice(c.errOut, v.Degraded)
			c.styles.heading(c.out, "Recently added %s", schema.Label)
			fmt.Fprintln(c.out, c.styles.recordTable(schema, v.Items, ""))
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "date field (default: the resource's date field)")
	cmd.Flags().IntVar(&n, "n", 0, "number of records (default from configuration)")
	return cmd
}

func (c *cli) statsCommand() *cobra.Command {
	var (
		field     string
		ownedOnly bool
	)
	cmd := &cobra.Command{
		Use:   "stats <resource>",
		Short: "Summarise a numeric field and the owned/wishlist split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.svc.Stats(cmd.Context(), args[0], field, ownedOnly)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"records", strconv.Itoa(v.Summary.Count)},
				{"sum of " + v.Summary.Field, strconv.FormatFloat(v.Summary.Sum, 'f', 2, 64)},
				{"mean " + v.Summary.Field, strconv.FormatFloat(v.Summary.Mean, 'f', 2, 64)},
				{"owned", strconv.Itoa(v.Ownership.Owned)},
				{"wishlist", strconv.Itoa(v.Ownership.Wishlist)},
			}
			c.styles.degradedNotice(c.errOut, v.Degraded)
			c.styles.heading(c.out, "%s stats", args[0])
			fmt.Fprintln(c.out, c.styles.table([]string{"", "value"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "numeric field (default: price)")
	cmd.Flags().BoolVar(&ownedOnly, "owned", false, "only count owned records in the summary")
	return cmd
}
