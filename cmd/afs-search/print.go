package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"afsearch/internal/core/acp"
	"afsearch/internal/core/reply"
)

func printResponse(w io.Writer, resp *reply.Response) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	q := resp.Query()
	fmt.Fprintf(tw, "query %q", q.Query())
	if q.HasLang() {
		fmt.Fprintf(tw, " lang %s", q.Lang())
	}
	fmt.Fprintf(tw, " in %dms\n", resp.Duration())

	if resp.InError() {
		fmt.Fprintf(tw, "error: %s\n", resp.ErrorMessage())
		return tw.Flush()
	}

	if resp.HasSpellcheck() {
		for _, feed := range resp.Spellchecks().Names() {
			sc, err := resp.Spellcheck(feed)
			if err != nil {
				return err
			}
			for _, s := range sc {
				fmt.Fprintf(tw, "did you mean %q (%s)\n", s.Raw(), feed)
			}
		}
	}

	for _, rs := range resp.Replysets() {
		m := rs.Meta()
		approx := ""
		if !m.IsTotalExact() {
			approx = "~"
		}
		fmt.Fprintf(tw, "\n%s: %s%d replies, %d-%d\n", m.Feed(), approx, m.TotalReplies(), m.FirstPageItem(), m.LastPageItem())
		for _, r := range rs.Replies() {
			fmt.Fprintf(tw, "  %d.\t%s\t%s\n", r.Rank(), r.Title(), r.URI())
		}
		for _, c := range rs.Clusters() {
			fmt.Fprintf(tw, "  cluster %s (%d)\n", c.Label(), c.TotalReplies())
			for _, r := range c.Replies() {
				fmt.Fprintf(tw, "    %d.\t%s\t%s\n", r.Rank(), r.Title(), r.URI())
			}
		}
		for _, f := range rs.Facets() {
			fmt.Fprintf(tw, "  facet %s\n", f.Label())
			printValues(tw, f.Values(), 2)
		}
		if rs.HasPager() {
			p, err := rs.Pager()
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "  page %d of %d\n", p.Current(), p.LastPageNumber())
		}
	}
	return tw.Flush()
}

func printValues(w io.Writer, values []reply.FacetValue, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, v := range values {
		mark := ""
		if v.Active {
			mark = " *"
		}
		fmt.Fprintf(w, "%s%s\t%d%s\n", indent, v.Label, v.Count, mark)
		printValues(w, v.Children, depth+1)
	}
}

func printSuggestions(w io.Writer, resp *acp.Response) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "completing %q\n", resp.QueryString())
	if resp.InError() {
		fmt.Fprintf(tw, "error: %s\n", resp.ErrorMessage())
		return tw.Flush()
	}
	for _, rs := range resp.Replysets() {
		if rs.Feed() != "" {
			fmt.Fprintf(tw, "%s:\n", rs.Feed())
		}
		for _, r := range rs.Replies() {
			var opts []string
			for _, o := range r.Options() {
				opts = append(opts, o.Name+"="+o.Value)
			}
			fmt.Fprintf(tw, "  %s\t%s\n", r.Value(), strings.Join(opts, " "))
		}
	}
	return tw.Flush()
}
