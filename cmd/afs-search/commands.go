package main

import (
	"fmt"
	"io"
	"strings"

	"afsearch/internal/adapters/afs"
	"afsearch/internal/core/acp"
	"afsearch/internal/core/facet"
	"afsearch/internal/core/query"
	"afsearch/internal/core/query/filterexpr"
	"afsearch/internal/core/reply"
	"afsearch/internal/core/text"
	perr "afsearch/internal/platform/errors"

	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	out        io.Writer
	connect    func(afs.Config) (afs.Connector, error)
	connectACP func(afs.Config) (afs.Connector, error)
}

func dial(cfg afs.Config) (afs.Connector, error)    { return cfg.NewClient() }
func dialACP(cfg afs.Config) (afs.Connector, error) { return cfg.NewACPClient() }

// queryFlags are shared by search and link
type queryFlags struct {
	feeds   []string
	filters []string
	where   []string
	page    int
	replies int
	lang    string
}

func (f *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.feeds, "feed", nil, "feeds to query, replaces the configured ones")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "facet=value filter, repeatable")
	cmd.Flags().StringArrayVar(&f.where, "where", nil, "field:operator:value advanced filter, operators are equal, not_equal, less, less_equal, greater, greater_equal; repeated ones are and-ed")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.replies, "replies", 0, "replies per page, 0 keeps the configured value")
	cmd.Flags().StringVar(&f.lang, "lang", "", "query language")
}

// apply sets the flags and the text on q
func (f *queryFlags) apply(q query.Query, args []string) (query.Query, error) {
	q = q.SetQuery(strings.Join(args, " "))
	if len(f.feeds) > 0 {
		q = q.SetFeed(f.feeds...)
	}
	for _, raw := range f.filters {
		id, value, ok := strings.Cut(raw, "=")
		if !ok || !facet.ValidID(id) || value == "" {
			return q, perr.WithField(perr.InvalidArgf("filter %q is not facet=value", raw), "filter")
		}
		q = q.AddFilter(id, value)
	}
	if len(f.where) > 0 {
		expr, err := where(f.where)
		if err != nil {
			return q, err
		}
		q = q.AddAdvancedFilter(expr.String())
	}
	var err error
	if f.replies > 0 {
		if q, err = q.SetReplies(f.replies); err != nil {
			return q, err
		}
	}
	if f.lang != "" {
		if q, err = q.SetLang(f.lang); err != nil {
			return q, err
		}
	}
	if f.page != 1 {
		if q, err = q.SetPage(f.page); err != nil {
			return q, err
		}
	}
	return q, nil
}

// where and-combines field:operator:value clauses
func where(clauses []string) (filterexpr.Expr, error) {
	var out filterexpr.Expr
	for _, c := range clauses {
		parts := strings.SplitN(c, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return out, perr.WithField(perr.InvalidArgf("clause %q is not field:operator:value", c), "where")
		}
		op, err := filterexpr.ParseOperator(parts[1])
		if err != nil {
			return out, perr.WithField(err, "where")
		}
		out = out.And(filterexpr.Field(parts[0]).Compare(op, parts[2]))
	}
	return out, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "afs-search",
		Short:         "Query an AFS search service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "afs.toml", "engine configuration file, AFS_* variables override it")
	root.SetOut(a.out)
	root.AddCommand(newSearchCmd(a), newLinkCmd(a), newSuggestCmd(a))
	return root
}

func (a *app) query(f *queryFlags, args []string) (afs.Config, query.Query, error) {
	cfg, err := afs.LoadConfig(a.configPath)
	if err != nil {
		return cfg, query.Query{}, err
	}
	q, err := cfg.NewQuery()
	if err != nil {
		return cfg, q, err
	}
	q, err = f.apply(q, args)
	return cfg, q, err
}

func newSearchCmd(a *app) *cobra.Command {
	f := &queryFlags{}
	var highlight bool
	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Run a query and print the replies, facets and pager",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, q, err := a.query(f, args)
			if err != nil {
				return err
			}
			conn, err := a.connect(cfg)
			if err != nil {
				return err
			}
			var v text.Visitor = text.RawVisitor{}
			if highlight {
				v = text.Funcs{MatchFn: func(s string) string { return "[" + s + "]" }}
			}
			resp, err := afs.NewSearch(conn, reply.Config{Coder: cfg.Coder(), TextVisitor: v}).Execute(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&highlight, "highlight", false, "bracket the matched words")
	return cmd
}

func newLinkCmd(a *app) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "link [text...]",
		Short: "Print the link encoding a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, q, err := a.query(f, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cfg.Coder().GenerateLink(q))
			return err
		},
	}
	f.bind(cmd)
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	var feeds []string
	var replies int
	cmd := &cobra.Command{
		Use:   "suggest [text...]",
		Short: "Print the autocomplete suggestions of a text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := afs.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			q := acp.NewQuery().SetQuery(strings.Join(args, " ")).SetFeed(cfg.Query.Feeds...)
			if len(feeds) > 0 {
				q = q.SetFeed(feeds...)
			}
			if q, err = q.SetReplies(replies); err != nil {
				return err
			}
			conn, err := a.connectACP(cfg)
			if err != nil {
				return err
			}
			resp, err := afs.NewACP(conn).Execute(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printSuggestions(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringSliceVar(&feeds, "feed", nil, "feeds to complete from, replaces the configured ones")
	cmd.Flags().IntVar(&replies, "replies", 0, "suggestions per feed, 0 lets the service decide")
	return cmd
}
