// Package service turns gateway requests into search queries and renders the replies
package service

import (
	"context"
	"net/url"
	"strconv"

	"afsearch/internal/adapters/afs"
	"afsearch/internal/core/acp"
	"afsearch/internal/core/coder"
	"afsearch/internal/core/query"
	"afsearch/internal/core/reply"
	perr "afsearch/internal/platform/errors"
	"afsearch/internal/services/gateway/domain"

	"golang.org/x/text/language"
)

// Service is the gateway use case
type Service interface {
	Search(ctx context.Context, in SearchInput) (domain.SearchResult, error)
	Link(ctx context.Context, in domain.LinkRequest) (domain.LinkResponse, error)
	Suggest(ctx context.Context, in SuggestInput) (domain.Completions, error)
}

// SearchInput is one incoming search request
type SearchInput struct {
	Params         url.Values
	AcceptLanguage string
	// Store keeps the user and session ids; nil disables id tracking
	Store afs.SessionStore
}

// SuggestInput is one autocomplete request: query, feed and replies parameters
type SuggestInput struct {
	Params url.Values
	Store  afs.SessionStore
}

// Deps are the collaborators of the service
type Deps struct {
	Conn afs.Connector
	// ACPConn reaches the autocomplete endpoint; nil disables Suggest
	ACPConn afs.Connector
	Coder   *coder.QueryCoder
	// Base returns the query every request starts from: registry, feeds, replies, language
	Base func() (query.Query, error)
	// Langs are offered to Accept-Language negotiation, first is the fallback
	Langs []string
}

type svc struct {
	conn    afs.Connector
	acpConn afs.Connector
	coder   *coder.QueryCoder
	base    func() (query.Query, error)
	langs   []string
	matcher language.Matcher
}

// New validates the supported languages and builds the service
func New(d Deps) (Service, error) {
	s := &svc{conn: d.Conn, acpConn: d.ACPConn, coder: d.Coder, base: d.Base}
	if s.base == nil {
		s.base = func() (query.Query, error) { return query.New(), nil }
	}
	var tags []language.Tag
	for _, l := range d.Langs {
		lang, err := query.ParseLanguage(l)
		if err != nil {
			return nil, perr.WithOp(err, "gateway.New")
		}
		s.langs = append(s.langs, lang.String())
		tags = append(tags, lang.Tag())
	}
	if len(tags) > 0 {
		s.matcher = language.NewMatcher(tags)
	}
	return s, nil
}

// build decodes link parameters over the base query; parameters of the request win
func (s *svc) build(params url.Values) (query.Query, error) {
	base, err := s.base()
	if err != nil {
		return query.Query{}, err
	}
	merged, err := url.ParseQuery(s.coder.GenerateParameters(base))
	if err != nil {
		return query.Query{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "base query parameters")
	}
	for k, vv := range params {
		merged[k] = vv
	}
	q, err := s.coder.BuildQuery(merged)
	if err != nil {
		return query.Query{}, err
	}
	return q.WithRegistry(base.Registry()), nil
}

// negotiate picks the supported language best matching header
func (s *svc) negotiate(header string) string {
	if s.matcher == nil || header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, idx, conf := s.matcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	return s.langs[idx]
}

func (s *svc) Search(ctx context.Context, in SearchInput) (domain.SearchResult, error) {
	q, err := s.build(in.Params)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if !q.HasLang() {
		if l := s.negotiate(in.AcceptLanguage); l != "" {
			if q, err = q.SetLang(l); err != nil {
				return domain.SearchResult{}, err
			}
		}
	}

	search := afs.NewSearch(s.conn, reply.Config{Coder: s.coder})
	if in.Store != nil {
		search = search.WithSessions(afs.NewUserSessionManager(in.Store))
	}
	resp, err := search.Execute(ctx, q)
	if err != nil {
		return domain.SearchResult{}, err
	}
	return render(resp)
}

func (s *svc) Link(_ context.Context, in domain.LinkRequest) (domain.LinkResponse, error) {
	q, err := s.build(url.Values(in.Params))
	if err != nil {
		return domain.LinkResponse{}, err
	}
	if in.Query != nil {
		q = q.SetQuery(*in.Query)
	}
	if len(in.Feeds) > 0 {
		q = q.SetFeed(in.Feeds...)
	}
	for _, f := range in.Filters {
		q = q.AddFilter(f.Facet, f.Values...)
	}
	if in.Lang != "" {
		if q, err = q.SetLang(in.Lang); err != nil {
			return domain.LinkResponse{}, err
		}
	}
	if in.Page > 0 {
		if q, err = q.SetPage(in.Page); err != nil {
			return domain.LinkResponse{}, err
		}
	}
	return domain.LinkResponse{
		Link:       s.coder.GenerateLink(q),
		Parameters: s.coder.GenerateParameters(q),
	}, nil
}

// Suggest completes the query parameter; feeds default to the ones of the base query.
// Each suggestion links to the base query searching it
func (s *svc) Suggest(ctx context.Context, in SuggestInput) (domain.Completions, error) {
	if s.acpConn == nil {
		return domain.Completions{}, perr.Unavailablef("autocomplete is not configured")
	}
	base, err := s.base()
	if err != nil {
		return domain.Completions{}, err
	}
	q := acp.NewQuery().SetQuery(in.Params.Get("query"))
	if feeds := in.Params["feed"]; len(feeds) > 0 {
		q = q.SetFeed(feeds...)
	} else {
		q = q.SetFeed(base.FeedNames()...)
	}
	if raw := in.Params.Get("replies"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Completions{}, perr.WithField(perr.InvalidArgf("replies %q is not a number", raw), "replies")
		}
		if q, err = q.SetReplies(n); err != nil {
			return domain.Completions{}, err
		}
	}

	a := afs.NewACP(s.acpConn)
	if in.Store != nil {
		a = a.WithSessions(afs.NewUserSessionManager(in.Store))
	}
	resp, err := a.Execute(ctx, q)
	if err != nil {
		return domain.Completions{}, err
	}
	out := domain.Completions{Query: resp.QueryString(), Error: resp.ErrorMessage(), Feeds: []domain.CompletionFeed{}}
	for _, rs := range resp.Replysets() {
		feed := domain.CompletionFeed{Feed: rs.Feed()}
		for _, r := range rs.Replies() {
			c := domain.Completion{Value: r.Value(), Link: s.coder.GenerateLink(r.SearchQuery(base))}
			for _, o := range r.Options() {
				if c.Options == nil {
					c.Options = map[string]string{}
				}
				c.Options[o.Name] = o.Value
			}
			feed.Items = append(feed.Items, c)
		}
		out.Feeds = append(out.Feeds, feed)
	}
	return out, nil
}
