package afs

import (
	"context"
	"time"

	"afsearch/internal/core/query"
	"afsearch/internal/core/reply"
	perr "afsearch/internal/platform/errors"
	"afsearch/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// defaultParallel bounds ExecuteAll
const defaultParallel = 4

// Search sends queries through a Connector and binds the replies
type Search struct {
	conn     Connector
	cfg      reply.Config
	sessions *UserSessionManager
	parallel int
}

// NewSearch renders helpers with cfg
func NewSearch(conn Connector, cfg reply.Config) *Search {
	return &Search{conn: conn, cfg: cfg, parallel: defaultParallel}
}

// WithSessions reads ids from m before sending and writes back the ids of the reply
func (s *Search) WithSessions(m *UserSessionManager) *Search {
	c := *s
	c.sessions = m
	return &c
}

// WithParallel bounds the number of concurrent requests of ExecuteAll
func (s *Search) WithParallel(n int) *Search {
	c := *s
	if n > 0 {
		c.parallel = n
	}
	return &c
}

// Execute sends q and binds the reply to it
func (s *Search) Execute(ctx context.Context, q query.Query) (*reply.Response, error) {
	if s.sessions != nil {
		q = q.InitializeUserAndSessionID(s.sessions)
	}
	log := logger.C(logger.WithRequest(ctx, "", q.SessionID()))

	start := time.Now()
	body, err := s.conn.Send(ctx, query.TransportParameters(q))
	if err != nil {
		log.Warn().Err(err).Str("url", s.conn.GeneratedURL()).Msg("search failed")
		return nil, perr.WithOp(err, "afs.Execute")
	}
	resp, err := reply.Parse(body, q, s.cfg)
	if err != nil {
		log.Warn().Err(err).Str("fragment", perr.Fragment(err)).Msg("search reply rejected")
		return nil, perr.WithOp(err, "afs.Execute")
	}
	if s.sessions != nil {
		s.sessions.Update(resp.UserID(), resp.SessionID())
	}
	log.Debug().
		Str("query", q.Query()).
		Strs("feeds", resp.Feeds()).
		Bool("in_error", resp.InError()).
		Dur("elapsed", time.Since(start)).
		Int("engine_ms", resp.Duration()).
		Msg("search done")
	return resp, nil
}

// ExecuteAll sends the queries concurrently; responses keep the order of qs.
// Each query gets its own copy of its facet registry since decoding updates it
func (s *Search) ExecuteAll(ctx context.Context, qs ...query.Query) ([]*reply.Response, error) {
	out := make([]*reply.Response, len(qs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, q := range qs {
		q = q.WithRegistry(q.Registry().Clone())
		g.Go(func() error {
			resp, err := s.Execute(gctx, q)
			if err != nil {
				return err
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
