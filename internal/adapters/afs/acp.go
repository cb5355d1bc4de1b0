package afs

import (
	"context"
	"time"

	"afsearch/internal/core/acp"
	perr "afsearch/internal/platform/errors"
	"afsearch/internal/platform/logger"
)

// ACP sends autocomplete queries through a Connector bound to the acp endpoint
type ACP struct {
	conn     Connector
	sessions *UserSessionManager
}

func NewACP(conn Connector) *ACP { return &ACP{conn: conn} }

// WithSessions reads the ids sent with each query from m
func (a *ACP) WithSessions(m *UserSessionManager) *ACP {
	c := *a
	c.sessions = m
	return &c
}

// Execute sends q and decodes the suggestions.
// An error object returned by the service is a response in error, not a Go error
func (a *ACP) Execute(ctx context.Context, q acp.Query) (*acp.Response, error) {
	if a.sessions != nil {
		q = q.InitializeUserAndSessionID(a.sessions)
	}
	log := logger.C(logger.WithRequest(ctx, "", q.SessionID()))

	start := time.Now()
	body, err := a.conn.Send(ctx, acp.TransportParameters(q))
	if err != nil {
		log.Warn().Err(err).Str("url", a.conn.GeneratedURL()).Msg("suggest failed")
		return nil, perr.WithOp(err, "afs.Suggest")
	}
	resp, err := acp.Parse(body)
	if err != nil {
		log.Warn().Err(err).Str("fragment", perr.Fragment(err)).Msg("suggest reply rejected")
		return nil, perr.WithOp(err, "afs.Suggest")
	}
	log.Debug().
		Str("query", q.Query()).
		Strs("feeds", resp.Feeds()).
		Bool("in_error", resp.InError()).
		Dur("elapsed", time.Since(start)).
		Msg("suggest done")
	return resp, nil
}
