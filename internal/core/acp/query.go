// Package acp builds autocomplete queries and decodes the suggestions of the acp service
package acp

import (
	"net/url"
	"slices"
	"strconv"

	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"

	"github.com/google/uuid"
)

// Query is an immutable autocomplete query; every setter returns a modified copy
type Query struct {
	text      string
	feeds     []string
	replies   int
	from      query.Origin
	autoFrom  bool
	userID    string
	sessionID string
	logs      []string
	key       string
}

// NewQuery returns an empty query with fresh user and session ids
func NewQuery() Query {
	return Query{
		autoFrom:  true,
		userID:    uuid.NewString(),
		sessionID: uuid.NewString(),
	}
}

func (q Query) clone() Query {
	q.feeds = slices.Clone(q.feeds)
	q.logs = slices.Clone(q.logs)
	return q
}

// SetQuery sets the text to complete
func (q Query) SetQuery(text string) Query {
	c := q.clone()
	c.text = text
	if c.autoFrom {
		c.from = query.OriginSearchBox
	}
	return c
}

func (q Query) Query() string  { return q.text }
func (q Query) HasQuery() bool { return q.text != "" }

// SetFeed replaces the feeds suggestions are taken from
func (q Query) SetFeed(names ...string) Query {
	c := q.clone()
	c.feeds = nil
	return c.AddFeed(names...)
}

// AddFeed appends feeds, ignoring the ones already present
func (q Query) AddFeed(names ...string) Query {
	c := q.clone()
	for _, n := range names {
		if n != "" && !slices.Contains(c.feeds, n) {
			c.feeds = append(c.feeds, n)
		}
	}
	return c
}

func (q Query) Feeds() []string { return slices.Clone(q.feeds) }
func (q Query) HasFeed() bool   { return len(q.feeds) > 0 }

// SetReplies bounds the suggestions per feed; 0 lets the service decide
func (q Query) SetReplies(n int) (Query, error) {
	if n < 0 {
		return q, perr.WithField(perr.Validationf("replies must not be negative, got %d", n), "replies")
	}
	c := q.clone()
	c.replies = n
	return c, nil
}

func (q Query) Replies() int     { return q.replies }
func (q Query) HasReplies() bool { return q.replies > 0 }

// AutoSetFrom toggles the origin update done by SetQuery
func (q Query) AutoSetFrom(on bool) Query {
	c := q.clone()
	c.autoFrom = on
	return c
}

// SetFrom sets the origin explicitly
func (q Query) SetFrom(o query.Origin) (Query, error) {
	if _, err := query.ParseOrigin(string(o)); err != nil {
		return q, err
	}
	c := q.clone()
	c.from = o
	return c, nil
}

func (q Query) From() query.Origin { return q.from }

// SetUserID sets the user id; a different user starts without a session
func (q Query) SetUserID(id string) Query {
	c := q.clone()
	if c.userID != id {
		c.sessionID = ""
	}
	c.userID = id
	return c
}

// SetSessionID sets the session id
func (q Query) SetSessionID(id string) Query {
	c := q.clone()
	c.sessionID = id
	return c
}

func (q Query) UserID() string    { return q.userID }
func (q Query) SessionID() string { return q.sessionID }

// InitializeUserAndSessionID copies the non-empty ids of src into the query
func (q Query) InitializeUserAndSessionID(src query.IDSource) Query {
	if src == nil {
		return q
	}
	c := q.clone()
	if id := src.UserID(); id != "" {
		c.userID = id
	}
	if id := src.SessionID(); id != "" {
		c.sessionID = id
	}
	return c
}

// AddLog appends a free form log entry
func (q Query) AddLog(v string) Query {
	c := q.clone()
	c.logs = append(c.logs, v)
	return c
}

func (q Query) Logs() []string { return slices.Clone(q.logs) }

// SetKey sets the opaque key
func (q Query) SetKey(k string) Query {
	c := q.clone()
	c.key = k
	return c
}

func (q Query) Key() string { return q.key }

// TransportParameters converts q into the parameters read by the acp service.
// Unset values are left out
func TransportParameters(q Query) url.Values {
	out := url.Values{}
	set := func(k, v string) {
		if v != "" {
			out.Set(query.ServerPrefix+k, v)
		}
	}
	if q.replies > 0 {
		set(query.KeyReplies, strconv.Itoa(q.replies))
	}
	for _, f := range q.feeds {
		out.Add(query.ServerPrefix+query.KeyFeed, f)
	}
	set(query.KeyQuery, q.text)
	set(query.KeyFrom, string(q.from))
	set(query.KeyUserID, q.userID)
	set(query.KeySessionID, q.sessionID)
	for _, l := range q.logs {
		out.Add(query.ServerPrefix+query.KeyLog, l)
	}
	set(query.KeyKey, q.key)
	return out
}
