package reply

import (
	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
)

// Response is the entry point over a whole reply
type Response struct {
	header     Header
	q          query.Query
	err        string
	feeds      []string
	replysets  map[string]*Replyset
	promote    *Promote
	spellcheck *Spellchecks
	concepts   *Concepts
	metadata   map[string]*Metadata
}

// New binds raw to the query that produced it.
// Replysets are dispatched by producer: SEARCH replysets are indexed by feed
// (the Promote feed aside), SPELLCHECK and CONCEPT ones feed their managers.
// The ids of the reply header complete the ids of q
func New(raw *Raw, q query.Query, cfg Config) (*Response, error) {
	w := &raw.w
	r := &Response{
		header:    Header{w: w.Header},
		replysets: map[string]*Replyset{},
		metadata:  map[string]*Metadata{},
	}
	switch {
	case w.ReplySet != nil:
	case r.header.InError():
		r.err = r.header.Error()
		r.q = q
		return r, nil
	default:
		r.err = "unmanaged error"
		r.q = q
		return r, nil
	}

	q = q.UpdateUserAndSessionID(r.header.UserID(), r.header.SessionID())
	r.q = q
	r.spellcheck = newSpellchecks(q, cfg)
	r.concepts = newConcepts()

	for i := range w.ReplySet {
		ws := &w.ReplySet[i]
		if ws.Meta == nil {
			continue
		}
		var err error
		switch Producer(ws.Meta.Producer) {
		case ProducerSearch:
			err = r.addSearch(ws, q, cfg)
		case ProducerSpellcheck:
			err = r.spellcheck.add(ws)
		case ProducerConcept:
			err = r.concepts.add(ws)
		}
		if err != nil {
			return nil, perr.WithOp(err, "reply.New")
		}
	}
	for i := range w.Metadata {
		m := newMetadata(&w.Metadata[i])
		r.metadata[m.Feed()] = m
	}
	return r, nil
}

func (r *Response) addSearch(ws *wireReplyset, q query.Query, cfg Config) error {
	if ws.Meta.URI == PromoteFeed {
		p, err := newPromote(ws)
		if err != nil {
			return err
		}
		r.promote = p
		return nil
	}
	rs, err := newReplyset(ws, q, cfg)
	if err != nil {
		return err
	}
	if _, ok := r.replysets[rs.Meta().Feed()]; !ok {
		r.feeds = append(r.feeds, rs.Meta().Feed())
	}
	r.replysets[rs.Meta().Feed()] = rs
	return nil
}

func (r *Response) Header() Header { return r.header }

// Query is the query of the reply, completed with the ids assigned by the engine
func (r *Response) Query() query.Query { return r.q }

func (r *Response) InError() bool        { return r.err != "" }
func (r *Response) ErrorMessage() string { return r.err }
func (r *Response) Duration() int        { return r.header.Duration() }
func (r *Response) UserID() string       { return r.header.UserID() }
func (r *Response) SessionID() string    { return r.header.SessionID() }

func (r *Response) IsOrchestrated() bool { return r.header.IsOrchestrated() }

func (r *Response) OrchestrationType() (OrchestrationType, error) {
	return r.header.OrchestrationType()
}

func (r *Response) HasReplyset() bool { return !r.InError() && len(r.feeds) > 0 }

// Feeds lists the feeds with a replyset in reply order
func (r *Response) Feeds() []string { return append([]string(nil), r.feeds...) }

// Replysets returns the replysets in reply order
func (r *Response) Replysets() []*Replyset {
	out := make([]*Replyset, len(r.feeds))
	for i, f := range r.feeds {
		out[i] = r.replysets[f]
	}
	return out
}

// Replyset returns the replyset of feed, or the first one when feed is empty
func (r *Response) Replyset(feed string) (*Replyset, error) {
	if feed == "" {
		if !r.HasReplyset() {
			return nil, perr.Statef("no replyset available")
		}
		return r.replysets[r.feeds[0]], nil
	}
	if rs, ok := r.replysets[feed]; ok && !r.InError() {
		return rs, nil
	}
	return nil, perr.WithField(perr.NotFoundf("no replyset named %q available", feed), "feed")
}

func (r *Response) HasPromote() bool { return !r.InError() && r.promote != nil }

func (r *Response) Promote() (*Promote, error) {
	if !r.HasPromote() {
		return nil, perr.NotFoundf("no promote available")
	}
	return r.promote, nil
}

func (r *Response) HasSpellcheck() bool { return !r.InError() && r.spellcheck.Has() }

// Spellchecks exposes every suggestion; nil when the reply is in error
func (r *Response) Spellchecks() *Spellchecks { return r.spellcheck }

func (r *Response) Spellcheck(feed string) ([]*Spellcheck, error) {
	if r.InError() {
		return nil, perr.Statef("reply in error: %s", r.err)
	}
	return r.spellcheck.Get(feed)
}

func (r *Response) HasConcept() bool { return !r.InError() && r.concepts.Has() }

// Concepts exposes every concept; nil when the reply is in error
func (r *Response) Concepts() *Concepts { return r.concepts }

func (r *Response) Concept(feed string) (*Concept, error) {
	if r.InError() {
		return nil, perr.Statef("reply in error: %s", r.err)
	}
	return r.concepts.Get(feed)
}

// Metadata returns the facet declarations of feed
func (r *Response) Metadata(feed string) (*Metadata, error) {
	if m, ok := r.metadata[feed]; ok {
		return m, nil
	}
	return nil, perr.WithField(perr.NotFoundf("no metadata for feed %q", feed), "feed")
}
