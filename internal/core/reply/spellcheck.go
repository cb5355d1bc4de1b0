package reply

import (
	"afsearch/internal/core/query"
	"afsearch/internal/core/text"
	perr "afsearch/internal/platform/errors"
)

// DefaultSpellcheck is the name of spellcheck replies that carry no feed uri
const DefaultSpellcheck = "afs:spellcheck"

// Spellcheck is one suggestion
type Spellcheck struct {
	text text.RawAndFormatted
	next Target
}

func (s *Spellcheck) Raw() string       { return s.text.Raw }
func (s *Spellcheck) Formatted() string { return s.text.Formatted }

// Next replaces the query text with the suggestion
func (s *Spellcheck) Next() Target { return s.next }

// Spellchecks indexes suggestions by feed
type Spellchecks struct {
	q     query.Query
	cfg   Config
	names []string
	byID  map[string][]*Spellcheck
}

func newSpellchecks(q query.Query, cfg Config) *Spellchecks {
	return &Spellchecks{q: q, cfg: cfg, byID: map[string][]*Spellcheck{}}
}

func (m *Spellchecks) add(w *wireReplyset) error {
	if w.Content == nil {
		return nil
	}
	for i := range w.Content.Reply {
		r := &w.Content.Reply[i]
		if len(r.Suggestion) == 0 {
			continue
		}
		frags, err := text.DecodeSpellcheck(r.Suggestion[0].Items)
		if err != nil {
			return err
		}
		rf := text.RenderSpellcheck(frags, m.cfg.spellcheckVisitor())
		next, err := m.q.SetQuery(rf.Raw).SetFrom(query.OriginSpellcheck)
		if err != nil {
			return err
		}
		name := r.URI
		if name == "" {
			name = DefaultSpellcheck
		}
		if _, ok := m.byID[name]; !ok {
			m.names = append(m.names, name)
		}
		m.byID[name] = append(m.byID[name], &Spellcheck{text: rf, next: m.cfg.target(next)})
	}
	return nil
}

func (m *Spellchecks) Has() bool { return len(m.names) > 0 }

// Names lists feeds with suggestions in reply order
func (m *Spellchecks) Names() []string { return append([]string(nil), m.names...) }

// Get returns the suggestions of a feed.
// Without a name the only feed is used, else DefaultSpellcheck; an unknown
// name falls back to DefaultSpellcheck when present
func (m *Spellchecks) Get(name string) ([]*Spellcheck, error) {
	if name == "" {
		if len(m.names) == 1 {
			return m.byID[m.names[0]], nil
		}
		name = DefaultSpellcheck
	}
	if s, ok := m.byID[name]; ok {
		return s, nil
	}
	if s, ok := m.byID[DefaultSpellcheck]; ok {
		return s, nil
	}
	return nil, perr.WithField(perr.NotFoundf("no spellcheck available for feed %q", name), "feed")
}
