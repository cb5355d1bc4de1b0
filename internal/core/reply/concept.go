package reply

import (
	perr "afsearch/internal/platform/errors"
)

// DefaultConcept is the usual feed name of concept replies
const DefaultConcept = "concept"

// ConceptData is a concept attached to a query fragment
type ConceptData struct {
	URI      string
	Contents string
}

// ConceptItem is a fragment of the query text, optionally matched to concepts
type ConceptItem struct {
	Text string
	Data []ConceptData
}

func (i ConceptItem) HasConcept() bool { return len(i.Data) > 0 }

// Concept is the concept analysis of the query for one feed
type Concept struct {
	feed  string
	items []ConceptItem
}

func (c *Concept) Feed() string         { return c.feed }
func (c *Concept) Items() []ConceptItem { return c.items }

// Concepts indexes concept replies by feed
type Concepts struct {
	names []string
	byID  map[string]*Concept
}

func newConcepts() *Concepts { return &Concepts{byID: map[string]*Concept{}} }

func (m *Concepts) add(w *wireReplyset) error {
	if w.Content == nil {
		return nil
	}
	feed := w.Meta.URI
	for i := range w.Content.Reply {
		wc := w.Content.Reply[i].Concept
		if wc == nil || len(wc.Concepts.Concept) == 0 {
			continue
		}
		contents := make(map[string]string, len(wc.Concepts.Concept))
		for _, c := range wc.Concepts.Concept {
			contents[c.URI] = string(c.Contents)
		}
		c, ok := m.byID[feed]
		if !ok {
			c = &Concept{feed: feed}
			m.byID[feed] = c
			m.names = append(m.names, feed)
		}
		for _, it := range wc.Query.Items {
			item := ConceptItem{Text: it.Text}
			switch it.Kind {
			case "QueryMatch":
				for _, uri := range it.URI {
					item.Data = append(item.Data, ConceptData{URI: uri, Contents: contents[uri]})
				}
			case "QueryText":
			case "":
				return perr.ReplyInvalid(nil, nil, "no type specified for concept item")
			default:
				return perr.ReplyInvalid(nil, nil, "unmanaged concept type "+it.Kind)
			}
			c.items = append(c.items, item)
		}
	}
	return nil
}

func (m *Concepts) Has() bool { return len(m.names) > 0 }

// Names lists feeds with concepts in reply order
func (m *Concepts) Names() []string { return append([]string(nil), m.names...) }

// Get returns the concept of a feed.
// Without a name the single concept is returned; with several a name is required
func (m *Concepts) Get(name string) (*Concept, error) {
	if name == "" {
		if len(m.names) == 1 {
			return m.byID[m.names[0]], nil
		}
		return nil, perr.WithField(perr.NotFoundf("%d concept replies available, a feed name is required", len(m.names)), "feed")
	}
	if c, ok := m.byID[name]; ok {
		return c, nil
	}
	return nil, perr.WithField(perr.NotFoundf("no concept available for feed %q", name), "feed")
}
