// Package reply turns a raw search reply into navigable helpers.
// Every helper is built once from the reply and the query that produced it;
// follow-up queries (facet values, pages, clusters, spellchecks) derive from
// that query and are rendered as links when a Coder is configured.
// The query's facet registry is updated in place with the facet types found
// in the reply
package reply

import (
	"afsearch/internal/core/query"
	"afsearch/internal/core/text"
	perr "afsearch/internal/platform/errors"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type rawMessage = jsoniter.RawMessage

// Producer identifies the engine module that built a replyset
type Producer string

const (
	ProducerSearch     Producer = "SEARCH"
	ProducerSpellcheck Producer = "SPELLCHECK"
	ProducerConcept    Producer = "CONCEPT"
	ProducerACP        Producer = "ACP"
)

// PromoteFeed is the feed name of promoted replies
const PromoteFeed = "Promote"

// LinkCoder renders a query as a link
type LinkCoder interface {
	GenerateLink(q query.Query) string
}

// Config tunes the helpers built from a reply
type Config struct {
	// Coder renders follow-up queries as links when set
	Coder LinkCoder
	// TextVisitor renders titles and abstracts; nil means text.HTMLVisitor
	TextVisitor text.Visitor
	// SpellcheckVisitor renders suggestions; nil means text.DefaultSpellcheckVisitor
	SpellcheckVisitor text.SpellcheckVisitor
}

func (c Config) textVisitor() text.Visitor {
	if c.TextVisitor == nil {
		return text.HTMLVisitor{}
	}
	return c.TextVisitor
}

func (c Config) spellcheckVisitor() text.SpellcheckVisitor {
	if c.SpellcheckVisitor == nil {
		return text.DefaultSpellcheckVisitor{}
	}
	return c.SpellcheckVisitor
}

// HasCoder reports whether targets carry links
func (c Config) HasCoder() bool { return c.Coder != nil }

func (c Config) target(q query.Query) Target {
	t := Target{Query: q}
	if c.Coder != nil {
		t.Link = c.Coder.GenerateLink(q)
	}
	return t
}

// Target is the next step offered by a helper.
// Link is only set when the helper configuration has a Coder
type Target struct {
	Query query.Query
	Link  string
}

// Raw is a decoded reply, not yet bound to a query
type Raw struct {
	w wireResponse
}

// Decode parses a reply body
func Decode(body []byte) (*Raw, error) {
	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, perr.ReplyInvalid(err, body, "decode reply")
	}
	if w.Header == nil {
		return nil, perr.ReplyInvalid(nil, body, "reply has no header")
	}
	return &Raw{w: w}, nil
}

// Parse is Decode followed by New
func Parse(body []byte, q query.Query, cfg Config) (*Response, error) {
	raw, err := Decode(body)
	if err != nil {
		return nil, err
	}
	return New(raw, q, cfg)
}

func labelOf(labels []wireLabel, fallback string) string {
	if len(labels) > 0 && labels[0].Label != "" {
		return labels[0].Label
	}
	return fallback
}

// Label is a display label with its optional language
type Label struct {
	Lang  string `json:"lang,omitempty"`
	Label string `json:"label"`
}

func toLabels(w []wireLabel) []Label {
	if len(w) == 0 {
		return nil
	}
	out := make([]Label, len(w))
	for i, l := range w {
		out[i] = Label{Lang: l.Lang, Label: l.Label}
	}
	return out
}
