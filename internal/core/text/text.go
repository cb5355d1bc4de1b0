// Package text rebuilds highlighted text sent by the search server as a
// list of fragments: plain strings, matches of the query words and truncations
package text

import (
	"strings"

	perr "afsearch/internal/platform/errors"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind of a text fragment
type Kind int

const (
	KindString Kind = iota
	KindMatch
	KindTruncate
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "KwicMatch"
	case KindTruncate:
		return "KwicTruncate"
	}
	return "KwicString"
}

// Fragment is one piece of a highlighted text
type Fragment struct {
	Kind Kind
	Text string
}

type wireFragment struct {
	Type  string `json:"afs:t"`
	Text  string `json:"text"`
	Match string `json:"match"`
}

// UnmarshalJSON reads {"afs:t":"KwicString","text":..}, {"afs:t":"KwicMatch","match":..} or {"afs:t":"KwicTruncate"}
func (f *Fragment) UnmarshalJSON(b []byte) error {
	var w wireFragment
	if err := json.Unmarshal(b, &w); err != nil {
		return perr.ReplyInvalid(err, b, "decode text fragment")
	}
	switch w.Type {
	case "KwicString":
		*f = Fragment{Kind: KindString, Text: w.Text}
	case "KwicMatch":
		*f = Fragment{Kind: KindMatch, Text: w.Match}
	case "KwicTruncate":
		*f = Fragment{Kind: KindTruncate}
	case "":
		return perr.ReplyInvalid(nil, b, "text fragment without afs:t type")
	default:
		return perr.ReplyInvalid(nil, b, "unmanaged text fragment type "+w.Type)
	}
	return nil
}

// Decode parses a JSON array of fragments
func Decode(raw []byte) ([]Fragment, error) {
	var out []Fragment
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, perr.ReplyInvalid(err, raw, "decode text")
	}
	return out, nil
}

// Visitor renders each kind of fragment
type Visitor interface {
	String(s string) string
	Match(s string) string
	Truncate() string
}

// Render folds fragments through v
func Render(frags []Fragment, v Visitor) string {
	if v == nil {
		v = HTMLVisitor{}
	}
	var b strings.Builder
	for _, f := range frags {
		switch f.Kind {
		case KindMatch:
			b.WriteString(v.Match(f.Text))
		case KindTruncate:
			b.WriteString(v.Truncate())
		default:
			b.WriteString(v.String(f.Text))
		}
	}
	return b.String()
}

// HTMLVisitor emboldens matches and shows truncations as an ellipsis
type HTMLVisitor struct{}

func (HTMLVisitor) String(s string) string { return s }
func (HTMLVisitor) Match(s string) string  { return "<b>" + s + "</b>" }
func (HTMLVisitor) Truncate() string       { return "..." }

// RawVisitor drops highlighting
type RawVisitor struct{}

func (RawVisitor) String(s string) string { return s }
func (RawVisitor) Match(s string) string  { return s }
func (RawVisitor) Truncate() string       { return "..." }

// Funcs builds a Visitor from functions; nil ones fall back to HTMLVisitor
type Funcs struct {
	StringFn   func(string) string
	MatchFn    func(string) string
	TruncateFn func() string
}

func (f Funcs) String(s string) string {
	if f.StringFn == nil {
		return HTMLVisitor{}.String(s)
	}
	return f.StringFn(s)
}

func (f Funcs) Match(s string) string {
	if f.MatchFn == nil {
		return HTMLVisitor{}.Match(s)
	}
	return f.MatchFn(s)
}

func (f Funcs) Truncate() string {
	if f.TruncateFn == nil {
		return HTMLVisitor{}.Truncate()
	}
	return f.TruncateFn()
}
