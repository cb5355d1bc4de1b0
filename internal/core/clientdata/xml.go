package clientdata

import (
	"strings"

	"afsearch/internal/core/text"
	perr "afsearch/internal/platform/errors"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// AfsNamespace is bound to the afs prefix unless a lookup binds it elsewhere
const AfsNamespace = "http://ref.antidot.net/v7/afs#"

// XML is a client data holding an XML document
type XML struct {
	id        string
	raw       string
	doc       *xmlquery.Node
	highlight bool
}

// NewXML parses contents.
// Highlighted documents use afs:match and afs:trunc without declaring the
// prefix; the declaration is added to the root element
func NewXML(id, contents string) (*XML, error) {
	x := &XML{id: id, raw: contents}
	parsed := contents
	if strings.Contains(contents, "<afs:match>") || strings.Contains(contents, "<afs:trunc/>") {
		x.highlight = true
		if !strings.Contains(contents, "xmlns:afs=") {
			parsed = declareAfs(contents)
		}
	}
	doc, err := xmlquery.Parse(strings.NewReader(parsed))
	if err != nil {
		return nil, perr.ReplyInvalid(err, []byte(contents), "parse xml client data "+id)
	}
	x.doc = doc
	return x, nil
}

// declareAfs adds the afs namespace to the first element, skipping any prolog
func declareAfs(s string) string {
	start := 0
	for {
		i := strings.IndexByte(s[start:], '<')
		if i < 0 {
			return s
		}
		start += i
		if start+1 < len(s) && s[start+1] != '?' && s[start+1] != '!' {
			break
		}
		start++
	}
	end := strings.IndexByte(s[start:], '>')
	if end < 0 {
		return s
	}
	end += start
	if s[end-1] == '/' {
		end--
	}
	return s[:end] + ` xmlns:afs="` + AfsNamespace + `"` + s[end:]
}

func (x *XML) ID() string       { return x.id }
func (x *XML) MimeType() string { return MimeAppXML }
func (x *XML) Raw() string      { return x.raw }

func (x *XML) query(path string, opts Options) ([]*xmlquery.Node, error) {
	ns := map[string]string{"afs": AfsNamespace}
	for p, uri := range opts.Namespaces {
		ns[p] = uri
	}
	expr, err := xpath.CompileWithNS(path, ns)
	if err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "invalid xpath %q", path), "path")
	}
	nodes := xmlquery.QuerySelectorAll(x.doc, expr)
	if len(nodes) == 0 {
		return nil, perr.NoMatchf("no client data value for %q", path)
	}
	return nodes, nil
}

// Value renders the first node selected by path; an empty path returns the raw document
func (x *XML) Value(path string, opts Options) (string, error) {
	if path == "" {
		return x.raw, nil
	}
	nodes, err := x.query(path, opts)
	if err != nil {
		return "", err
	}
	return x.render(nodes[0], opts.visitor()), nil
}

// Values renders every node selected by path
func (x *XML) Values(path string, opts Options) ([]string, error) {
	if path == "" {
		return []string{x.raw}, nil
	}
	nodes, err := x.query(path, opts)
	if err != nil {
		return nil, err
	}
	v := opts.visitor()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = x.render(n, v)
	}
	return out, nil
}

// render concatenates the text below n, rendering highlight elements through v
func (x *XML) render(n *xmlquery.Node, v text.Visitor) string {
	if !x.highlight || n.Type == xmlquery.AttributeNode || n.Type == xmlquery.TextNode {
		return n.InnerText()
	}
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode:
				b.WriteString(v.String(c.Data))
			case c.Type != xmlquery.ElementNode:
			case isAfs(c, "match"):
				b.WriteString(v.Match(c.InnerText()))
			case isAfs(c, "trunc"):
				b.WriteString(v.Truncate())
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

func isAfs(n *xmlquery.Node, local string) bool {
	return n.Data == local && (n.NamespaceURI == AfsNamespace || n.Prefix == "afs")
}

// Element is a child element rendered as text
type Element struct {
	Name  string
	Value string
}

// Elements renders the child elements of the first node selected by path, in document order
func (x *XML) Elements(path string, opts Options) ([]Element, error) {
	nodes, err := x.query(path, opts)
	if err != nil {
		return nil, err
	}
	v := opts.visitor()
	var out []Element
	for c := nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, Element{Name: c.Data, Value: x.render(c, v)})
		}
	}
	return out, nil
}
