package clientdata

import (
	"strings"

	"afsearch/internal/core/text"
	perr "afsearch/internal/platform/errors"

	"github.com/buger/jsonparser"
)

// JSON is a client data holding a JSON value
type JSON struct {
	id   string
	raw  []byte
	root node
}

// node is a JSON value as sliced by jsonparser; strings keep their escapes and lose their quotes
type node struct {
	data []byte
	typ  jsonparser.ValueType
}

type member struct {
	key string
	val node
}

// NewJSON validates contents
func NewJSON(id string, contents []byte) (*JSON, error) {
	data, typ, _, err := jsonparser.Get(contents)
	if err != nil {
		return nil, perr.ReplyInvalid(err, contents, "parse json client data "+id)
	}
	j := &JSON{id: id, raw: contents, root: node{data: data, typ: typ}}
	if _, err := j.root.compact(); err != nil {
		return nil, perr.ReplyInvalid(err, contents, "parse json client data "+id)
	}
	return j, nil
}

func (j *JSON) ID() string       { return j.id }
func (j *JSON) MimeType() string { return MimeAppJSON }

// Raw returns the document in compact form
func (j *JSON) Raw() string {
	s, _ := j.root.compact()
	return s
}

func (j *JSON) query(path string) ([]node, error) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	nodes := []node{j.root}
	for _, st := range steps {
		var next []node
		for _, n := range nodes {
			next = append(next, st.apply(n)...)
		}
		nodes = next
		if len(nodes) == 0 {
			break
		}
	}
	if len(nodes) == 0 {
		return nil, perr.NoMatchf("no client data value for %q", path)
	}
	return nodes, nil
}

// Value renders the first value selected by path
func (j *JSON) Value(path string, opts Options) (string, error) {
	nodes, err := j.query(path)
	if err != nil {
		return "", err
	}
	return nodes[0].render(opts.visitor())
}

// Values renders every value selected by path, in document order
func (j *JSON) Values(path string, opts Options) ([]string, error) {
	nodes, err := j.query(path)
	if err != nil {
		return nil, err
	}
	v := opts.visitor()
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		s, err := n.render(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Nodes decodes every value selected by path into plain Go values
func (j *JSON) Nodes(path string) ([]any, error) {
	nodes, err := j.query(path)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(nodes))
	for i, n := range nodes {
		c, err := n.compact()
		if err != nil {
			return nil, perr.ReplyInvalid(err, n.data, "decode client data value")
		}
		if err := json.UnmarshalFromString(c, &out[i]); err != nil {
			return nil, perr.ReplyInvalid(err, n.data, "decode client data value")
		}
	}
	return out, nil
}

func (st step) apply(n node) []node {
	switch st.kind {
	case stepChild:
		for _, m := range n.members() {
			if m.key == st.name {
				return []node{m.val}
			}
		}
	case stepIndex:
		if el := n.elements(); st.index < len(el) {
			return []node{el[st.index]}
		}
	case stepWildcard:
		if n.typ == jsonparser.Array {
			return n.elements()
		}
		ms := n.members()
		out := make([]node, len(ms))
		for i, m := range ms {
			out[i] = m.val
		}
		return out
	case stepDescendant:
		var out []node
		n.descend(st.name, &out)
		return out
	}
	return nil
}

func (n node) descend(name string, out *[]node) {
	switch n.typ {
	case jsonparser.Object:
		for _, m := range n.members() {
			if m.key == name {
				*out = append(*out, m.val)
			}
			m.val.descend(name, out)
		}
	case jsonparser.Array:
		for _, el := range n.elements() {
			el.descend(name, out)
		}
	}
}

func (n node) members() []member {
	ms, _ := n.scan()
	return ms
}

// scan lists object members in first occurrence order; a repeated key keeps its last value
func (n node) scan() ([]member, error) {
	if n.typ != jsonparser.Object {
		return nil, nil
	}
	var out []member
	pos := map[string]int{}
	err := jsonparser.ObjectEach(n.data, func(k, v []byte, t jsonparser.ValueType, _ int) error {
		key, err := jsonparser.ParseString(k)
		if err != nil {
			key = string(k)
		}
		if i, ok := pos[key]; ok {
			out[i].val = node{data: v, typ: t}
			return nil
		}
		pos[key] = len(out)
		out = append(out, member{key: key, val: node{data: v, typ: t}})
		return nil
	})
	return out, err
}

func (n node) elements() []node {
	if n.typ != jsonparser.Array {
		return nil
	}
	var out []node
	_, _ = jsonparser.ArrayEach(n.data, func(v []byte, t jsonparser.ValueType, _ int, err error) {
		if err == nil {
			out = append(out, node{data: v, typ: t})
		}
	})
	return out
}

// isText reports whether n is a non empty array of highlight fragments
func (n node) isText() bool {
	el := n.elements()
	if len(el) == 0 {
		return false
	}
	for _, e := range el {
		if e.typ != jsonparser.Object {
			return false
		}
		if _, _, _, err := jsonparser.Get(e.data, "afs:t"); err != nil {
			return false
		}
	}
	return true
}

// render turns a selected value into display text:
// strings verbatim, fragment arrays through v, anything else as compact JSON
func (n node) render(v text.Visitor) (string, error) {
	switch {
	case n.typ == jsonparser.String:
		s, err := jsonparser.ParseString(n.data)
		if err != nil {
			return "", perr.ReplyInvalid(err, n.data, "decode client data string")
		}
		return s, nil
	case n.isText():
		frags, err := text.Decode(n.data)
		if err != nil {
			return "", err
		}
		return text.Render(frags, v), nil
	}
	return n.compact()
}

// compact serialises n without insignificant whitespace, applying the repeated key rule
func (n node) compact() (string, error) {
	var b strings.Builder
	if err := n.write(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (n node) write(b *strings.Builder) error {
	switch n.typ {
	case jsonparser.String:
		b.WriteByte('"')
		b.Write(n.data)
		b.WriteByte('"')
	case jsonparser.Number, jsonparser.Boolean, jsonparser.Null:
		b.Write(n.data)
	case jsonparser.Object:
		ms, err := n.scan()
		if err != nil {
			return err
		}
		b.WriteByte('{')
		for i, m := range ms {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(`"` + escapeKey(m.key) + `":`)
			if err := m.val.write(b); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case jsonparser.Array:
		b.WriteByte('[')
		for i, el := range n.elements() {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := el.write(b); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	default:
		return perr.JSONErrf("malformed json value %q", n.data)
	}
	return nil
}

func escapeKey(k string) string {
	s, err := json.MarshalToString(k)
	if err != nil {
		return k
	}
	return s[1 : len(s)-1]
}
