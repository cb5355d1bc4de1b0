// Package clientdata reads the client data attached to each reply.
// A client data is an XML or JSON document queried with XPath or a small
// JSON path language respectively
package clientdata

import (
	"afsearch/internal/core/text"
	perr "afsearch/internal/platform/errors"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultID is the id looked up when none is given
const DefaultID = "main"

// Mime types handled by New
const (
	MimeTextXML  = "text/xml"
	MimeAppXML   = "application/xml"
	MimeTextJSON = "text/json"
	MimeAppJSON  = "application/json"
)

// Raw is a client data as found in a reply
type Raw struct {
	ID       string              `json:"id"`
	MimeType string              `json:"mimeType"`
	Contents jsoniter.RawMessage `json:"contents"`
}

// Options tune a lookup
type Options struct {
	// Namespaces maps XPath prefixes to namespace URIs; ignored for JSON
	Namespaces map[string]string
	// Visitor renders highlighted text; nil means text.HTMLVisitor
	Visitor text.Visitor
}

func (o Options) visitor() text.Visitor {
	if o.Visitor == nil {
		return text.HTMLVisitor{}
	}
	return o.Visitor
}

// Helper queries one client data.
// An empty path addresses the whole document
type Helper interface {
	ID() string
	MimeType() string
	Raw() string
	Value(path string, opts Options) (string, error)
	Values(path string, opts Options) ([]string, error)
}

// New picks the helper matching the mime type of raw
func New(raw Raw) (Helper, error) {
	if raw.MimeType == "" {
		return nil, perr.ReplyInvalid(nil, raw.Contents, "no mime type for client data "+raw.ID)
	}
	if len(raw.Contents) == 0 {
		return nil, perr.ReplyInvalid(nil, nil, "no contents for client data "+raw.ID)
	}
	switch raw.MimeType {
	case MimeTextXML, MimeAppXML:
		var s string
		if err := json.Unmarshal(raw.Contents, &s); err != nil {
			return nil, perr.ReplyInvalid(err, raw.Contents, "xml client data contents must be a string")
		}
		return NewXML(raw.ID, s)
	case MimeTextJSON, MimeAppJSON:
		return NewJSON(raw.ID, raw.Contents)
	}
	return nil, perr.WithField(perr.Validationf("unmanaged client data type %q", raw.MimeType), "mimeType")
}

// Manager indexes the client data of one reply by id
type Manager struct {
	ids     []string
	helpers map[string]Helper
}

// NewManager builds every helper; the first failure is returned
func NewManager(raws []Raw) (*Manager, error) {
	m := &Manager{helpers: make(map[string]Helper, len(raws))}
	for _, r := range raws {
		h, err := New(r)
		if err != nil {
			return nil, err
		}
		if _, dup := m.helpers[h.ID()]; !dup {
			m.ids = append(m.ids, h.ID())
		}
		m.helpers[h.ID()] = h
	}
	return m, nil
}

// IDs lists the client data ids in reply order
func (m *Manager) IDs() []string { return append([]string(nil), m.ids...) }

// Get returns the client data named id, DefaultID when empty
func (m *Manager) Get(id string) (Helper, error) {
	if id == "" {
		id = DefaultID
	}
	h, ok := m.helpers[id]
	if !ok {
		return nil, perr.WithField(perr.NotFoundf("no client data with id %q", id), "id")
	}
	return h, nil
}

// Value is Get(id).Value(path, opts)
func (m *Manager) Value(id, path string, opts Options) (string, error) {
	h, err := m.Get(id)
	if err != nil {
		return "", err
	}
	return h.Value(path, opts)
}

// Values is Get(id).Values(path, opts)
func (m *Manager) Values(id, path string, opts Options) ([]string, error) {
	h, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return h.Values(path, opts)
}
