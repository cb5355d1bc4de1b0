package reply

import (
	"afsearch/internal/core/clientdata"
	"afsearch/internal/core/text"
	perr "afsearch/internal/platform/errors"
)

// Reply is one document of a replyset
type Reply struct {
	docID      int
	uri        string
	title      string
	abstract   string
	rank       int
	geo        rawMessage
	clientData []clientdata.Raw
}

func newReply(w *wireReply, v text.Visitor) (*Reply, error) {
	title, err := renderText(w.Title, v)
	if err != nil {
		return nil, err
	}
	abstract, err := renderText(w.Abstract, v)
	if err != nil {
		return nil, err
	}
	return &Reply{
		docID:      w.DocID,
		uri:        w.URI,
		title:      title,
		abstract:   abstract,
		rank:       w.Relevance.Rank,
		geo:        w.Geo,
		clientData: w.ClientData,
	}, nil
}

func renderText(raw rawMessage, v text.Visitor) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	frags, err := text.Decode(raw)
	if err != nil {
		return "", err
	}
	return text.Render(frags, v), nil
}

func newReplies(ws []wireReply, v text.Visitor) ([]*Reply, error) {
	out := make([]*Reply, 0, len(ws))
	for i := range ws {
		r, err := newReply(&ws[i], v)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (r *Reply) DocID() int  { return r.docID }
func (r *Reply) URI() string { return r.uri }

// Title and Abstract are "" when the reply carries none
func (r *Reply) Title() string    { return r.title }
func (r *Reply) Abstract() string { return r.abstract }
func (r *Reply) Rank() int        { return r.rank }

// Geo decodes the geographical extension of the reply
func (r *Reply) Geo() (map[string]any, bool) {
	if len(r.geo) == 0 {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(r.geo, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func (r *Reply) HasClientData() bool { return len(r.clientData) > 0 }

// ClientDatas fails with a not found error when the reply has no client data
func (r *Reply) ClientDatas() (*clientdata.Manager, error) {
	if len(r.clientData) == 0 {
		return nil, perr.NotFoundf("no client data available for reply %s", r.uri)
	}
	return clientdata.NewManager(r.clientData)
}

// ClientData returns the client data named id, clientdata.DefaultID when empty
func (r *Reply) ClientData(id string) (clientdata.Helper, error) {
	m, err := r.ClientDatas()
	if err != nil {
		return nil, err
	}
	return m.Get(id)
}
