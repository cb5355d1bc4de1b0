package reply

import (
	"afsearch/internal/core/clientdata"
	"afsearch/internal/core/text"
	perr "afsearch/internal/platform/errors"
)

// BackOfficeNamespace qualifies the custom data of promoted replies
const BackOfficeNamespace = "http://ref.antidot.net/7.3/bo.xsd"

// PromoteType tells how a promoted reply is meant to be displayed
type PromoteType string

const (
	PromoteDefault  PromoteType = "default"
	PromoteBanner   PromoteType = "banner"
	PromoteRedirect PromoteType = "redirection"
)

var boNamespaces = map[string]string{"afs": BackOfficeNamespace}

// Promote holds the promoted replies of a response
type Promote struct {
	meta    *Meta
	replies []*PromoteReply
}

// PromoteReply is a reply pushed by the back office; its texts are never highlighted
type PromoteReply struct {
	*Reply
}

func newPromote(w *wireReplyset) (*Promote, error) {
	p := &Promote{meta: newMeta(w.Meta)}
	if w.Content == nil {
		return p, nil
	}
	replies, err := newReplies(w.Content.Reply, text.RawVisitor{})
	if err != nil {
		return nil, err
	}
	for _, r := range replies {
		p.replies = append(p.replies, &PromoteReply{Reply: r})
	}
	return p, nil
}

func (p *Promote) Meta() *Meta              { return p.meta }
func (p *Promote) Replies() []*PromoteReply { return p.replies }
func (p *Promote) HasReply() bool           { return len(p.replies) > 0 }
func (p *Promote) NbReplies() int           { return len(p.replies) }

// customData returns the default client data, which must be XML
func (r *PromoteReply) customData() (*clientdata.XML, error) {
	h, err := r.ClientData(clientdata.DefaultID)
	if err != nil {
		return nil, err
	}
	x, ok := h.(*clientdata.XML)
	if !ok {
		return nil, perr.Validationf("custom data of promote %s is not stored as XML", r.URI())
	}
	return x, nil
}

// CustomData returns one back office field
func (r *PromoteReply) CustomData(key string) (string, error) {
	x, err := r.customData()
	if err != nil {
		return "", err
	}
	return x.Value("/afs:customData/afs:"+key, clientdata.Options{Namespaces: boNamespaces, Visitor: text.RawVisitor{}})
}

// AllCustomData returns every back office field
func (r *PromoteReply) AllCustomData() (map[string]string, error) {
	x, err := r.customData()
	if err != nil {
		return nil, err
	}
	els, err := x.Elements("/afs:customData", clientdata.Options{Namespaces: boNamespaces, Visitor: text.RawVisitor{}})
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(els))
	for _, e := range els {
		out[e.Name] = e.Value
	}
	return out, nil
}

func (r *PromoteReply) xmlValue(path string) (string, error) {
	x, err := r.customData()
	if err != nil {
		return "", err
	}
	return x.Value(path, clientdata.Options{Namespaces: boNamespaces, Visitor: text.RawVisitor{}})
}

// Type reads afs:type from the custom data; replies without one are PromoteDefault
func (r *PromoteReply) Type() PromoteType {
	t, err := r.xmlValue("//afs:type")
	if err != nil {
		return PromoteDefault
	}
	switch PromoteType(t) {
	case PromoteBanner, PromoteRedirect:
		return PromoteType(t)
	}
	return PromoteDefault
}

// URL is the redirection target, or the banner link for banners
func (r *PromoteReply) URL() (string, error) {
	if r.Type() == PromoteBanner {
		return r.xmlValue("//afs:images/afs:image/afs:url")
	}
	return r.URI(), nil
}

// ImageURL is only available on banners
func (r *PromoteReply) ImageURL() (string, error) {
	if r.Type() != PromoteBanner {
		return "", perr.NotFoundf("promote %s is not a banner", r.URI())
	}
	return r.xmlValue("//afs:images/afs:image/afs:imageUrl")
}
