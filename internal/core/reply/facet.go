package reply

import (
	"afsearch/internal/core/facet"
	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
)

// Facet is a facet of a replyset with its values
type Facet struct {
	id     string
	label  string
	labels []Label
	typ    facet.Type
	layout facet.Layout
	sticky bool
	values []FacetValue
}

// FacetValue is one selectable value; Children is only filled for TREE facets
type FacetValue struct {
	Key      string
	Label    string
	Count    int
	Active   bool
	Next     Target
	Children []FacetValue
	meta     []metaEntry
}

type metaEntry struct{ key, value string }

// Meta returns a value annotation
func (v FacetValue) Meta(name string) (string, error) {
	for _, m := range v.meta {
		if m.key == name {
			return m.value, nil
		}
	}
	return "", perr.WithField(perr.NotFoundf("no meta data available with name %q", name), "name")
}

// Metas returns every annotation of the value
func (v FacetValue) Metas() map[string]string {
	out := make(map[string]string, len(v.meta))
	for _, m := range v.meta {
		out[m.key] = m.value
	}
	return out
}

func facetLayout(w *wireFacet) facet.Layout {
	if l, err := facet.ParseLayout(w.Layout); err == nil {
		return l
	}
	if len(w.Interval) > 0 || w.Kind == "FacetInterval" {
		return facet.LayoutInterval
	}
	return facet.LayoutTree
}

// newFacet resolves the facet in the query registry and derives the follow-up of each value
func newFacet(w *wireFacet, q query.Query, cfg Config) (*Facet, error) {
	if w.ID == "" {
		return nil, perr.ReplyInvalid(nil, nil, "facet without id")
	}
	typ, err := facet.ParseType(w.Type)
	if err != nil {
		typ = facet.TypeUnknown
	}
	layout := facetLayout(w)
	reg := q.Registry()
	registered := reg.Resolve(w.ID, typ, layout)

	f := &Facet{
		id:     w.ID,
		label:  labelOf(w.Labels, w.ID),
		labels: toLabels(w.Labels),
		typ:    typ,
		layout: layout,
	}
	if w.Sticky != nil {
		f.sticky = *w.Sticky
	} else {
		f.sticky = reg.IsSticky(registered)
	}

	b := valueBuilder{facetID: w.ID, mode: registered.Mode(), q: q, cfg: cfg}
	if layout == facet.LayoutInterval {
		nodes := w.Interval
		if len(nodes) == 0 {
			nodes = w.Node
		}
		f.values, err = b.build(nodes, false)
	} else {
		f.values, err = b.build(w.Node, true)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

type valueBuilder struct {
	facetID string
	mode    facet.Mode
	q       query.Query
	cfg     Config
}

func (b valueBuilder) build(nodes []wireNode, tree bool) ([]FacetValue, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]FacetValue, 0, len(nodes))
	for _, n := range nodes {
		key := string(n.Key)
		v := FacetValue{
			Key:    key,
			Label:  labelOf(n.Labels, key),
			Count:  n.Items,
			Active: b.q.HasFilter(b.facetID, key),
		}
		for _, m := range n.Meta {
			v.meta = append(v.meta, metaEntry{key: m.Key, value: string(m.Value)})
		}
		next, err := b.next(key, v.Active)
		if err != nil {
			return nil, err
		}
		v.Next = b.cfg.target(next)
		if tree {
			if v.Children, err = b.build(n.Node, true); err != nil {
				return nil, err
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// next removes an active value; otherwise it replaces or extends the selection per facet mode
func (b valueBuilder) next(key string, active bool) (query.Query, error) {
	switch {
	case active:
		return b.q.RemoveFilter(b.facetID, key), nil
	case b.mode == facet.ModeReplace:
		return b.q.SetFilter(b.facetID, key), nil
	case b.mode == facet.ModeOr, b.mode == facet.ModeAnd:
		return b.q.AddFilter(b.facetID, key), nil
	}
	return b.q, perr.Statef("unmanaged facet mode %q for facet %s", b.mode, b.facetID)
}

func (f *Facet) ID() string           { return f.id }
func (f *Facet) Label() string        { return f.label }
func (f *Facet) Labels() []Label      { return append([]Label(nil), f.labels...) }
func (f *Facet) Type() facet.Type     { return f.typ }
func (f *Facet) Layout() facet.Layout { return f.layout }
func (f *Facet) IsSticky() bool       { return f.sticky }
func (f *Facet) Values() []FacetValue { return f.values }
func (f *Facet) HasValues() bool      { return len(f.values) > 0 }

// Value finds a value by key at any depth
func (f *Facet) Value(key string) (FacetValue, error) {
	if v, ok := findValue(f.values, key); ok {
		return v, nil
	}
	return FacetValue{}, perr.NotFoundf("no value %q in facet %s", key, f.id)
}

func findValue(values []FacetValue, key string) (FacetValue, bool) {
	for _, v := range values {
		if v.Key == key {
			return v, true
		}
		if c, ok := findValue(v.Children, key); ok {
			return c, true
		}
	}
	return FacetValue{}, false
}
