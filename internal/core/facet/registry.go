package facet

import (
	"strings"

	perr "afsearch/internal/platform/errors"
)

// Order controls how reply facets are arranged against the declared ones
type Order string

const (
	// OrderStrict keeps exactly the declared facets, in declared order
	OrderStrict Order = "STRICT"
	// OrderLax puts declared facets first and appends the others in reply order
	OrderLax Order = "LAX"
)

// ParseOrder accepts any casing of STRICT or LAX
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToUpper(strings.TrimSpace(s))); o {
	case OrderStrict, OrderLax:
		return o, nil
	}
	return "", perr.Validationf("invalid facet order %q", s)
}

// Registry maps facet ids to facets in declaration order
type Registry struct {
	facets        map[string]*Facet
	ids           []string
	orderIDs      []string
	lazy          bool
	order         Order
	ordered       bool
	defaultSticky bool
	sortOrders    map[string]ValuesSortOrder
}

// NewRegistry returns an empty registry in LAX order
func NewRegistry() *Registry {
	return &Registry{
		facets:     map[string]*Facet{},
		order:      OrderLax,
		sortOrders: map[string]ValuesSortOrder{},
	}
}

// SetLazy allows Get to return declared placeholders
func (r *Registry) SetLazy(lazy bool) { r.lazy = lazy }

// Lazy reports whether declared placeholders are visible through Get
func (r *Registry) Lazy() bool { return r.lazy }

// Add registers f; an id can only be registered once
func (r *Registry) Add(f *Facet) error {
	if f == nil {
		return perr.InvalidArgf("nil facet")
	}
	if _, ok := r.facets[f.id]; ok {
		return perr.WithField(perr.Duplicatef("facet with same id (%s) already present", f.id), "id")
	}
	r.facets[f.id] = f
	r.ids = append(r.ids, f.id)
	return nil
}

// Declare registers an untyped placeholder unless id is already known
func (r *Registry) Declare(id string) (*Facet, error) {
	if f, ok := r.facets[id]; ok {
		return f, nil
	}
	f, err := Declare(id)
	if err != nil {
		return nil, err
	}
	_ = r.Add(f)
	return f, nil
}

// Has reports whether Get would succeed for id
func (r *Registry) Has(id string) bool {
	f, ok := r.facets[id]
	return ok && (!f.declared || r.lazy)
}

// Get returns the registered facet.
// Declared placeholders are only returned in lazy mode
func (r *Registry) Get(id string) (*Facet, error) {
	if !r.Has(id) {
		return nil, perr.NotFoundf("no facet named %q is currently registered", id)
	}
	return r.facets[id], nil
}

// GetOrCreate returns the facet for id, declaring a placeholder when absent
// Ids coming from replies are trusted and not validated
func (r *Registry) GetOrCreate(id string) *Facet {
	if f, ok := r.facets[id]; ok {
		return f
	}
	f := &Facet{id: id, typ: TypeUnknown, layout: LayoutUnknown, mode: ModeUnspecified, declared: true}
	r.facets[id] = f
	r.ids = append(r.ids, id)
	return f
}

// Check verifies that a facet similar to f is registered
func (r *Registry) Check(f *Facet) error {
	known, ok := r.facets[f.id]
	if !ok {
		return perr.NotFoundf("no facet with id %q currently managed", f.id)
	}
	if !f.IsSimilar(known) {
		return perr.InvalidArgf("provided facet is not similar to registered one: %s != %s", f, known)
	}
	return nil
}

// CheckOrAdd registers f when unknown, otherwise checks it against the registered facet
func (r *Registry) CheckOrAdd(f *Facet) error {
	err := r.Check(f)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return r.Add(f)
	}
	return err
}

// Resolve back-fills type and layout from a reply.
// Unknown ids are registered as typed OR facets; typed facets are left untouched
func (r *Registry) Resolve(id string, t Type, l Layout) *Facet {
	f, ok := r.facets[id]
	if !ok {
		f = &Facet{id: id, typ: t, layout: l, mode: ModeOr}
		r.facets[id] = f
		r.ids = append(r.ids, id)
		return f
	}
	f.resolve(t, l)
	return f
}

// Facets returns every registered facet, placeholders included, in declaration order
func (r *Registry) Facets() []*Facet {
	out := make([]*Facet, len(r.ids))
	for i, id := range r.ids {
		out[i] = r.facets[id]
	}
	return out
}

// Len is the number of registered facets
func (r *Registry) Len() int { return len(r.ids) }

// SetOrder fixes the arrangement of reply facets.
// Listed ids are declared when unknown and moved first, in the given order
func (r *Registry) SetOrder(o Order, ids ...string) error {
	if _, err := ParseOrder(string(o)); err != nil {
		return err
	}
	front := make([]string, 0, len(r.ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, err := r.Declare(id); err != nil {
			return err
		}
		seen[id] = true
		front = append(front, id)
	}
	r.orderIDs = append([]string(nil), front...)
	for _, id := range r.ids {
		if !seen[id] {
			front = append(front, id)
		}
	}
	r.ids = front
	r.order = o
	r.ordered = true
	return nil
}

// Order returns the arrangement mode
func (r *Registry) Order() Order { return r.order }

// OrderIDs returns the ids given to the last SetOrder
func (r *Registry) OrderIDs() []string { return append([]string(nil), r.orderIDs...) }

// IsStrict reports whether reply facets are restricted to the declared ones
func (r *Registry) IsStrict() bool { return r.ordered && r.order == OrderStrict }

// Arrange returns the reply facet ids in presentation order.
// Without an explicit SetOrder the reply order is kept.
// Only the ids given to SetOrder lead; STRICT drops every other reply facet
func (r *Registry) Arrange(replyIDs []string) []string {
	if !r.ordered {
		return append([]string(nil), replyIDs...)
	}
	present := make(map[string]bool, len(replyIDs))
	for _, id := range replyIDs {
		present[id] = true
	}
	out := make([]string, 0, len(replyIDs))
	placed := map[string]bool{}
	for _, id := range r.orderIDs {
		if present[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	if r.order == OrderStrict {
		return out
	}
	for _, id := range replyIDs {
		if !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	return out
}

// SetDefaultSticky sets the stickiness inherited by facets without an explicit one
func (r *Registry) SetDefaultSticky(sticky bool) { r.defaultSticky = sticky }

// DefaultSticky returns the inherited stickiness
func (r *Registry) DefaultSticky() bool { return r.defaultSticky }

// IsSticky resolves the effective stickiness of f
func (r *Registry) IsSticky(f *Facet) bool {
	switch f.sticky {
	case Sticky:
		return true
	case NonSticky:
		return false
	}
	return r.defaultSticky
}

// SetStickiness overrides the stickiness of a registered facet in place
func (r *Registry) SetStickiness(id string, s Stickiness) error {
	f, ok := r.facets[id]
	if !ok {
		return perr.NotFoundf("no facet named %q is currently registered", id)
	}
	f.sticky = s
	return nil
}

// SetValuesSortOrder attaches a value sort order to each id, declaring unknown ids
func (r *Registry) SetValuesSortOrder(so ValuesSortOrder, ids ...string) error {
	for _, id := range ids {
		if _, err := r.Declare(id); err != nil {
			return err
		}
		r.sortOrders[id] = so
	}
	return nil
}

// ValuesSortOrder returns the value sort order attached to id
func (r *Registry) ValuesSortOrder(id string) (ValuesSortOrder, bool) {
	so, ok := r.sortOrders[id]
	return so, ok
}

// Clone returns an independent copy; facets are copied too
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	c.lazy, c.order, c.ordered, c.defaultSticky = r.lazy, r.order, r.ordered, r.defaultSticky
	c.orderIDs = append([]string(nil), r.orderIDs...)
	for _, id := range r.ids {
		f := *r.facets[id]
		c.facets[id] = &f
		c.ids = append(c.ids, id)
	}
	for id, so := range r.sortOrders {
		c.sortOrders[id] = so
	}
	return c
}
