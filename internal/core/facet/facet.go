// Package facet declares the facets known to a search client and the registry
// shared by the query builder and the reply decoder.
// A Registry is mutated in place while replies are decoded and is not safe for
// concurrent use; give each goroutine its own registry or guard it externally
package facet

import (
	"regexp"
	"strings"

	perr "afsearch/internal/platform/errors"
)

// Type is the value type of a facet
type Type string

const (
	TypeInteger Type = "INTEGER"
	TypeReal    Type = "REAL"
	TypeString  Type = "STRING"
	TypeDate    Type = "DATE"
	TypeBool    Type = "BOOL"
	TypeUnknown Type = "UNKNOWN"
)

// ParseType accepts any casing of a known type name
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeInteger, TypeReal, TypeString, TypeDate, TypeBool, TypeUnknown:
		return t, nil
	}
	return "", perr.Validationf("invalid facet type %q", s)
}

// Quoted reports whether filter values of this type are embraced with double quotes
func (t Type) Quoted() bool { return t == TypeString || t == TypeDate }

// Layout is the shape of the facet values in a reply
type Layout string

const (
	LayoutTree     Layout = "TREE"
	LayoutInterval Layout = "INTERVAL"
	// LayoutUnknown marks a declared facet whose layout is not known yet
	LayoutUnknown Layout = ""
)

// ParseLayout accepts any casing of TREE or INTERVAL
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToUpper(strings.TrimSpace(s))); l {
	case LayoutTree, LayoutInterval:
		return l, nil
	}
	return "", perr.Validationf("invalid facet layout %q", s)
}

// Mode governs how a newly selected value combines with the active ones
type Mode string

const (
	// ModeReplace keeps a single active value
	ModeReplace Mode = "replace"
	// ModeOr keeps several values, any of which may match
	ModeOr Mode = "or"
	// ModeAnd keeps several values, all of which must match
	ModeAnd Mode = "and"
	// ModeUnspecified joins values with or but cannot derive a next selection
	ModeUnspecified Mode = "unspecified"
)

// ParseMode accepts any casing of a known mode name; empty means unspecified
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeUnspecified, nil
	}
	switch m := Mode(s); m {
	case ModeReplace, ModeOr, ModeAnd, ModeUnspecified:
		return m, nil
	}
	return "", perr.Validationf("invalid facet mode %q", s)
}

// Combination is the word joining several filter values of one facet
func (m Mode) Combination() string {
	if m == ModeAnd {
		return "and"
	}
	return "or"
}

// Stickiness of a facet; Inherit defers to the registry default
type Stickiness int

const (
	Inherit Stickiness = iota
	Sticky
	NonSticky
)

var idPattern = regexp.MustCompile(`^(afs:)?[A-Za-z][A-Za-z0-9_]*$`)

// ValidID reports whether id is usable as a facet identifier
func ValidID(id string) bool { return idPattern.MatchString(id) }

func checkID(id string) error {
	if !ValidID(id) {
		return perr.WithField(perr.Validationf("invalid facet id %q", id), "id")
	}
	return nil
}

// Facet describes one filterable dimension.
// A facet is either declared (only the id is known) or typed; a declared
// facet is upgraded in place when a reply supplies its type and layout
type Facet struct {
	id       string
	typ      Type
	layout   Layout
	mode     Mode
	sticky   Stickiness
	declared bool
}

// New returns a typed facet after validating id and enums
func New(id string, t Type, l Layout, m Mode) (*Facet, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}
	if _, err := ParseLayout(string(l)); err != nil {
		return nil, err
	}
	if m == "" {
		m = ModeUnspecified
	}
	if _, err := ParseMode(string(m)); err != nil {
		return nil, err
	}
	return &Facet{id: id, typ: t, layout: l, mode: m}, nil
}

// Declare returns an untyped placeholder for id
func Declare(id string) (*Facet, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return &Facet{id: id, typ: TypeUnknown, layout: LayoutUnknown, mode: ModeUnspecified, declared: true}, nil
}

// WithSticky returns a copy with an explicit stickiness
func (f *Facet) WithSticky(s Stickiness) *Facet {
	c := *f
	c.sticky = s
	return &c
}

func (f *Facet) ID() string             { return f.id }
func (f *Facet) Type() Type             { return f.typ }
func (f *Facet) Layout() Layout         { return f.layout }
func (f *Facet) Mode() Mode             { return f.mode }
func (f *Facet) Stickiness() Stickiness { return f.sticky }

// IsDeclared reports whether the facet is still an untyped placeholder
func (f *Facet) IsDeclared() bool { return f.declared }

// IsSimilar reports whether both facets share id, type and layout
func (f *Facet) IsSimilar(o *Facet) bool {
	return o != nil && f.id == o.id && f.typ == o.typ && f.layout == o.layout
}

// resolve upgrades a declared facet; typed facets are never changed
// resolve upgrades a placeholder; the server combines undeclared facet values with or
func (f *Facet) resolve(t Type, l Layout) {
	if !f.declared {
		return
	}
	f.typ, f.layout, f.declared = t, l, false
	if f.mode == ModeUnspecified {
		f.mode = ModeOr
	}
}

// FormatValue renders one filter clause: id=value, quoted for string and date facets
func (f *Facet) FormatValue(v string) string {
	if f.typ.Quoted() {
		return f.id + `="` + v + `"`
	}
	return f.id + "=" + v
}

// Join renders the filter expression for all values of this facet
func (f *Facet) Join(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = f.FormatValue(v)
	}
	return strings.Join(parts, " "+f.mode.Combination()+" ")
}

// String is a debugging representation
func (f *Facet) String() string {
	if f.declared {
		return f.id + "(declared)"
	}
	return f.id + "(" + string(f.typ) + "," + string(f.layout) + "," + string(f.mode) + ")"
}
