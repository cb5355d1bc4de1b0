// Package filterexpr builds advanced filter expressions such as
// PRICE<=42 and (COLOR=red or COLOR=blue)
package filterexpr

import (
	"strings"

	perr "afsearch/internal/platform/errors"
)

// Operator compares a field with a value
type Operator string

const (
	Equal        Operator = "="
	NotEqual     Operator = "!="
	Less         Operator = "<"
	LessEqual    Operator = "<="
	Greater      Operator = ">"
	GreaterEqual Operator = ">="
)

var operators = map[string]Operator{
	"equal":         Equal,
	"not_equal":     NotEqual,
	"less":          Less,
	"less_equal":    LessEqual,
	"greater":       Greater,
	"greater_equal": GreaterEqual,
}

// ParseOperator maps an operator name (equal, less_equal, ...) to its symbol
func ParseOperator(name string) (Operator, error) {
	if op, ok := operators[name]; ok {
		return op, nil
	}
	return "", perr.WithField(perr.Validationf("unknown filter operator %q", name), "operator")
}

// Combinator joins two expressions
type Combinator string

const (
	And Combinator = "and"
	Or  Combinator = "or"
)

// ParseCombinator accepts and / or
func ParseCombinator(name string) (Combinator, error) {
	switch c := Combinator(name); c {
	case And, Or:
		return c, nil
	}
	return "", perr.WithField(perr.Validationf("unknown filter combinator %q", name), "combinator")
}

// GeoDist is the native distance function of the server
const GeoDist = "geo:dist"

// Expr is a rendered filter expression; the zero value is empty
type Expr struct{ s string }

// String renders the expression as sent to the server
func (e Expr) String() string { return e.s }

// IsZero reports whether e holds nothing
func (e Expr) IsZero() bool { return e.s == "" }

// Combine joins e and r with c; an empty side yields the other one
func (e Expr) Combine(c Combinator, r Expr) Expr {
	switch {
	case e.IsZero():
		return r
	case r.IsZero():
		return e
	}
	return Expr{e.s + " " + string(c) + " " + r.s}
}

func (e Expr) And(r Expr) Expr { return e.Combine(And, r) }
func (e Expr) Or(r Expr) Expr  { return e.Combine(Or, r) }

// Group parenthesizes e
func Group(e Expr) Expr { return Expr{"(" + e.s + ")"} }

// Native calls a server function, e.g. Native(GeoDist, "48.8", "2.3", "1000")
func Native(fn string, params ...string) Expr {
	return Expr{fn + "(" + strings.Join(params, ",") + ")"}
}

// FieldRef is the left side of a comparison
type FieldRef struct{ id string }

// Field starts a comparison on id
func Field(id string) FieldRef { return FieldRef{id: id} }

// Compare renders id, operator and value
func (f FieldRef) Compare(op Operator, v string) Expr { return Expr{f.id + string(op) + v} }

func (f FieldRef) Equal(v string) Expr        { return f.Compare(Equal, v) }
func (f FieldRef) NotEqual(v string) Expr     { return f.Compare(NotEqual, v) }
func (f FieldRef) Less(v string) Expr         { return f.Compare(Less, v) }
func (f FieldRef) LessEqual(v string) Expr    { return f.Compare(LessEqual, v) }
func (f FieldRef) Greater(v string) Expr      { return f.Compare(Greater, v) }
func (f FieldRef) GreaterEqual(v string) Expr { return f.Compare(GreaterEqual, v) }

// AnyOf or-combines equality on each value; no value yields the zero Expr
func AnyOf(id string, values ...string) Expr {
	var e Expr
	for _, v := range values {
		e = e.Or(Field(id).Equal(v))
	}
	return e
}
