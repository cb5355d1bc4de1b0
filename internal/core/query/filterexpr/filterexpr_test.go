package filterexpr

import (
	"testing"

	perr "afsearch/internal/platform/errors"
	"afsearch/internal/platform/testkit"
)

func TestComparisons(t *testing.T) {
	cases := []struct {
		got  Expr
		want string
	}{
		{Field("ID").Equal("42"), "ID=42"},
		{Field("ID").NotEqual("666"), "ID!=666"},
		{Field("ID").Less("666"), "ID<666"},
		{Field("ID").LessEqual("42"), "ID<=42"},
		{Field("ID").Greater("42"), "ID>42"},
		{Field("ID").GreaterEqual("666"), "ID>=666"},
	}
	for _, c := range cases {
		if c.got.String() != c.want {
			t.Fatalf("got %q, want %q", c.got, c.want)
		}
	}
}

func TestCombinationsAndGroups(t *testing.T) {
	id, foo := Field("ID"), Field("FOO")
	cases := []struct {
		got  Expr
		want string
	}{
		{id.Equal("value").And(foo.NotEqual("bar")), "ID=value and FOO!=bar"},
		{id.Equal("value").Or(foo.NotEqual("bar")), "ID=value or FOO!=bar"},
		{Group(id.Equal("value")), "(ID=value)"},
		{Group(id.Equal("value").And(foo.Less("val"))), "(ID=value and FOO<val)"},
		{Group(id.Equal("value")).And(foo.Less("val")), "(ID=value) and FOO<val"},
		{id.Equal("value").And(Group(foo.Less("val"))), "ID=value and (FOO<val)"},
		{
			Group(id.Equal("value").And(foo.Equal("bar"))).
				Or(Group(id.Equal("val").And(foo.Equal("baz")))).
				Or(Field("YOP").Less("bla")),
			"(ID=value and FOO=bar) or (ID=val and FOO=baz) or YOP<bla",
		},
		{Native(GeoDist, "48.85", "2.35", "1000").And(id.Equal("1")), "geo:dist(48.85,2.35,1000) and ID=1"},
		{AnyOf("ID", "v1", "v2", "v3"), "ID=v1 or ID=v2 or ID=v3"},
	}
	for _, c := range cases {
		if c.got.String() != c.want {
			t.Fatalf("got %q, want %q", c.got, c.want)
		}
	}
	if !AnyOf("ID").IsZero() {
		t.Fatalf("AnyOf without values should be empty")
	}
}

func TestParse(t *testing.T) {
	op, err := ParseOperator("less_equal")
	testkit.MustNoErr(t, err)
	if c := Field("ID").Compare(op, "42"); c.String() != "ID<=42" {
		t.Fatalf("Compare = %q", c)
	}
	_, err = ParseOperator("less_than_or_equal_to")
	testkit.MustCode(t, err, perr.ErrorCodeValidation)

	c, err := ParseCombinator("or")
	testkit.MustNoErr(t, err)
	if e := Field("A").Equal("1").Combine(c, Field("B").Equal("2")); e.String() != "A=1 or B=2" {
		t.Fatalf("Combine = %q", e)
	}
	_, err = ParseCombinator("foo")
	testkit.MustCode(t, err, perr.ErrorCodeValidation)
}
