package facet

import (
	"testing"

	perr "afsearch/internal/platform/errors"
	kit "afsearch/internal/platform/testkit"
)

func mustFacet(t *testing.T, id string, ty Type, l Layout, m Mode) *Facet {
	t.Helper()
	f, err := New(id, ty, l, m)
	kit.MustNoErr(t, err)
	return f
}

func TestRegistryAddRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	kit.MustNoErr(t, r.Add(mustFacet(t, "foo", TypeString, LayoutTree, ModeOr)))
	err := r.Add(mustFacet(t, "foo", TypeInteger, LayoutTree, ModeOr))
	kit.MustCode(t, err, perr.ErrorCodeDuplicate)
	if f, _ := r.Get("foo"); f.Type() != TypeString {
		t.Fatalf("duplicate add must not overwrite")
	}
	kit.MustCode(t, r.Add(nil), perr.ErrorCodeInvalidArgument)
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("foo")
	kit.MustCode(t, err, perr.ErrorCodeNotFound)
	if r.Has("foo") {
		t.Fatalf("Has should be false")
	}
}

func TestRegistryCheck(t *testing.T) {
	r := NewRegistry()
	kit.MustNoErr(t, r.Add(mustFacet(t, "foo", TypeString, LayoutTree, ModeOr)))

	kit.MustNoErr(t, r.Check(mustFacet(t, "foo", TypeString, LayoutTree, ModeAnd)))
	kit.MustCode(t, r.Check(mustFacet(t, "foo", TypeDate, LayoutTree, ModeOr)), perr.ErrorCodeInvalidArgument)
	kit.MustCode(t, r.Check(mustFacet(t, "bar", TypeDate, LayoutTree, ModeOr)), perr.ErrorCodeNotFound)

	kit.MustNoErr(t, r.CheckOrAdd(mustFacet(t, "bar", TypeDate, LayoutTree, ModeOr)))
	if !r.Has("bar") {
		t.Fatalf("CheckOrAdd should register unknown facet")
	}
	kit.MustCode(t, r.CheckOrAdd(mustFacet(t, "bar", TypeInteger, LayoutTree, ModeOr)), perr.ErrorCodeInvalidArgument)
}

func TestLazyDeclarationUpgradesInPlace(t *testing.T) {
	r := NewRegistry()
	so, err := NewValuesSortOrder(SortAlpha, Asc)
	kit.MustNoErr(t, err)
	kit.MustNoErr(t, r.SetValuesSortOrder(so, "color"))

	_, err = r.Get("color")
	kit.MustCode(t, err, perr.ErrorCodeNotFound)

	r.SetLazy(true)
	placeholder, err := r.Get("color")
	kit.MustNoErr(t, err)
	if !placeholder.IsDeclared() || placeholder.Type() != TypeUnknown {
		t.Fatalf("expected declared placeholder, got %s", placeholder)
	}

	resolved := r.Resolve("color", TypeString, LayoutTree)
	if resolved != placeholder {
		t.Fatalf("resolve must upgrade the same facet")
	}
	if placeholder.IsDeclared() || placeholder.Type() != TypeString || placeholder.Layout() != LayoutTree {
		t.Fatalf("placeholder not upgraded: %s", placeholder)
	}

	// never downgraded nor retyped once typed
	r.Resolve("color", TypeInteger, LayoutInterval)
	if placeholder.Type() != TypeString {
		t.Fatalf("typed facet must not change")
	}
	if got, ok := r.ValuesSortOrder("color"); !ok || got != so {
		t.Fatalf("sort order lost: %+v", got)
	}
}

func TestResolveRegistersUnknown(t *testing.T) {
	r := NewRegistry()
	f := r.Resolve("afs:lang", TypeString, LayoutTree)
	if f.IsDeclared() || !r.Has("afs:lang") {
		t.Fatalf("resolve should register typed facet")
	}
	kit.MustEqual(t, f.Mode(), ModeOr)

	p := r.GetOrCreate("size")
	kit.MustEqual(t, p.Mode(), ModeUnspecified)
	r.Resolve("size", TypeInteger, LayoutTree)
	kit.MustEqual(t, p.Mode(), ModeOr)

	explicit := mustFacet(t, "kind", TypeString, LayoutTree, ModeUnspecified)
	kit.MustNoErr(t, r.Add(explicit))
	r.Resolve("kind", TypeString, LayoutTree)
	kit.MustEqual(t, explicit.Mode(), ModeUnspecified)
}

func TestGetOrCreate(t *testing.T) {
	r := NewRegistry()
	f := r.GetOrCreate("foo")
	if !f.IsDeclared() || f.Join([]string{"bar"}) != "foo=bar" {
		t.Fatalf("unexpected created facet %s", f)
	}
	if r.GetOrCreate("foo") != f || r.Len() != 1 {
		t.Fatalf("GetOrCreate must be idempotent")
	}
}

func TestArrange(t *testing.T) {
	reply := []string{"c", "x", "a", "b"}

	r := NewRegistry()
	kit.MustEqual(t, r.Arrange(reply), reply)

	kit.MustNoErr(t, r.SetOrder(OrderLax, "a", "b", "c", "z"))
	kit.MustEqual(t, r.Arrange(reply), []string{"a", "b", "c", "x"})
	if r.IsStrict() {
		t.Fatalf("lax registry reported strict")
	}

	kit.MustNoErr(t, r.SetOrder(OrderStrict, "b", "a"))
	kit.MustEqual(t, r.Arrange(reply), []string{"b", "a"})
	kit.MustEqual(t, r.OrderIDs(), []string{"b", "a"})
	if !r.IsStrict() {
		t.Fatalf("strict registry reported lax")
	}
	ids := []string{}
	for _, f := range r.Facets() {
		ids = append(ids, f.ID())
	}
	kit.MustEqual(t, ids, []string{"b", "a", "c", "z"})

	kit.MustCode(t, r.SetOrder("RANDOM"), perr.ErrorCodeValidation)
	kit.MustCode(t, r.SetOrder(OrderLax, "bad-id"), perr.ErrorCodeValidation)
}

func TestArrangeStrictDropsUnlistedFacets(t *testing.T) {
	r := NewRegistry()
	kit.MustNoErr(t, r.Add(mustFacet(t, "price", TypeReal, LayoutInterval, ModeOr)))
	kit.MustNoErr(t, r.Add(mustFacet(t, "color", TypeString, LayoutTree, ModeOr)))
	kit.MustNoErr(t, r.SetOrder(OrderStrict, "color"))
	r.GetOrCreate("brand")
	r.Resolve("size", TypeInteger, LayoutTree)

	kit.MustEqual(t, r.Arrange([]string{"size", "price", "brand", "color"}), []string{"color"})

	c := r.Clone()
	kit.MustEqual(t, c.Arrange([]string{"price", "color"}), []string{"color"})
}

func TestStickiness(t *testing.T) {
	r := NewRegistry()
	foo := mustFacet(t, "foo", TypeString, LayoutTree, ModeOr)
	bar := mustFacet(t, "bar", TypeString, LayoutTree, ModeOr).WithSticky(NonSticky)
	kit.MustNoErr(t, r.Add(foo))
	kit.MustNoErr(t, r.Add(bar))

	if r.IsSticky(foo) || r.IsSticky(bar) {
		t.Fatalf("default should be non sticky")
	}
	r.SetDefaultSticky(true)
	if !r.IsSticky(foo) || r.IsSticky(bar) {
		t.Fatalf("inherit should follow default, explicit should not")
	}
	kit.MustNoErr(t, r.SetStickiness("bar", Sticky))
	if !r.IsSticky(bar) {
		t.Fatalf("SetStickiness not applied")
	}
	kit.MustCode(t, r.SetStickiness("nope", Sticky), perr.ErrorCodeNotFound)
}

func TestCloneIsIndependent(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Declare("foo")
	c := r.Clone()
	c.Resolve("foo", TypeInteger, LayoutTree)
	if f := r.GetOrCreate("foo"); !f.IsDeclared() {
		t.Fatalf("clone mutated original")
	}
}
