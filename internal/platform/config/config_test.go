package config

import (
	"testing"
	"time"

	kit "afsearch/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	afs := New().Prefix("AFS_")
	if got := afs.key("HOST"); got != "AFS_HOST" {
		t.Fatalf("key() = %q, want AFS_HOST", got)
	}
	if got := afs.Prefix("PROXY_").key("HOST"); got != "AFS_PROXY_HOST" {
		t.Fatalf("nested key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("AFS_")
	t.Setenv("AFS_HOST", "  search.example.net ")
	if got := c.MustString("HOST"); got != "search.example.net" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMayPort(t *testing.T) {
	c := New().Prefix("GATEWAY_")
	if got := c.MayPort("API_PORT", "4000"); got != ":4000" {
		t.Fatalf("MayPort default = %q", got)
	}
	t.Setenv("GATEWAY_API_PORT", ":8080")
	if got := c.MayPort("API_PORT", "4000"); got != ":8080" {
		t.Fatalf("MayPort = %q", got)
	}
	t.Setenv("GATEWAY_BAD", "70000")
	kit.MustPanic(t, func() { _ = c.MayPort("BAD", "4000") })
}

func TestMayFallbacks(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_INT", " 7 ")
	t.Setenv("M_BADINT", "x")
	t.Setenv("M_BOOL", "true")
	t.Setenv("M_BADBOOL", "nope")
	t.Setenv("M_DUR", "150ms")
	t.Setenv("M_BADDUR", "soon")

	if c.MayString("MISSING", "def") != "def" {
		t.Fatalf("MayString default")
	}
	if c.MayInt("INT", 0) != 7 || c.MayInt("BADINT", 3) != 3 || c.MayInt("MISSING", 9) != 9 {
		t.Fatalf("MayInt mismatch")
	}
	if !c.MayBool("BOOL", false) || c.MayBool("BADBOOL", false) || !c.MayBool("MISSING", true) {
		t.Fatalf("MayBool mismatch")
	}
	if c.MayDuration("DUR", time.Second) != 150*time.Millisecond || c.MayDuration("BADDUR", time.Minute) != time.Minute {
		t.Fatalf("MayDuration mismatch")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("GATEWAY_")
	t.Setenv("GATEWAY_DEFAULT_LANGS", " en, fr , ,de-de ,, ")
	got := c.MayCSV("DEFAULT_LANGS", nil)
	want := []string{"en", "fr", "de-de"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV = %#v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	t.Setenv("GATEWAY_EMPTY", " , ,")
	if got := c.MayCSV("EMPTY", []string{"en"}); len(got) != 1 || got[0] != "en" {
		t.Fatalf("MayCSV all-blank should fall back: %#v", got)
	}
}
