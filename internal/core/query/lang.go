package query

import (
	"regexp"

	perr "afsearch/internal/platform/errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var langPattern = regexp.MustCompile(`^([a-zA-Z]{2})(?:[_-]([a-zA-Z]{2}))?$`)

var lower = cases.Lower(language.Und)

// Language is a two letter language code with an optional two letter region.
// The zero value means "no language"
type Language struct{ code string }

// ParseLanguage accepts xx, xx-XX and xx_XX in any case and canonicalizes to lowercase xx-xx
// An empty string yields the zero Language
func ParseLanguage(s string) (Language, error) {
	if s == "" {
		return Language{}, nil
	}
	m := langPattern.FindStringSubmatch(s)
	if m == nil {
		return Language{}, perr.WithField(perr.Validationf("invalid language %q", s), "lang")
	}
	code := lower.String(m[1])
	if m[2] != "" {
		code += "-" + lower.String(m[2])
	}
	return Language{code: code}, nil
}

// String returns the canonical code
func (l Language) String() string { return l.code }

// IsZero reports whether no language is set
func (l Language) IsZero() bool { return l.code == "" }

// Tag converts to a BCP 47 tag; the zero Language maps to language.Und
func (l Language) Tag() language.Tag {
	if l.code == "" {
		return language.Und
	}
	t, err := language.Parse(l.code)
	if err != nil {
		return language.Und
	}
	return t
}

// LanguageFromTag keeps the base language and region of t
func LanguageFromTag(t language.Tag) (Language, error) {
	base, conf := t.Base()
	if conf == language.No {
		return Language{}, perr.Validationf("no language in tag %q", t)
	}
	s := base.String()
	if region, rc := t.Region(); rc == language.Exact {
		s += "-" + region.String()
	}
	return ParseLanguage(s)
}
