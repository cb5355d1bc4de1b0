package text

import (
	"strings"

	perr "afsearch/internal/platform/errors"
)

// SpellcheckFragment is one word or separator of a suggested query
type SpellcheckFragment struct {
	Match bool
	Pre   string
	Text  string
}

type wireSpellcheck struct {
	Text  *wireWord `json:"text"`
	Sep   *wireWord `json:"sep"`
	Match *wireWord `json:"match"`
}

type wireWord struct {
	Text string `json:"text"`
	Pre  string `json:"pre"`
}

// UnmarshalJSON reads {"text":{..}}, {"sep":{..}} or {"match":{..}}
func (f *SpellcheckFragment) UnmarshalJSON(b []byte) error {
	var w wireSpellcheck
	if err := json.Unmarshal(b, &w); err != nil {
		return perr.ReplyInvalid(err, b, "decode spellcheck fragment")
	}
	switch {
	case w.Text != nil:
		*f = SpellcheckFragment{Pre: w.Text.Pre, Text: w.Text.Text}
	case w.Sep != nil:
		*f = SpellcheckFragment{Pre: w.Sep.Pre, Text: w.Sep.Text}
	case w.Match != nil:
		*f = SpellcheckFragment{Match: true, Pre: w.Match.Pre, Text: w.Match.Text}
	default:
		return perr.ReplyInvalid(nil, b, "spellcheck fragment is neither text, sep nor match")
	}
	return nil
}

// DecodeSpellcheck parses a JSON array of spellcheck fragments
func DecodeSpellcheck(raw []byte) ([]SpellcheckFragment, error) {
	var out []SpellcheckFragment
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, perr.ReplyInvalid(err, raw, "decode spellcheck")
	}
	return out, nil
}

// RawAndFormatted carries a suggestion both as plain query text and as markup
type RawAndFormatted struct {
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
}

// SpellcheckVisitor renders suggestion fragments
type SpellcheckVisitor interface {
	Text(pre, text string) RawAndFormatted
	Match(pre, text string) RawAndFormatted
}

// DefaultSpellcheckVisitor emboldens corrected words
type DefaultSpellcheckVisitor struct{}

func (DefaultSpellcheckVisitor) Text(pre, text string) RawAndFormatted {
	return RawAndFormatted{Raw: pre + text, Formatted: pre + text}
}

func (DefaultSpellcheckVisitor) Match(pre, text string) RawAndFormatted {
	return RawAndFormatted{Raw: pre + text, Formatted: pre + "<b>" + text + "</b>"}
}

// RenderSpellcheck folds fragments through v
func RenderSpellcheck(frags []SpellcheckFragment, v SpellcheckVisitor) RawAndFormatted {
	if v == nil {
		v = DefaultSpellcheckVisitor{}
	}
	var raw, formatted strings.Builder
	for _, f := range frags {
		r := v.Text(f.Pre, f.Text)
		if f.Match {
			r = v.Match(f.Pre, f.Text)
		}
		raw.WriteString(r.Raw)
		formatted.WriteString(r.Formatted)
	}
	return RawAndFormatted{Raw: raw.String(), Formatted: formatted.String()}
}
