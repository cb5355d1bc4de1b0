package query

import (
	"strings"

	"afsearch/internal/core/facet"
	perr "afsearch/internal/platform/errors"
)

// SortOrder is the direction of one sort key; descending unless stated
type SortOrder = facet.Direction

const (
	Desc = facet.Desc
	Asc  = facet.Asc
)

// Built-in sort keys understood by the server
const (
	SortWords      = "afs:words"
	SortPathLen    = "afs:pathlen"
	SortWeight     = "afs:weight"
	SortFieldMatch = "afs:fieldMatch"
	SortRelevance  = "afs:relevance"
	SortDocID      = "afs:docId"
	SortURI        = "afs:uri"
	SortLang       = "afs:lang"
	SortSize       = "afs:size"
	SortDocType    = "afs:doctype"
)

var builtins = func() map[string]string {
	m := map[string]string{}
	for _, k := range []string{SortWords, SortPathLen, SortWeight, SortFieldMatch, SortRelevance,
		SortDocID, SortURI, SortLang, SortSize, SortDocType} {
		m[strings.ToLower(k)] = k
	}
	return m
}()

// SortKey canonicalizes a sort key.
// Built-in keys match case-insensitively; other keys must be facet ids
func SortKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if b, ok := builtins[strings.ToLower(key)]; ok {
		return b, nil
	}
	if strings.HasPrefix(strings.ToLower(key), "afs:") || !facet.ValidID(key) {
		return "", perr.WithField(perr.Validationf("invalid sort key %q", key), "sort")
	}
	return key, nil
}

// SortEntry is one key of a sort specification
type SortEntry struct {
	Key   string
	Order SortOrder
}

// String renders key,ORDER
func (e SortEntry) String() string { return e.Key + "," + string(e.Order) }

// FormatSort joins entries with ';'
func FormatSort(entries []SortEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, ";")
}

// ParseSort is the inverse of FormatSort; a missing order means descending
func ParseSort(s string) ([]SortEntry, error) {
	var out []SortEntry
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, o, _ := strings.Cut(part, ",")
		e, err := newSortEntry(k, SortOrder(o))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func newSortEntry(key string, order SortOrder) (SortEntry, error) {
	k, err := SortKey(key)
	if err != nil {
		return SortEntry{}, err
	}
	if order == "" {
		order = Desc
	}
	o, err := facet.ParseDirection(string(order))
	if err != nil {
		return SortEntry{}, perr.WithField(err, "sort")
	}
	return SortEntry{Key: k, Order: o}, nil
}

func setSortEntry(entries []SortEntry, e SortEntry) []SortEntry {
	out := append([]SortEntry(nil), entries...)
	for i := range out {
		if out[i].Key == e.Key {
			out[i] = e
			return out
		}
	}
	return append(out, e)
}
