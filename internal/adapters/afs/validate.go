package afs

import (
	"sync"

	"afsearch/internal/core/facet"
	"afsearch/internal/core/query"
	"afsearch/internal/platform/net/http/bind"
)

var tagsOnce sync.Once

// RegisterTags installs the facet_id and lang validation tags
func RegisterTags() {
	tagsOnce.Do(func() {
		_ = bind.RegisterTag("facet_id", "{0} must be a valid facet identifier", func(fl bind.FieldLevel) bool {
			return facet.ValidID(fl.Field().String())
		})
		_ = bind.RegisterTag("lang", "{0} must be a language code such as en or en-US", func(fl bind.FieldLevel) bool {
			_, err := query.ParseLanguage(fl.Field().String())
			return err == nil
		})
	})
}

// Validate checks v against its validate tags
func Validate(v any) error {
	RegisterTags()
	return bind.Struct(v)
}
