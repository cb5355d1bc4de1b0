package query

import (
	"strings"

	perr "afsearch/internal/platform/errors"
)

// Origin records which user action produced a query
type Origin string

const (
	OriginDirect                 Origin = "DIRECT"
	OriginSearchBox              Origin = "SEARCHBOX"
	OriginACP                    Origin = "ACP"
	OriginFacet                  Origin = "FACET"
	OriginPager                  Origin = "PAGER"
	OriginSort                   Origin = "SORT_ORIG"
	OriginPreferences            Origin = "PREFERENCES"
	OriginResult                 Origin = "RESULT"
	OriginSpellcheck             Origin = "SPELLCHECK"
	OriginRTE                    Origin = "RTE"
	OriginConcept                Origin = "CONCEPT"
	OriginPromote                Origin = "PROMOTE"
	OriginACC                    Origin = "ACC"
	OriginShoppingCart           Origin = "SHOPPING_CART"
	OriginProductDescription     Origin = "PRODUCT_DESCRIPTION"
	OriginProductsFromSearch     Origin = "PRODUCTS_FROM_SEARCH"
	OriginProductsFromNavigation Origin = "PRODUCTS_FROM_NAVIGATION"
	OriginProductsUpsell         Origin = "PRODUCTS_UPSELL"
	OriginProductsCrossSell      Origin = "PRODUCTS_CROSS_SELL"
	OriginProductsRecommended    Origin = "PRODUCTS_RECOMMENDED"
	OriginProductsSimilar        Origin = "PRODUCTS_SIMILAR"
	OriginProductsViewed         Origin = "PRODUCTS_VIEWED"
	OriginProductsBought         Origin = "PRODUCTS_BOUGHT"
	OriginSEOIndex               Origin = "SEO_INDEX"
	OriginUser1                  Origin = "USER_1"
	OriginUser2                  Origin = "USER_2"
	OriginUser3                  Origin = "USER_3"
	OriginUser4                  Origin = "USER_4"
	OriginUser5                  Origin = "USER_5"
	OriginUser6                  Origin = "USER_6"
	OriginUser7                  Origin = "USER_7"
	OriginUser8                  Origin = "USER_8"
	OriginUser9                  Origin = "USER_9"
)

var origins = map[Origin]struct{}{}

func init() {
	for _, o := range []Origin{
		OriginDirect, OriginSearchBox, OriginACP, OriginFacet, OriginPager, OriginSort,
		OriginPreferences, OriginResult, OriginSpellcheck, OriginRTE, OriginConcept,
		OriginPromote, OriginACC, OriginShoppingCart, OriginProductDescription,
		OriginProductsFromSearch, OriginProductsFromNavigation, OriginProductsUpsell,
		OriginProductsCrossSell, OriginProductsRecommended, OriginProductsSimilar,
		OriginProductsViewed, OriginProductsBought, OriginSEOIndex,
		OriginUser1, OriginUser2, OriginUser3, OriginUser4, OriginUser5,
		OriginUser6, OriginUser7, OriginUser8, OriginUser9,
	} {
		origins[o] = struct{}{}
	}
}

// ParseOrigin validates an origin name; matching is case-sensitive like the server
func ParseOrigin(s string) (Origin, error) {
	o := Origin(strings.TrimSpace(s))
	if _, ok := origins[o]; !ok {
		return "", perr.WithField(perr.Validationf("invalid query origin %q", s), "from")
	}
	return o, nil
}

// Count selects what the totals count when clustering
type Count string

const (
	CountDocuments Count = "documents"
	CountClusters  Count = "clusters"
)

// ParseCount validates a count mode
func ParseCount(s string) (Count, error) {
	switch c := Count(strings.ToLower(strings.TrimSpace(s))); c {
	case CountDocuments, CountClusters:
		return c, nil
	}
	return "", perr.WithField(perr.Validationf("invalid count mode %q", s), "count")
}

// FtsMode tells the server whether query words are mandatory by default
type FtsMode string

const (
	FtsMandatory FtsMode = "mandatory"
	FtsOptional  FtsMode = "optional"
)

// ParseFtsMode validates a full text default mode
func ParseFtsMode(s string) (FtsMode, error) {
	switch m := FtsMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FtsMandatory, FtsOptional:
		return m, nil
	}
	return "", perr.WithField(perr.Validationf("invalid fts mode %q", s), "ftsDefault")
}
