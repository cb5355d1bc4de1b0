// Package domain holds the JSON shapes served by the search gateway
package domain

// SearchResult is the gateway rendering of one search reply
type SearchResult struct {
	Query      string       `json:"query"`
	Lang       string       `json:"lang,omitempty"`
	DurationMs int          `json:"duration_ms"`
	Error      string       `json:"error,omitempty"`
	Replysets  []Replyset   `json:"replysets"`
	Spellcheck []Suggestion `json:"spellcheck,omitempty"`
	Concepts   []Concept    `json:"concepts,omitempty"`
	Promote    []Promoted   `json:"promote,omitempty"`
}

// Replyset is the result list of one feed
type Replyset struct {
	Feed       string    `json:"feed"`
	Total      int       `json:"total"`
	TotalExact bool      `json:"total_exact"`
	FirstItem  int       `json:"first_item"`
	LastItem   int       `json:"last_item"`
	Replies    []Reply   `json:"replies"`
	Facets     []Facet   `json:"facets,omitempty"`
	Clusters   []Cluster `json:"clusters,omitempty"`
	Pager      *Pager    `json:"pager,omitempty"`
}

// Reply is one result
type Reply struct {
	URI      string `json:"uri"`
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`
	Rank     int    `json:"rank"`
}

// Facet is a facet with the links selecting or releasing its values
type Facet struct {
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Type   string       `json:"type"`
	Layout string       `json:"layout"`
	Sticky bool         `json:"sticky"`
	Values []FacetValue `json:"values"`
}

// FacetValue is a selectable value; Link toggles it
type FacetValue struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Count    int               `json:"count"`
	Active   bool              `json:"active"`
	Link     string            `json:"link"`
	Meta     map[string]string `json:"meta,omitempty"`
	Children []FacetValue      `json:"children,omitempty"`
}

// Cluster is a group of replies sharing a facet value
type Cluster struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Total   int     `json:"total"`
	Link    string  `json:"link"`
	Replies []Reply `json:"replies"`
}

// Pager lists the page links around the current page
type Pager struct {
	Current int    `json:"current"`
	Last    int    `json:"last"`
	Pages   []Page `json:"pages"`
}

// Page is a pager entry; Label is a number, "previous" or "next"
type Page struct {
	Label  string `json:"label"`
	Number int    `json:"number"`
	Link   string `json:"link"`
}

// Suggestion is a spellcheck proposal
type Suggestion struct {
	Feed      string `json:"feed"`
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
	Link      string `json:"link"`
}

// Concept is a fragment of the query text and the concepts it matched
type Concept struct {
	Feed     string        `json:"feed"`
	Text     string        `json:"text"`
	Concepts []ConceptData `json:"concepts,omitempty"`
}

// ConceptData is one matched concept
type ConceptData struct {
	URI      string `json:"uri"`
	Contents string `json:"contents"`
}

// Promoted is a promote reply (banner or default)
type Promoted struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Abstract string            `json:"abstract,omitempty"`
	URL      string            `json:"url,omitempty"`
	ImageURL string            `json:"image_url,omitempty"`
	Custom   map[string]string `json:"custom,omitempty"`
}

// Completions are the autocomplete suggestions of every feed
type Completions struct {
	Query string           `json:"query"`
	Error string           `json:"error,omitempty"`
	Feeds []CompletionFeed `json:"feeds"`
}

// CompletionFeed is the suggestion list of one feed; the single feed reply has an empty name
type CompletionFeed struct {
	Feed  string       `json:"feed"`
	Items []Completion `json:"items"`
}

// Completion is one suggestion; Link searches it
type Completion struct {
	Value   string            `json:"value"`
	Link    string            `json:"link"`
	Options map[string]string `json:"options,omitempty"`
}

// LinkRequest describes a query to render as a link.
// Params are link parameters as produced by the gateway; the other fields are applied on top
type LinkRequest struct {
	Params  map[string][]string `json:"params"`
	Query   *string             `json:"query"`
	Feeds   []string            `json:"feeds"`
	Filters []FilterInput       `json:"filters" validate:"dive"`
	Page    int                 `json:"page" validate:"min=0"`
	Lang    string              `json:"lang" validate:"omitempty,lang"`
}

// FilterInput adds values to a facet filter
type FilterInput struct {
	Facet  string   `json:"facet" validate:"required,facet_id"`
	Values []string `json:"values" validate:"required,min=1"`
}

// LinkResponse is the rendered link and its parameters
type LinkResponse struct {
	Link       string `json:"link"`
	Parameters string `json:"parameters"`
}

// Health is the liveness payload
type Health struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
	Started string `json:"started"`
	Now     string `json:"now"`
}
