package reply

import (
	"afsearch/internal/core/facet"
)

// FacetInfo describes a facet as declared for a feed, whether present in the reply or not
type FacetInfo struct {
	ID     string
	Type   facet.Type
	Layout facet.Layout
	Sticky bool
	Filter bool
	// Labels are keyed by language, or by the label itself when it has none
	Labels map[string]string
}

// Metadata lists the facets declared for one feed
type Metadata struct {
	feed  string
	ids   []string
	infos map[string]FacetInfo
}

func newMetadata(w *wireMetadata) *Metadata {
	m := &Metadata{feed: w.URI, infos: map[string]FacetInfo{}}
	m.walk(w.Meta.Info.SearchFeedInfo.SetInfos)
	return m
}

func (m *Metadata) walk(sets []wireSetInfo) {
	for _, s := range sets {
		for _, fi := range s.FacetInfos {
			info := FacetInfo{ID: fi.ID, Labels: map[string]string{}}
			info.Type, _ = facet.ParseType(fi.Type)
			info.Layout, _ = facet.ParseLayout(fi.Layout)
			if fi.Sticky != nil {
				info.Sticky = *fi.Sticky
			}
			if fi.Filter != nil {
				info.Filter = *fi.Filter
			}
			for _, l := range fi.Labels {
				switch {
				case l.Lang != "":
					info.Labels[l.Lang] = l.Label
				case l.Label != "":
					info.Labels[l.Label] = l.Label
				}
			}
			if _, ok := m.infos[fi.ID]; !ok {
				m.ids = append(m.ids, fi.ID)
			}
			m.infos[fi.ID] = info
		}
		m.walk(s.ChildrenInfos)
	}
}

func (m *Metadata) Feed() string { return m.feed }

func (m *Metadata) filter(keep func(FacetInfo) bool) []FacetInfo {
	out := make([]FacetInfo, 0, len(m.ids))
	for _, id := range m.ids {
		if info := m.infos[id]; keep(info) {
			out = append(out, info)
		}
	}
	return out
}

// FacetsInfo lists the facets that are not filters
func (m *Metadata) FacetsInfo() []FacetInfo {
	return m.filter(func(i FacetInfo) bool { return !i.Filter })
}

// FiltersInfo lists the facets usable as filters only
func (m *Metadata) FiltersInfo() []FacetInfo {
	return m.filter(func(i FacetInfo) bool { return i.Filter })
}

// All lists every facet in declaration order
func (m *Metadata) All() []FacetInfo {
	return m.filter(func(FacetInfo) bool { return true })
}
