package service

import (
	"afsearch/internal/core/reply"
	"afsearch/internal/services/gateway/domain"
)

func render(resp *reply.Response) (domain.SearchResult, error) {
	q := resp.Query()
	out := domain.SearchResult{
		Query:      q.Query(),
		Lang:       q.Lang().String(),
		DurationMs: resp.Duration(),
		Replysets:  []domain.Replyset{},
	}
	if resp.InError() {
		out.Error = resp.ErrorMessage()
		return out, nil
	}

	for _, rs := range resp.Replysets() {
		r, err := renderReplyset(rs)
		if err != nil {
			return domain.SearchResult{}, err
		}
		out.Replysets = append(out.Replysets, r)
	}

	if sc := resp.Spellchecks(); resp.HasSpellcheck() {
		for _, feed := range sc.Names() {
			list, err := sc.Get(feed)
			if err != nil {
				return domain.SearchResult{}, err
			}
			for _, s := range list {
				out.Spellcheck = append(out.Spellcheck, domain.Suggestion{
					Feed:      feed,
					Raw:       s.Raw(),
					Formatted: s.Formatted(),
					Link:      s.Next().Link,
				})
			}
		}
	}

	if cs := resp.Concepts(); resp.HasConcept() {
		for _, feed := range cs.Names() {
			c, err := cs.Get(feed)
			if err != nil {
				return domain.SearchResult{}, err
			}
			for _, item := range c.Items() {
				dc := domain.Concept{Feed: feed, Text: item.Text}
				for _, d := range item.Data {
					dc.Concepts = append(dc.Concepts, domain.ConceptData{URI: d.URI, Contents: d.Contents})
				}
				out.Concepts = append(out.Concepts, dc)
			}
		}
	}

	if resp.HasPromote() {
		p, err := resp.Promote()
		if err != nil {
			return domain.SearchResult{}, err
		}
		for _, pr := range p.Replies() {
			out.Promote = append(out.Promote, renderPromote(pr))
		}
	}
	return out, nil
}

func renderReplyset(rs *reply.Replyset) (domain.Replyset, error) {
	m := rs.Meta()
	out := domain.Replyset{
		Feed:       m.Feed(),
		Total:      m.TotalReplies(),
		TotalExact: m.IsTotalExact(),
		FirstItem:  m.FirstPageItem(),
		LastItem:   m.LastPageItem(),
		Replies:    renderReplies(rs.Replies()),
	}
	for _, f := range rs.Facets() {
		out.Facets = append(out.Facets, domain.Facet{
			ID:     f.ID(),
			Label:  f.Label(),
			Type:   string(f.Type()),
			Layout: string(f.Layout()),
			Sticky: f.IsSticky(),
			Values: renderValues(f.Values()),
		})
	}
	for _, c := range rs.Clusters() {
		out.Clusters = append(out.Clusters, domain.Cluster{
			ID:      c.ID(),
			Label:   c.Label(),
			Total:   c.TotalReplies(),
			Link:    c.Next().Link,
			Replies: renderReplies(c.Replies()),
		})
	}
	if rs.HasPager() {
		p, err := renderPager(rs)
		if err != nil {
			return domain.Replyset{}, err
		}
		out.Pager = p
	}
	return out, nil
}

func renderReplies(rs []*reply.Reply) []domain.Reply {
	out := make([]domain.Reply, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.Reply{URI: r.URI(), Title: r.Title(), Abstract: r.Abstract(), Rank: r.Rank()})
	}
	return out
}

func renderValues(vs []reply.FacetValue) []domain.FacetValue {
	if len(vs) == 0 {
		return nil
	}
	out := make([]domain.FacetValue, 0, len(vs))
	for _, v := range vs {
		dv := domain.FacetValue{
			Key:      v.Key,
			Label:    v.Label,
			Count:    v.Count,
			Active:   v.Active,
			Link:     v.Next.Link,
			Children: renderValues(v.Children),
		}
		if m := v.Metas(); len(m) > 0 {
			dv.Meta = m
		}
		out = append(out, dv)
	}
	return out
}

func renderPager(rs *reply.Replyset) (*domain.Pager, error) {
	p, err := rs.Pager()
	if err != nil {
		return nil, err
	}
	pages, err := p.AllPages()
	if err != nil {
		return nil, err
	}
	out := &domain.Pager{Current: p.Current(), Last: p.LastPageNumber()}
	for _, pg := range pages {
		out.Pages = append(out.Pages, domain.Page{Label: pg.Label, Number: pg.Number, Link: pg.Link})
	}
	return out, nil
}

func renderPromote(pr *reply.PromoteReply) domain.Promoted {
	out := domain.Promoted{
		Type:     string(pr.Type()),
		Title:    pr.Title(),
		Abstract: pr.Abstract(),
	}
	if u, err := pr.URL(); err == nil {
		out.URL = u
	}
	if u, err := pr.ImageURL(); err == nil {
		out.ImageURL = u
	}
	// promotions without custom data are common
	if custom, err := pr.AllCustomData(); err == nil && len(custom) > 0 {
		out.Custom = custom
	}
	return out
}
