package reply

import (
	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
)

// Replyset is the search result of one feed
type Replyset struct {
	meta     *Meta
	facets   []*Facet
	byID     map[string]*Facet
	pager    *Pager
	replies  []*Reply
	clusters []*Cluster
}

func newReplyset(w *wireReplyset, q query.Query, cfg Config) (*Replyset, error) {
	rs := &Replyset{meta: newMeta(w.Meta), byID: map[string]*Facet{}}

	if w.Facets != nil {
		ids := make([]string, 0, len(w.Facets.Facet))
		for i := range w.Facets.Facet {
			f, err := newFacet(&w.Facets.Facet[i], q, cfg)
			if err != nil {
				return nil, err
			}
			if _, dup := rs.byID[f.ID()]; !dup {
				ids = append(ids, f.ID())
			}
			rs.byID[f.ID()] = f
		}
		for _, id := range q.Registry().Arrange(ids) {
			rs.facets = append(rs.facets, rs.byID[id])
		}
	}

	var clusterFacet *Facet
	if rs.meta.HasCluster() {
		if f, ok := rs.byID[rs.meta.ClusterID()]; ok {
			clusterFacet = f
			rs.meta.SetClusterLabel(f.Label())
		}
	}

	if c := w.Content; c != nil {
		var err error
		if rs.replies, err = newReplies(c.Reply, cfg.textVisitor()); err != nil {
			return nil, err
		}
		for i := range c.Cluster {
			cl, err := newCluster(&c.Cluster[i], rs.meta, clusterFacet, q, cfg)
			if err != nil {
				return nil, err
			}
			rs.clusters = append(rs.clusters, cl)
		}
	}

	if w.Pager != nil {
		p, err := newPager(w.Pager, rs.meta, q, cfg)
		if err != nil {
			return nil, err
		}
		rs.pager = p
	}
	return rs, nil
}

func (rs *Replyset) Meta() *Meta { return rs.meta }

// Facets are arranged after the registry order
func (rs *Replyset) Facets() []*Facet { return rs.facets }
func (rs *Replyset) HasFacet() bool   { return len(rs.facets) > 0 }

// Facet looks a facet up by id, including facets hidden by a strict order
func (rs *Replyset) Facet(id string) (*Facet, error) {
	if f, ok := rs.byID[id]; ok {
		return f, nil
	}
	return nil, perr.WithField(perr.NotFoundf("no facet %q in replyset %s", id, rs.meta.Feed()), "id")
}

func (rs *Replyset) HasPager() bool { return rs.pager != nil }

func (rs *Replyset) Pager() (*Pager, error) {
	if rs.pager == nil {
		return nil, perr.NotFoundf("no pager in replyset %s", rs.meta.Feed())
	}
	return rs.pager, nil
}

// Replies are the replies outside any cluster
func (rs *Replyset) Replies() []*Reply { return rs.replies }
func (rs *Replyset) HasReply() bool    { return len(rs.replies) > 0 }
func (rs *Replyset) NbReplies() int    { return len(rs.replies) }

func (rs *Replyset) HasCluster() bool     { return len(rs.clusters) > 0 }
func (rs *Replyset) Clusters() []*Cluster { return rs.clusters }

func (rs *Replyset) Cluster(id string) (*Cluster, error) {
	for _, c := range rs.clusters {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, perr.WithField(perr.NotFoundf("no cluster %q in replyset %s", id, rs.meta.Feed()), "id")
}

// Overspill lists the replies that fit no cluster; empty without clustering
func (rs *Replyset) Overspill() []*Reply {
	if !rs.HasCluster() {
		return nil
	}
	return rs.replies
}

// ClusterReplies concatenates cluster replies in cluster order
func (rs *Replyset) ClusterReplies() []*Reply {
	var out []*Reply
	for _, c := range rs.clusters {
		out = append(out, c.Replies()...)
	}
	return out
}

// AllReplies is ClusterReplies followed by the overspill
func (rs *Replyset) AllReplies() []*Reply {
	return append(rs.ClusterReplies(), rs.replies...)
}
