package reply

import (
	"afsearch/internal/core/query"
)

// Cluster groups the replies sharing one value of the cluster facet
type Cluster struct {
	id      string
	label   string
	total   int
	exact   bool
	replies []*Reply
	next    Target
}

// newCluster labels the cluster after the matching value of the cluster facet when present
func newCluster(w *wireCluster, meta *Meta, clusterFacet *Facet, q query.Query, cfg Config) (*Cluster, error) {
	replies, err := newReplies(w.Reply, cfg.textVisitor())
	if err != nil {
		return nil, err
	}
	id := string(w.ID)
	c := &Cluster{id: id, label: id, total: w.TotalItems, exact: w.TotalItemsIsExact, replies: replies}
	if clusterFacet != nil {
		for _, v := range clusterFacet.Values() {
			if v.Key == id {
				c.label = v.Label
				break
			}
		}
	}
	next := q.AutoSetFrom(true).UnsetCluster().AddFilter(meta.ClusterID(), id)
	c.next = cfg.target(next)
	return c, nil
}

func (c *Cluster) ID() string         { return c.id }
func (c *Cluster) Label() string      { return c.label }
func (c *Cluster) TotalReplies() int  { return c.total }
func (c *Cluster) IsTotalExact() bool { return c.exact }
func (c *Cluster) Replies() []*Reply  { return c.replies }
func (c *Cluster) HasReply() bool     { return len(c.replies) > 0 }
func (c *Cluster) NbReplies() int     { return len(c.replies) }

// Next drops clustering and filters on the cluster value
func (c *Cluster) Next() Target { return c.next }
