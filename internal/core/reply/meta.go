package reply

// Meta describes one replyset
type Meta struct {
	feed         string
	total        int
	exact        bool
	pageItems    int
	first, last  int
	duration     int
	producer     Producer
	clusterID    string
	clusterLabel string
}

func newMeta(w *wireMeta) *Meta {
	return &Meta{
		feed:         w.URI,
		total:        w.TotalItems,
		exact:        w.TotalItemsIsExact,
		pageItems:    w.PageItems,
		first:        w.FirstPageItem,
		last:         w.LastPageItem,
		duration:     w.DurationMs,
		producer:     Producer(w.Producer),
		clusterID:    w.Cluster,
		clusterLabel: w.Cluster,
	}
}

func (m *Meta) Feed() string { return m.feed }

// TotalReplies is exact only when IsTotalExact reports so
func (m *Meta) TotalReplies() int    { return m.total }
func (m *Meta) IsTotalExact() bool   { return m.exact }
func (m *Meta) PageItems() int       { return m.pageItems }
func (m *Meta) FirstPageItem() int   { return m.first }
func (m *Meta) LastPageItem() int    { return m.last }
func (m *Meta) Duration() int        { return m.duration }
func (m *Meta) Producer() Producer   { return m.producer }
func (m *Meta) HasCluster() bool     { return m.clusterID != "" }
func (m *Meta) ClusterID() string    { return m.clusterID }
func (m *Meta) ClusterLabel() string { return m.clusterLabel }

// SetClusterLabel overrides the label, which defaults to the cluster id
func (m *Meta) SetClusterLabel(label string) { m.clusterLabel = label }
