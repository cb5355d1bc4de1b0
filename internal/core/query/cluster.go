package query

import (
	"strconv"
	"strings"

	"afsearch/internal/core/facet"
	perr "afsearch/internal/platform/errors"
)

// Cluster groups replies by the values of one facet
type Cluster struct {
	Facet       string
	Replies     int
	MaxClusters int
	Overspill   bool
	Count       Count
}

// String renders the cluster parameter: facet,replies
func (c Cluster) String() string { return c.Facet + "," + strconv.Itoa(c.Replies) }

// ParseCluster is the inverse of Cluster.String
func ParseCluster(s string) (Cluster, error) {
	id, n, ok := strings.Cut(s, ",")
	if !ok {
		return Cluster{}, perr.WithField(perr.Validationf("invalid cluster %q, want facet,replies", s), KeyCluster)
	}
	replies, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil {
		return Cluster{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "invalid cluster replies %q", n), KeyCluster)
	}
	return newCluster(strings.TrimSpace(id), replies)
}

func newCluster(id string, replies int) (Cluster, error) {
	if !facet.ValidID(id) {
		return Cluster{}, perr.WithField(perr.Validationf("invalid cluster facet id %q", id), KeyCluster)
	}
	if replies <= 0 {
		return Cluster{}, perr.WithField(perr.Validationf("replies per cluster must be positive, got %d", replies), KeyCluster)
	}
	return Cluster{Facet: id, Replies: replies}, nil
}
