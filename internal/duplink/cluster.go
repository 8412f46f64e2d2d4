package duplink

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/RishiKendai/duplink/internal/text"
)

// Cluster groups the Links copied from one identical source span.
type Cluster struct {
	ID     string
	Key    string
	Source text.Span
	Links  []*Link
}

// ClusterKey identifies a source span by document and character offsets.
func ClusterKey(source text.Span) string {
	return fmt.Sprintf("%s:%d-%d", source.DocumentID(), source.CharStart(), source.CharEnd())
}

// ClusterID derives the stable identifier of a cluster key: the first eight
// hex digits of its MD5 sum.
func ClusterID(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:8]
}

// AssignClusters groups links by source span key. Clusters and their members
// keep the order in which they first appear in links. Two keys hashing to the
// same identifier is an invariant violation.
func AssignClusters(links []*Link) ([]Cluster, error) {
	var clusters []Cluster
	byKey := make(map[string]int)
	keyOf := make(map[string]string)
	for _, link := range links {
		key := ClusterKey(link.Source)
		i, ok := byKey[key]
		if !ok {
			id := ClusterID(key)
			if prev, dup := keyOf[id]; dup {
				return nil, fmt.Errorf("%w: cluster id %s collides for %s and %s", ErrInvariant, id, prev, key)
			}
			keyOf[id] = key
			i = len(clusters)
			byKey[key] = i
			clusters = append(clusters, Cluster{ID: id, Key: key, Source: link.Source})
		}
		clusters[i].Links = append(clusters[i].Links, link)
	}
	return clusters, nil
}
