package search

import (
	"github.com/poiesic/rendezvous/core"
)

// RetrievalMonitor observes individual queries.
type RetrievalMonitor interface {
	Start(query string)
	AfterEmbedding(dimension int)
	Finish(results []core.Neighbor, err error)
}

type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                    {}
func (n *noopMonitor) AfterEmbedding(_ int)              {}
func (n *noopMonitor) Finish(_ []core.Neighbor, _ error) {}
