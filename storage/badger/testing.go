package badger

import "github.com/poiesic/rendezvous/core"

// NewMemoryCollection opens an in-memory backend holding a single collection.
// Callers close the collection and then the backend.
func NewMemoryCollection(name string, metric core.Metric) (*Collection, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}

	col, err := NewCollection(backend, name, metric)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	return col, backend, nil
}
