package refresh

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads events from a JSON file on every fetch.
type FileSource struct {
	Path    string
	IDField string
}

var _ Source = (*FileSource)(nil)

func (s *FileSource) Fetch(ctx context.Context) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()
	return DecodeEvents(f, s.IDField)
}
