package refresh

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds a single feed request when no client is given.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPSource fetches events from a URL returning a JSON array.
type HTTPSource struct {
	URL     string
	IDField string
	Client  *http.Client
}

var _ Source = (*HTTPSource)(nil)

func (s *HTTPSource) Fetch(ctx context.Context) ([]Event, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, s.URL)
	}
	return DecodeEvents(resp.Body, s.IDField)
}
