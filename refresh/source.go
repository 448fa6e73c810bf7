// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/rendezvous/core"
)

// DefaultIDField is the record field holding an event's identifier.
const DefaultIDField = "eventid"

// Event is one record of an event feed.
type Event struct {
	ID     string
	Record core.Record
}

// Source yields the complete current set of events.
type Source interface {
	Fetch(ctx context.Context) ([]Event, error)
}

// DecodeEvents reads a JSON array of event objects. The id of each event is
// taken from idField (DefaultIDField when empty); strings are used as is
// and numbers in their literal form. Events without a usable id are skipped
// with a warning.
func DecodeEvents(r io.Reader, idField string) ([]Event, error) {
	if idField == "" {
		idField = DefaultIDField
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []core.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	events := make([]Event, 0, len(records))
	for i, record := range records {
		id, ok := eventID(record[idField])
		if !ok {
			slog.Warn("skipping event without id", "component", "refresh", "index", i, "field", idField)
			continue
		}
		events = append(events, Event{ID: id, Record: record})
	}
	return events, nil
}

// DecodeEventBytes is DecodeEvents over an in-memory document.
func DecodeEventBytes(data []byte, idField string) ([]Event, error) {
	return DecodeEvents(bytes.NewReader(data), idField)
}

func eventID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case json.Number:
		return id.String(), true
	default:
		return "", false
	}
}

// Dedupe keeps the last occurrence of every id, preserving first-seen order.
func Dedupe(events []Event) []Event {
	index := make(map[string]int, len(events))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if i, ok := index[e.ID]; ok {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
