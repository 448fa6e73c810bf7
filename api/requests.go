package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/rendezvous/core"
)

// errBadRequest marks client errors that are reported with status 400.
var errBadRequest = errors.New("bad request")

// tokensRequest is the body of /store/ and /retrieve/.
type tokensRequest struct {
	Contents      [][]string      `json:"contents"`
	IDs           idList          `json:"ids"`
	TopN          json.RawMessage `json:"top_n"`
	ConditionDict map[string]any  `json:"condition_dict"`
}

// recordsRequest is the body of /store_events and /get_user_related_events.
type recordsRequest struct {
	Contents      []core.Record   `json:"contents"`
	IDs           idList          `json:"ids"`
	TopN          json.RawMessage `json:"top_n"`
	ConditionDict map[string]any  `json:"condition_dict"`
}

// idList accepts ids as JSON strings or numbers.
type idList []string

func (l *idList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make([]string, len(raw))
	for i, r := range raw {
		r = bytes.TrimSpace(r)
		switch {
		case len(r) > 0 && r[0] == '"':
			if err := json.Unmarshal(r, &ids[i]); err != nil {
				return err
			}
		default:
			var n json.Number
			if err := json.Unmarshal(r, &n); err != nil {
				return fmt.Errorf("id %d must be a string or a number", i)
			}
			ids[i] = n.String()
		}
	}
	*l = ids
	return nil
}

// parseTopN reads top_n, which must be a JSON integer of at least one. When
// it is absent and not required, core.DefaultTopN is used.
func parseTopN(raw json.RawMessage, required bool) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if required {
			return 0, fmt.Errorf("%w: top_n is required", core.ErrInvalidTopN)
		}
		return core.DefaultTopN, nil
	}

	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: top_n must be an integer, got %s", core.ErrInvalidTopN, raw)
	}
	if err := core.ValidateTopN(n); err != nil {
		return 0, err
	}
	return n, nil
}

// conditionFilter converts a condition dict into a metadata filter. Scalar
// values are compared in their text form.
func conditionFilter(conditions map[string]any) (core.Filter, error) {
	if len(conditions) == 0 {
		return nil, nil
	}
	filter := make(core.Filter, len(conditions))
	for k, v := range conditions {
		switch val := v.(type) {
		case string:
			filter[k] = val
		case bool, float64:
			filter[k] = strings.TrimSpace(fmt.Sprint(val))
		default:
			return nil, fmt.Errorf("%w: condition %q must be a string, number or boolean", errBadRequest, k)
		}
	}
	return filter, nil
}
