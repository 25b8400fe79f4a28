package jobdata

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"slices"
)

var ErrUnrecognizedShape = errors.New("no job record found in snapshot payload")

const maxSearchDepth = 5

// shapeMatcher recognises one envelope shape. ok is false when the payload does not have that shape.
type shapeMatcher func(payload any) (records []Record, ok bool)

var shapeChain = []shapeMatcher{
	matchList,
	matchResultData,
	matchJobData,
	matchBareRecord,
}

// Resolve extracts job records from a snapshot payload. Known envelopes are
// tried in order; otherwise the payload is searched depth-first (arrays by
// index, object keys sorted) for the first object carrying a posting id.
func Resolve(payload any) ([]Record, error) {
	for _, match := range shapeChain {
		if records, ok := match(payload); ok {
			return records, nil
		}
	}

	if record, ok := findRecord(payload, 0); ok {
		return []Record{record}, nil
	}

	return nil, ErrUnrecognizedShape
}

func matchList(payload any) ([]Record, bool) {
	list, ok := payload.([]any)
	if !ok {
		return nil, false
	}
	return recordsOf(list), true
}

func matchResultData(payload any) ([]Record, bool) {
	object, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	result, ok := object["result"].(map[string]any)
	if !ok {
		return nil, false
	}
	return unwrap(result["data"])
}

func matchJobData(payload any) ([]Record, bool) {
	object, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	return unwrap(object["job_data"])
}

func matchBareRecord(payload any) ([]Record, bool) {
	object, ok := payload.(map[string]any)
	if !ok || !looksLikeRecord(object) {
		return nil, false
	}
	return []Record{object}, true
}

func unwrap(value any) ([]Record, bool) {
	switch v := value.(type) {
	case map[string]any:
		return []Record{v}, true
	case []any:
		return recordsOf(v), true
	default:
		return nil, false
	}
}

func recordsOf(list []any) []Record {
	return lo.FilterMap(list, func(item any, _ int) (Record, bool) {
		object, ok := item.(map[string]any)
		return object, ok
	})
}

func findRecord(value any, depth int) (Record, bool) {
	if depth > maxSearchDepth {
		return nil, false
	}

	switch v := value.(type) {
	case map[string]any:
		if looksLikeRecord(v) {
			return v, true
		}
		keys := lo.Keys(v)
		slices.Sort(keys)
		for _, key := range keys {
			if record, ok := findRecord(v[key], depth+1); ok {
				return record, true
			}
		}
	case []any:
		for _, item := range v {
			if record, ok := findRecord(item, depth+1); ok {
				return record, true
			}
		}
	}

	return nil, false
}
