package jobdata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	PlaceholderPostingID = "unknown"
	PlaceholderTitle     = "Unknown Position"
	PlaceholderCompany   = "Unknown Company"
	PlaceholderLocation  = "Unknown Location"
)

var requiredFields = []struct {
	name        string
	placeholder string
}{
	{FieldPostingID, PlaceholderPostingID},
	{FieldTitle, PlaceholderTitle},
	{FieldCompany, PlaceholderCompany},
	{FieldLocation, PlaceholderLocation},
}

// internalFields come from the scraper itself and never describe the posting.
var internalFields = []string{"id", "_id", "input", "discovery_output", "error", "error_code", "warning", "warning_code"}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var leadingNumber = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

// SanitizedRecord holds only allow-listed columns. Dropped names the fields that
// were removed because the job store has no column for them.
type SanitizedRecord struct {
	Columns Record
	Dropped []string
}

func (s SanitizedRecord) PostingID() string {
	return s.Columns.PostingID()
}

// Sanitize coerces a normalized record into the jobs table contract.
// Every value it emits is a string, number, bool or nil, except array columns
// which stay []string.
func Sanitize(record Record) SanitizedRecord {
	sanitized := record.Clone()

	for _, field := range internalFields {
		delete(sanitized, field)
	}

	for _, field := range requiredFields {
		value := stringValue(sanitized[field.name])
		if value == "" {
			value = field.placeholder
		}
		sanitized[field.name] = value
	}

	if value, ok := sanitized[FieldIndustries]; ok {
		industries, err := parseStringList(value)
		if err != nil {
			sanitized[FieldIndustries] = []string{}
			delete(sanitized, FieldCompanyIndustry)
		} else {
			sanitized[FieldIndustries] = industries
			if len(industries) > 0 {
				sanitized[FieldCompanyIndustry] = strings.Join(industries, ", ")
			}
		}
	}

	for _, column := range columnsOfKind(KindJSON) {
		if text, ok := sanitized[column].(string); ok {
			sanitized[column] = decodeJSONText(text)
		}
	}

	for _, column := range columnsOfKind(KindTimestamp) {
		if value, ok := sanitized[column]; ok {
			sanitized[column] = normalizeTimestamp(value)
		}
	}

	for _, column := range columnsOfKind(KindNumber) {
		if value, ok := sanitized[column]; ok {
			sanitized[column] = toNumber(value)
		}
	}

	for _, column := range columnsOfKind(KindBool) {
		if value, ok := sanitized[column]; ok {
			sanitized[column] = toBool(value)
		}
	}

	result := SanitizedRecord{Columns: Record{}}
	for key, value := range sanitized {
		kind, known := KindOf(key)
		if !known {
			result.Dropped = append(result.Dropped, key)
			continue
		}

		encoded, ok := encodeColumn(kind, value)
		if !ok {
			result.Dropped = append(result.Dropped, key)
			continue
		}
		result.Columns[key] = encoded
	}
	slices.Sort(result.Dropped)

	return result
}

func decodeJSONText(text string) any {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return text
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return text
	}
	return decoded
}

func normalizeTimestamp(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC().Format(time.RFC3339)
			}
		}
		return nil
	case float64:
		// epoch values above 1e12 are milliseconds
		if v > 1e12 {
			return time.UnixMilli(int64(v)).UTC().Format(time.RFC3339)
		}
		return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
	default:
		return nil
	}
}

func toNumber(value any) any {
	switch v := value.(type) {
	case int, int32, int64, float32, float64:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return nil
	case string:
		match := leadingNumber.FindString(v)
		if match == "" {
			return nil
		}
		number, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err != nil {
			return nil
		}
		return number
	default:
		return nil
	}
}

func toBool(value any) any {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return parsed
	default:
		return nil
	}
}

// encodeColumn returns the value in its storable form. Array columns must stay
// lists, text columns get scalars as text, and everything else that is not a
// scalar becomes JSON text.
func encodeColumn(kind ColumnKind, value any) (any, bool) {
	if kind == KindArray {
		items, err := parseStringList(value)
		if err != nil {
			return []string{}, true
		}
		return items, true
	}

	if kind == KindText {
		if text, ok := scalarText(value); ok {
			return text, true
		}
	}

	switch value.(type) {
	case nil, string, bool, int, int32, int64, float32, float64, json.Number:
		return value, true
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	return string(encoded), true
}

func scalarText(value any) (string, bool) {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// Describe lists the dropped fields for logging.
func (s SanitizedRecord) Describe() string {
	return fmt.Sprintf("posting %s: %d columns, dropped %v", s.PostingID(), len(s.Columns), s.Dropped)
}
