package jobdata

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func assertScalarOrArrayColumns(t *testing.T, sanitized SanitizedRecord) {
	for key, value := range sanitized.Columns {
		kind, ok := KindOf(key)
		require.True(t, ok, "column %s is not in the schema", key)

		if kind == KindArray {
			assert.IsType(t, []string{}, value, key)
			continue
		}

		switch value.(type) {
		case nil, string, bool, int, int32, int64, float32, float64, json.Number:
		default:
			t.Errorf("column %s has non-scalar value %#v", key, value)
		}
	}
}

func Test_Sanitize_EmptyRecord_ShouldFillRequiredPlaceholders(t *testing.T) {
	sanitized := Sanitize(Record{"job_title": "  ", "company_name": nil})

	assert.Equal(t, PlaceholderPostingID, sanitized.Columns[FieldPostingID])
	assert.Equal(t, PlaceholderTitle, sanitized.Columns[FieldTitle])
	assert.Equal(t, PlaceholderCompany, sanitized.Columns[FieldCompany])
	assert.Equal(t, PlaceholderLocation, sanitized.Columns[FieldLocation])
}

func Test_Sanitize_NumericPostingID_ShouldBecomeText(t *testing.T) {
	sanitized := Sanitize(Record{"job_posting_id": 4012345678.0})
	assert.Equal(t, "4012345678", sanitized.Columns[FieldPostingID])
}

func Test_Sanitize_IndustriesString_ShouldBecomeListWithDisplayText(t *testing.T) {
	sanitized := Sanitize(testNormalizer().Normalize(Record{"job_posting_id": "1", "industries": "Tech, Finance"}))

	assert.Equal(t, []string{"Tech", "Finance"}, sanitized.Columns[FieldIndustries])
	assert.Equal(t, "Tech, Finance", sanitized.Columns[FieldCompanyIndustry])
}

func Test_Sanitize_IndustriesJSONText_ShouldBeDecoded(t *testing.T) {
	sanitized := Sanitize(Record{"job_industries": `["IT Services", "Banking", "IT Services"]`})

	assert.Equal(t, []string{"IT Services", "Banking"}, sanitized.Columns[FieldIndustries])
	assert.Equal(t, "IT Services, Banking", sanitized.Columns[FieldCompanyIndustry])
}

func Test_Sanitize_BrokenIndustries_ShouldFallBackToEmptyList(t *testing.T) {
	sanitized := Sanitize(Record{"job_industries": `["IT Services"`, "company_industry": "IT Services"})

	assert.Equal(t, []string{}, sanitized.Columns[FieldIndustries])
	assert.NotContains(t, sanitized.Columns, FieldCompanyIndustry)
}

func Test_Sanitize_JSONText_ShouldBeReencoded(t *testing.T) {
	sanitized := Sanitize(Record{
		"job_poster":     `{"name": "Jane",   "title": "Recruiter"}`,
		"requirements":   []any{"Go", "SQL"},
		"qualifications": "5 years of Go",
		"base_salary":    `{broken`,
	})

	assert.JSONEq(t, `{"name":"Jane","title":"Recruiter"}`, sanitized.Columns["job_poster"].(string))
	assert.Equal(t, `["Go","SQL"]`, sanitized.Columns["requirements"])
	assert.Equal(t, "5 years of Go", sanitized.Columns["qualifications"])
	assert.Equal(t, `{broken`, sanitized.Columns["base_salary"])
}

func Test_Sanitize_Dates_ShouldBeParsedOrNulled(t *testing.T) {
	sanitized := Sanitize(Record{
		"job_posted_date": "2024-05-01T10:00:00.000Z",
		"created_at":      "yesterday",
		"updated_at":      1714557600000.0,
	})

	assert.Equal(t, "2024-05-01T10:00:00Z", sanitized.Columns["job_posted_date"])
	assert.Nil(t, sanitized.Columns["created_at"])
	assert.Contains(t, sanitized.Columns, "created_at")
	assert.Equal(t, "2024-05-01T10:00:00Z", sanitized.Columns["updated_at"])
}

func Test_Sanitize_NumbersAndBooleans_ShouldBeCoerced(t *testing.T) {
	sanitized := Sanitize(Record{"applicant_count": "1,200 applicants", "application_availability": "true"})
	assert.Equal(t, 1200.0, sanitized.Columns[FieldApplicantCount])
	assert.Equal(t, true, sanitized.Columns["application_availability"])

	sanitized = Sanitize(Record{"applicant_count": "many", "application_availability": "maybe"})
	assert.Nil(t, sanitized.Columns[FieldApplicantCount])
	assert.Nil(t, sanitized.Columns["application_availability"])
}

func Test_Sanitize_UnknownAndInternalFields_ShouldBeDropped(t *testing.T) {
	sanitized := Sanitize(Record{
		"job_posting_id":   "1",
		"id":               "internal",
		"discovery_output": map[string]any{"a": 1.0},
		"timestamp":        "2024-01-01",
		"job_poster_extra": "x",
	})

	assert.NotContains(t, sanitized.Columns, "id")
	assert.NotContains(t, sanitized.Columns, "discovery_output")
	assert.Equal(t, []string{"job_poster_extra", "timestamp"}, sanitized.Dropped)
}

func Test_Sanitize_UnserializableValue_ShouldBeDropped(t *testing.T) {
	sanitized := Sanitize(Record{"job_poster": make(chan int)})

	assert.NotContains(t, sanitized.Columns, "job_poster")
	assert.Contains(t, sanitized.Dropped, "job_poster")
}

func Test_Sanitize_OnlyArrayColumnsKeepLists(t *testing.T) {
	records := []Record{
		{},
		{"job_industries": []any{"A", "B"}, "requirements": []any{"x"}, "job_poster": map[string]any{"n": 1.0}},
		{"job_summary": map[string]any{"text": "nested"}, "url": []any{"a", "b"}, "discovery_input": `{"k":"v"}`},
		{"job_industries": 12.0, "title_id": 55.0, "company_logo": true},
	}

	for _, record := range records {
		sanitized := Sanitize(record)
		assertScalarOrArrayColumns(t, sanitized)
		for _, field := range []string{FieldPostingID, FieldTitle, FieldCompany, FieldLocation} {
			assert.NotEmpty(t, sanitized.Columns[field])
		}
	}
}

func Test_Sanitize_ScalarsInTextColumns_ShouldBecomeText(t *testing.T) {
	sanitized := Sanitize(Record{
		"company_id":      1035.0,
		"title_id":        int64(9),
		"country_code":    true,
		"applicant_count": 12.0,
		"job_summary":     nil,
	})

	assert.Equal(t, "1035", sanitized.Columns["company_id"])
	assert.Equal(t, "9", sanitized.Columns["title_id"])
	assert.Equal(t, "true", sanitized.Columns["country_code"])
	assert.Equal(t, 12.0, sanitized.Columns[FieldApplicantCount])
	assert.Nil(t, sanitized.Columns[FieldSummary])
}

func Test_Sanitize_WorkTypeAndPostedTimeAgo_ShouldBeKept(t *testing.T) {
	sanitized := Sanitize(testNormalizer().Normalize(Record{
		"job_posting_id":      "1",
		"job_work_type":       "Remote",
		"job_posted_time_ago": "2 days ago",
	}))

	assert.Empty(t, sanitized.Dropped)
	assert.Equal(t, "Remote", sanitized.Columns[FieldWorkType])
	assert.Equal(t, "2 days ago", sanitized.Columns[FieldPostedTimeAgo])
}
