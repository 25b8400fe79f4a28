package jobdata

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func Test_FallbackRecord_ShouldUseSegmentAfterView(t *testing.T) {
	record := FallbackRecord("https://www.linkedin.com/jobs/view/4012345678/?refId=abc", "timeout", fixedNow)

	assert.Equal(t, "4012345678", record.PostingID())
	assert.Equal(t, PlaceholderTitle, record[FieldTitle])
	assert.Equal(t, PlaceholderCompany, record[FieldCompany])
	assert.Equal(t, PlaceholderLocation, record[FieldLocation])
	assert.Equal(t, false, record[FieldSaved])
	assert.Equal(t, true, record[FieldIsFallback])
	assert.Contains(t, record[FieldSummary], "timeout")
}

func Test_FallbackRecord_WithoutViewSegment_ShouldUseTimestamp(t *testing.T) {
	now := time.UnixMilli(1760520600000)
	record := FallbackRecord("https://www.linkedin.com/jobs/search/", "", now)

	assert.Equal(t, "job-1760520600000", record.PostingID())
	assert.NotContains(t, record, FieldSummary)
}

func Test_FallbackRecord_SearchLinkWithCurrentJobID_ShouldUseQueryParameter(t *testing.T) {
	urls := []string{
		"https://www.linkedin.com/jobs/collections/recommended/?currentJobId=4012345678",
		"https://www.linkedin.com/jobs/search/?keywords=golang&currentJobId=4012345678",
	}

	for _, jobURL := range urls {
		assert.Equal(t, "4012345678", FallbackRecord(jobURL, "", fixedNow).PostingID(), jobURL)
	}
}

func Test_FallbackRecord_ViewSegment_ShouldWinOverQueryParameter(t *testing.T) {
	record := FallbackRecord("https://www.linkedin.com/jobs/view/111/?currentJobId=222", "", fixedNow)

	assert.Equal(t, "111", record.PostingID())
}
