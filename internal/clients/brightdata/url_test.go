package brightdata

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_ValidateJobURL_LinkedInJobPages_ShouldPass(t *testing.T) {
	urls := []string{
		"https://www.linkedin.com/jobs/view/4012345678/",
		"https://www.linkedin.com/jobs/collections/recommended/?currentJobId=4012345678",
		"https://www.linkedin.com/jobs/search/?currentJobId=4012345678&keywords=golang",
		"http://linkedin.com/jobs/view/123",
	}

	for _, jobURL := range urls {
		assert.NoError(t, ValidateJobURL(jobURL), jobURL)
	}
}

func Test_ValidateJobURL_OtherPages_ShouldFail(t *testing.T) {
	urls := []string{
		"",
		"   ",
		"https://www.indeed.com/jobs/view/123",
		"https://www.linkedin.com/in/someone",
		"https://www.linkedin.com/company/acme/jobs",
		"ftp://linkedin.com/jobs/view/123",
		"linkedin.com/jobs/view/123",
	}

	for _, jobURL := range urls {
		assert.ErrorIs(t, ValidateJobURL(jobURL), ErrInvalidURL, jobURL)
	}
}
