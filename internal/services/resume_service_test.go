package services

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_ExtractText_NotPdf_ShouldFail(t *testing.T) {
	service := NewResumeService()

	_, err := service.ExtractText([]byte("PK\x03\x04 this is a docx"))
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = service.ExtractText(nil)
	assert.ErrorIs(t, err, ErrNotPDF)
}

func Test_ExtractText_BrokenPdf_ShouldFail(t *testing.T) {
	service := NewResumeService()

	_, err := service.ExtractText([]byte("%PDF-1.4\nnot really a pdf"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func Test_CleanResumeText_ShouldCollapseWhitespace(t *testing.T) {
	text := "  John   Doe \r\n\r\n\r\n\r\nGo\tDeveloper  \n"

	assert.Equal(t, "John Doe\n\nGo Developer", cleanResumeText(text))
}
