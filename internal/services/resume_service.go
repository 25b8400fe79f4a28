package services

import (
	"bytes"
	"fmt"
	"github.com/ledongthuc/pdf"
	"github.com/maxaizer/cv-matcher/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"regexp"
	"strings"
)

var (
	ErrNotPDF       = errors.New("file is not a pdf document")
	ErrNoResumeText = errors.New("pdf contains no extractable text")
)

var pdfMagic = []byte("%PDF-")

var blankLines = regexp.MustCompile(`\n{3,}`)

type ResumeService struct{}

func NewResumeService() *ResumeService {
	return &ResumeService{}
}

// ExtractText returns the plain text of a PDF résumé.
func (r *ResumeService) ExtractText(content []byte) (text string, err error) {

	if !bytes.HasPrefix(bytes.TrimLeft(content, "\x00\t\r\n "), pdfMagic) {
		return "", ErrNotPDF
	}

	// the pdf reader panics on some malformed documents
	defer func() {
		if p := recover(); p != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypePdf).Errorf("pdf reader panicked: %v", p)
			text, err = "", errors.Wrap(ErrNotPDF, fmt.Sprint(p))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", errors.Wrap(ErrNotPDF, err.Error())
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypePdf).Errorf("failed to extract pdf text: %v", err)
		return "", err
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}

	text = cleanResumeText(string(raw))
	if text == "" {
		return "", ErrNoResumeText
	}
	return text, nil
}

func cleanResumeText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
