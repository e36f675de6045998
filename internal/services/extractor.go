package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC  = "application/msword"
	MimeText = "text/plain"
)

// ExtractorService converts an uploaded document into normalized plain text.
// It is a pure transform over the in-memory buffer: any failure is terminal
// for the upload attempt.
type ExtractorService interface {
	Extract(data []byte, mimeType string) (string, error)
}

type extractorService struct {
	maxFileSize   int64
	minTextLength int
}

func NewExtractorService(maxFileSize int64, minTextLength int) ExtractorService {
	return &extractorService{
		maxFileSize:   maxFileSize,
		minTextLength: minTextLength,
	}
}

var (
	spaceRuns    = regexp.MustCompile(`[ \t\r\f\v]+`)
	paddedBreaks = regexp.MustCompile(` ?\n ?`)
	newlineRuns  = regexp.MustCompile(`\n{3,}`)
	controlChar  = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
)

// Extract implements ExtractorService.
func (e *extractorService) Extract(data []byte, mimeType string) (string, error) {
	if int64(len(data)) > e.maxFileSize {
		return "", apperrors.Wrap(apperrors.KindFileTooLarge,
			fmt.Sprintf("file exceeds maximum size of %d bytes", e.maxFileSize), nil)
	}

	var (
		text string
		err  error
	)

	switch normalizeMime(mimeType) {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX, MimeDOC:
		text, err = extractDOCX(data)
	case MimeText:
		text = strings.ToValidUTF8(string(data), "")
	default:
		return "", apperrors.New(apperrors.KindUnsupportedType,
			fmt.Sprintf("unsupported file type %q, allowed: PDF, DOCX, DOC, TXT", mimeType))
	}
	if err != nil {
		return "", err
	}

	text = normalizeText(text)
	if len(text) < e.minTextLength {
		return "", apperrors.New(apperrors.KindEmptyDocument,
			"document contains too little text, it may be image-based or corrupted")
	}

	return text, nil
}

func normalizeMime(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// normalizeText collapses whitespace runs to single spaces, caps newline runs
// at two, strips control characters, and trims the ends.
func normalizeText(text string) string {
	text = controlChar.ReplaceAllString(text, "")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = paddedBreaks.ReplaceAllString(text, "\n")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindEmptyDocument, "failed to open PDF", err)
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep what the rest yields.
			continue
		}

		builder.WriteString(text)
		builder.WriteString("\n\n")
	}

	return builder.String(), nil
}

// extractDOCX walks word/document.xml inside the zip container and collects
// the text runs, inserting newlines at paragraph and break boundaries.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindEmptyDocument, "failed to open DOCX container", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", apperrors.New(apperrors.KindEmptyDocument, "DOCX has no document body")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindEmptyDocument, "failed to read DOCX body", err)
	}
	defer rc.Close()

	var builder strings.Builder
	decoder := xml.NewDecoder(rc)
	inTextRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", apperrors.Wrap(apperrors.KindEmptyDocument, "failed to parse DOCX body", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inTextRun = true
			case "tab":
				builder.WriteString(" ")
			case "br":
				builder.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				builder.WriteString("\n")
			}
		case xml.CharData:
			if inTextRun {
				builder.Write(t)
			}
		}
	}

	return builder.String(), nil
}
