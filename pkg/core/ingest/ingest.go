// Package ingest extracts plain text from uploaded documents (annual reports,
// filings, notes) so it can be summarized by the copilot.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for uploads that are not PDF, text or HTML.
var ErrUnsupportedType = errors.New("unsupported document type")

// Kind is the detected document format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindText Kind = "text"
	KindHTML Kind = "html"
)

// Detect picks the document kind from the file extension, then the content type.
func Detect(filename, contentType string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, nil
	case ".txt", ".md", ".csv":
		return KindText, nil
	case ".html", ".htm":
		return KindHTML, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case "application/pdf":
		return KindPDF, nil
	case "text/plain", "text/markdown", "text/csv":
		return KindText, nil
	case "text/html", "application/xhtml+xml":
		return KindHTML, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, filename, contentType)
}

// ExtractText returns the readable text of an upload.
// An unreadable PDF yields "" rather than an error; callers treat empty text as "nothing extracted".
func ExtractText(filename, contentType string, data []byte) (string, error) {
	kind, err := Detect(filename, contentType)
	if err != nil {
		return "", err
	}
	switch kind {
	case KindPDF:
		text, _ := pdfText(data)
		return text, nil
	case KindHTML:
		return htmlText(data)
	default:
		return strings.ToValidUTF8(string(data), ""), nil
	}
}

// pdfText joins the plain text of every page with "\n".
// Corrupt PDFs can make the parser panic; that is reported as an error.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("panic during PDF extraction: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			pageText = ""
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}

// htmlText returns the visible text of an HTML document with whitespace collapsed.
func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()
	doc.Find("[hidden], [style*='display:none'], [style*='display: none']").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return strings.Join(strings.Fields(root.Text()), " "), nil
}

// Excerpt returns at most n runes of text.
func Excerpt(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
