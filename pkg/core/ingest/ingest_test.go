package ingest

import (
	"bytes"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        Kind
	}{
		{"report.PDF", "", KindPDF},
		{"blob", "application/pdf", KindPDF},
		{"notes.txt", "application/octet-stream", KindText},
		{"upload", "text/plain; charset=utf-8", KindText},
		{"10k.htm", "", KindHTML},
		{"page", "text/html", KindHTML},
	}
	for _, tt := range tests {
		got, err := Detect(tt.filename, tt.contentType)
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}

	_, err := Detect("deck.pptx", "application/vnd.ms-powerpoint")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractTextDropsInvalidUTF8(t *testing.T) {
	text, err := ExtractText("a.txt", "text/plain", []byte("moat\xff\xfe ok"))
	require.NoError(t, err)
	assert.Equal(t, "moat ok", text)
}

func TestExtractTextHTML(t *testing.T) {
	page := `<html><head><style>p{}</style></head><body>
<h1>Annual   report</h1><script>track()</script>
<p>Owner earnings grew.</p><div hidden>secret</div></body></html>`

	text, err := ExtractText("r.html", "", []byte(page))
	require.NoError(t, err)
	assert.Equal(t, "Annual report Owner earnings grew.", text)
}

func TestExtractTextPDF(t *testing.T) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Cell(40, 10, "Moat")
	doc.AddPage()
	doc.Cell(40, 10, "Debt")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))

	text, err := ExtractText("r.pdf", "application/pdf", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "Moat")
	assert.Contains(t, text, "Debt")
	assert.Contains(t, text, "\n")
}

func TestExtractTextCorruptPDF(t *testing.T) {
	text, err := ExtractText("r.pdf", "", []byte("%PDF-1.4 not really"))
	assert.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "가치투", Excerpt("가치투자", 3))
	assert.Equal(t, "short", Excerpt("short", 8000))
	assert.Equal(t, "", Excerpt("x", 0))
}
