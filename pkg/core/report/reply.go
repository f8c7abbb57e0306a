package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"value_copilot/pkg/core/utils"
)

// Download formats for copilot replies.
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// ReplyMarkdown prefixes the raw reply with a level-one title.
func ReplyMarkdown(title, reply string) string {
	return "# " + title + "\n\n" + reply
}

// ReplyHTML renders the reply as a standalone HTML page.
func ReplyHTML(title, reply string) (string, error) {
	body, err := utils.RenderHTML(ReplyMarkdown(title, utils.CleanMarkdown(reply)))
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// RecordJSON encodes a structured record indented, leaving non-ASCII text unescaped.
func RecordJSON(record any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds a download name such as "screener_KO.md".
func Filename(kind, subject, ext string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(subject))
	if clean == "" {
		clean = "untitled"
	}
	return kind + "_" + clean + "." + ext
}
