package copilot

import (
	"fmt"
	"strings"

	"value_copilot/pkg/core/utils"
)

// ScreenerRecord is the JSON block of a screener reply.
type ScreenerRecord struct {
	Summary   string           `json:"summary"`
	Bullets   []string         `json:"bullets"`
	Checklist []map[string]any `json:"checklist"`
	Valuation map[string]any   `json:"valuation"`
	Risks     []string         `json:"risks"`
}

// MemoRecord is the JSON block of an investment memo.
type MemoRecord struct {
	Thesis     string         `json:"thesis"`
	Moat       string         `json:"moat"`
	Unit       string         `json:"unit"`
	Capital    string         `json:"capital"`
	Valuation  map[string]any `json:"valuation"`
	Risks      []string       `json:"risks"`
	Catalysts  []string       `json:"catalysts"`
	Monitoring []string       `json:"monitoring"`
	Verdict    string         `json:"verdict"`
}

// UploadRecord is the JSON block of a document summary.
type UploadRecord struct {
	Summary     string   `json:"summary"`
	Bullets     []string `json:"bullets"`
	Risks       []string `json:"risks"`
	Checkpoints []string `json:"checkpoints"`
	RedFlags    []string `json:"redflags"`
}

// Models do not follow the requested shapes exactly, so the block is read
// as a loose map and coerced field by field.

func parseScreener(reply string) *ScreenerRecord {
	data, ok := utils.ExtractJSONBlock(reply)
	if !ok || len(data) == 0 {
		return nil
	}
	return &ScreenerRecord{
		Summary:   asString(data["summary"]),
		Bullets:   asStrings(data["bullets"]),
		Checklist: asRows(data["checklist"]),
		Valuation: asObject(data["valuation"]),
		Risks:     asStrings(data["risks"]),
	}
}

func parseMemo(reply string) *MemoRecord {
	data, ok := utils.ExtractJSONBlock(reply)
	if !ok || len(data) == 0 {
		return nil
	}
	return &MemoRecord{
		Thesis:     asString(data["thesis"]),
		Moat:       asString(data["moat"]),
		Unit:       asString(data["unit"]),
		Capital:    asString(data["capital"]),
		Valuation:  asObject(data["valuation"]),
		Risks:      asStrings(data["risks"]),
		Catalysts:  asStrings(data["catalysts"]),
		Monitoring: asStrings(data["monitoring"]),
		Verdict:    asString(data["verdict"]),
	}
}

func parseUpload(reply string) *UploadRecord {
	data, ok := utils.ExtractJSONBlock(reply)
	if !ok || len(data) == 0 {
		return nil
	}
	return &UploadRecord{
		Summary:     asString(data["summary"]),
		Bullets:     asStrings(data["bullets"]),
		Risks:       asStrings(data["risks"]),
		Checkpoints: asStrings(data["checkpoints"]),
		RedFlags:    asStrings(data["redflags"]),
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		return strings.Join(asStrings(t), "\n")
	default:
		return fmt.Sprint(t)
	}
}

func asStrings(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := asString(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

// asRows accepts a list of objects; bare strings become {"item": s}.
func asRows(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case map[string]any:
			out = append(out, t)
		case nil:
		default:
			out = append(out, map[string]any{"item": asString(t)})
		}
	}
	return out
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
