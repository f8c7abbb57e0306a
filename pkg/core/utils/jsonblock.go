package utils

import (
	"encoding/json"
	"fmt"
	"regexp"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	bracedSpan = regexp.MustCompile(`(?s)\{.*\}`)
)

// FindJSONBlock returns the candidate JSON object text in a model reply:
// the first ```json fenced object, otherwise the span from the first '{'
// to the last '}'.
func FindJSONBlock(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if raw := bracedSpan.FindString(text); raw != "" {
		return raw, true
	}
	return "", false
}

// ExtractJSONBlock finds the JSON object embedded in a model reply and parses it.
// It never fails loudly: no object, or one no strategy can parse, reports false.
func ExtractJSONBlock(text string) (map[string]any, bool) {
	raw, ok := FindJSONBlock(text)
	if !ok {
		return nil, false
	}
	var out map[string]any
	if _, err := SmartParse(raw, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

// RepairJSON attempts to fix common JSON errors from LLM outputs.
// Supported repairs:
// - Missing quotes around keys
// - Single quotes instead of double quotes
// - Unclosed arrays/objects
// - Trailing commas
// - Comments in JSON
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
// Hjson supports comments, unquoted keys and strings, optional commas and multiline strings.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	err := hjson.Unmarshal([]byte(hjsonData), &result)
	if err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	// Convert to standard JSON
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}

	return string(jsonBytes), nil
}

// SmartParse tries multiple parsing strategies to extract valid JSON.
// Order of attempts:
// 1. Standard JSON parse
// 2. JSON repair
// 3. Hjson parse (most lenient)
func SmartParse(input string, schema interface{}) (string, error) {
	// Try 1: Standard JSON
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	// Try 2: JSON Repair
	repaired, err := RepairJSON(input)
	if err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	// Try 3: Hjson (most lenient)
	hjsonResult, err := ParseHJSON(input)
	if err == nil {
		if err := json.Unmarshal([]byte(hjsonResult), schema); err == nil {
			return hjsonResult, nil
		}
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed for input")
}
