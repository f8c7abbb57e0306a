// Package prompt provides the prompt library of the copilot.
// Prompts are defined in JSON files, embedded in the binary and optionally
// overridden from a directory at startup, so wording can change without code changes.
package prompt

// PromptTemplate represents a reusable prompt with metadata
type PromptTemplate struct {
	ID             string           `json:"id"`                   // Unique identifier (e.g., "task.screener")
	Name           string           `json:"name"`                 // Human-readable name
	Category       string           `json:"category"`             // system, task or sample
	Description    string           `json:"description"`          // Description of prompt purpose
	SystemPrompt   string           `json:"system_prompt"`        // The system prompt content
	UserPromptTmpl string           `json:"user_prompt_template"` // Go template for user prompt
	ResponseKeys   []string         `json:"response_keys"`        // Keys expected in the JSON block of the reply
	Variables      []PromptVariable `json:"variables"`            // Variables used in template
	Version        string           `json:"version"`
}

// PromptVariable defines a variable used in a prompt template
type PromptVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, int, float, array, object
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default"`
}

// PromptExecutionContext holds runtime values for prompt execution
type PromptExecutionContext struct {
	Variables map[string]interface{}
}

// NewContext creates a new execution context
func NewContext() *PromptExecutionContext {
	return &PromptExecutionContext{
		Variables: make(map[string]interface{}),
	}
}

// Set adds a variable to the context
func (c *PromptExecutionContext) Set(key string, value interface{}) *PromptExecutionContext {
	c.Variables[key] = value
	return c
}

// PromptIDs contains all built-in prompt identifiers
var PromptIDs = struct {
	SystemValueInvestor string
	TaskScreener        string
	TaskMemo            string
	TaskUploadSummary   string
}{
	SystemValueInvestor: "system.value_investor",
	TaskScreener:        "task.screener",
	TaskMemo:            "task.memo",
	TaskUploadSummary:   "task.upload_summary",
}

// CategorySample groups the one-click sample questions.
const CategorySample = "sample"
