package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"
)

//go:embed defaults
var defaultFS embed.FS

// LoadDefaults registers the prompts embedded in the binary.
func LoadDefaults(r *Registry) (int, error) {
	return loadPrompts(r, defaultFS, "defaults")
}

// LoadFromDirectory registers every prompt found under baseDir, replacing
// built-in prompts with the same ID.
// Expected structure:
//
//	baseDir/
//	  system/
//	    value_investor.json
//	  task/
//	    screener.json
func LoadFromDirectory(r *Registry, baseDir string) (int, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return 0, fmt.Errorf("prompts directory not found: %s: %w", baseDir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("prompts path is not a directory: %s", baseDir)
	}
	return loadPrompts(r, os.DirFS(baseDir), ".")
}

// loadPrompts recursively loads all .json files below root
func loadPrompts(r *Registry, fsys fs.FS, root string) (int, error) {
	count := 0
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip directories and non-JSON files
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}

		// Auto-generate ID from path if not specified
		if pt.ID == "" {
			pt.ID = generateIDFromPath(p, root)
		}

		// Auto-detect category from folder name if not specified
		if pt.Category == "" {
			pt.Category = detectCategory(p, root)
		}

		if pt.UserPromptTmpl != "" {
			if _, err := template.New(pt.ID).Parse(pt.UserPromptTmpl); err != nil {
				return fmt.Errorf("invalid template in %s: %w", p, err)
			}
		}

		if err := r.Register(&pt); err != nil {
			return fmt.Errorf("failed to register %s: %w", pt.ID, err)
		}
		count++
		return nil
	})
	return count, err
}

func relative(p, root string) string {
	if root == "." {
		return p
	}
	return strings.TrimPrefix(p, root+"/")
}

// generateIDFromPath creates a prompt ID from the file path
// e.g., "task/screener.json" -> "task.screener"
func generateIDFromPath(p, root string) string {
	rel := strings.TrimSuffix(relative(p, root), ".json")
	return strings.ReplaceAll(rel, "/", ".")
}

// detectCategory extracts the category from the folder structure
func detectCategory(p, root string) string {
	parts := strings.Split(relative(p, root), "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return "general"
}

// RenderUserPrompt renders the user prompt template with the given context.
// Declared defaults fill unset variables; a required variable left unset is an error.
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}
	if ctx == nil {
		ctx = NewContext()
	}

	vars := make(map[string]interface{}, len(ctx.Variables)+len(pt.Variables))
	for _, v := range pt.Variables {
		if v.Required {
			if _, ok := ctx.Variables[v.Name]; !ok {
				return "", fmt.Errorf("prompt %s: missing required variable %s", pt.ID, v.Name)
			}
		}
		vars[v.Name] = v.Default
	}
	for k, v := range ctx.Variables {
		vars[k] = v
	}

	tmpl, err := template.New(pt.ID).Option("missingkey=error").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
