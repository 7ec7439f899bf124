package servers

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Loader reads the servers file
type Loader struct {
	filePath string
	lookup   func(string) (string, bool)
}

// NewLoader creates a new servers file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		lookup:   os.LookupEnv,
	}
}

// Load reads, expands and parses the servers file
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read servers file: %w", err)
	}

	data, err = expandTemplateVariables(data, l.lookup)
	if err != nil {
		return File{}, err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse servers yaml: %w", err)
	}

	return file, nil
}

// templateVar matches {{MCBOARD_VAR_...}} placeholders
var templateVar = regexp.MustCompile(`\{\{\s*(MCBOARD_VAR_[A-Za-z0-9_]+)\s*\}\}`)

// expandTemplateVariables replaces placeholders with environment values.
// Example: {{MCBOARD_VAR_CHAT_ID}} -> value of $MCBOARD_VAR_CHAT_ID
func expandTemplateVariables(data []byte, lookup func(string) (string, bool)) ([]byte, error) {
	var firstErr error

	out := templateVar.ReplaceAllFunc(data, func(match []byte) []byte {
		if firstErr != nil {
			return match
		}
		name := string(templateVar.FindSubmatch(match)[1])
		value, ok := lookup(name)
		if !ok {
			firstErr = fmt.Errorf("environment variable %q is not set", name)
			return match
		}
		return []byte(value)
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
