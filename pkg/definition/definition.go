// Package definition decodes uploaded workflow documents into workflow models.
package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dukex/taskcomposer/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrMalformedDefinition is returned when a document cannot be turned into a workflow.
var ErrMalformedDefinition = errors.New("malformed workflow definition")

// Format is the encoding of an uploaded document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromContentType maps an HTTP content type to a document format.
// Anything that is not YAML is read as JSON.
func FormatFromContentType(contentType string) Format {
	if strings.Contains(strings.ToLower(contentType), "yaml") {
		return FormatYAML
	}

	return FormatJSON
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatYAML
}

// Definition is a decoded workflow document.
type Definition struct {
	Name string
	// Tags are accepted for compatibility with existing documents. Executions
	// carry the tags supplied when they are triggered.
	Tags      []string
	Arguments []Argument
	Steps     []Step
}

// Argument is a declared workflow argument. A nil Default marks it required.
type Argument struct {
	Key     string
	Default *string
}

// Step is one entry of the document's step list.
type Step struct {
	Name    string
	Service string
	Task    string
	Input   map[string]string
}

// ParseFile reads and parses a definition document from disk.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition %s: %w", path, err)
	}

	return Parse(data, FormatFromPath(path))
}

// Parse decodes a document, checks it against the document schema and
// converts it into a Definition.
func Parse(data []byte, format Format) (*Definition, error) {
	document, err := decode(data, format)
	if err != nil {
		return nil, err
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}

	root, _ := document.(map[string]any)

	return fromDocument(root)
}

func decode(data []byte, format Format) (any, error) {
	var document any

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDefinition, err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()

		if err := decoder.Decode(&document); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDefinition, err)
		}
	}

	if _, ok := document.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: document must be a mapping", ErrMalformedDefinition)
	}

	return document, nil
}

func fromDocument(root map[string]any) (*Definition, error) {
	def := &Definition{}
	def.Name, _ = root["name"].(string)

	for _, tag := range asSlice(root["tags"]) {
		if value, ok := tag.(string); ok {
			def.Tags = append(def.Tags, value)
		}
	}

	seen := make(map[string]bool)

	for _, item := range asSlice(root["args"]) {
		key, body := singleEntry(item)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate argument %q", ErrMalformedDefinition, key)
		}

		seen[key] = true
		arg := Argument{Key: key}

		if fields, ok := body.(map[string]any); ok {
			if value, present := fields["default"]; present && value != nil {
				text := scalarString(value)
				arg.Default = &text
			}
		}

		def.Arguments = append(def.Arguments, arg)
	}

	for _, item := range asSlice(root["steps"]) {
		name, body := singleEntry(item)
		fields, _ := body.(map[string]any)

		step := Step{
			Name:  name,
			Input: make(map[string]string),
		}
		step.Service, _ = fields["service"].(string)
		step.Task, _ = fields["task"].(string)

		if inputs, ok := fields["input"].(map[string]any); ok {
			for key, value := range inputs {
				step.Input[key] = scalarString(value)
			}
		}

		def.Steps = append(def.Steps, step)
	}

	return def, nil
}

// ToWorkflow builds a draft workflow. Steps are ordered by their position in
// the document and inputs by key.
func (d *Definition) ToWorkflow() *models.Workflow {
	workflow := &models.Workflow{
		Name:  d.Name,
		State: models.WorkflowStateDraft,
	}

	workflow.SetArguments(d.modelArguments())
	workflow.SetSteps(d.modelSteps())

	return workflow
}

func (d *Definition) modelArguments() []*models.Argument {
	args := make([]*models.Argument, 0, len(d.Arguments))

	for _, arg := range d.Arguments {
		modelArg := &models.Argument{Key: arg.Key}
		if arg.Default != nil {
			value := *arg.Default
			modelArg.Default = &value
		}

		args = append(args, modelArg)
	}

	return args
}

func (d *Definition) modelSteps() []*models.Step {
	steps := make([]*models.Step, 0, len(d.Steps))

	for _, step := range d.Steps {
		modelStep := &models.Step{
			Name:    step.Name,
			Service: step.Service,
			Task:    step.Task,
			Inputs:  make([]*models.StepInput, 0, len(step.Input)),
		}

		for _, key := range slices.Sorted(maps.Keys(step.Input)) {
			modelStep.Inputs = append(modelStep.Inputs, &models.StepInput{Key: key, Value: step.Input[key]})
		}

		steps = append(steps, modelStep)
	}

	return steps
}

func asSlice(value any) []any {
	items, _ := value.([]any)

	return items
}

// singleEntry returns the only key/value pair of a one-entry mapping.
func singleEntry(value any) (string, any) {
	entries, _ := value.(map[string]any)
	for key, body := range entries {
		return key, body
	}

	return "", nil
}

func scalarString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
