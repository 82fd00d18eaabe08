package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"github.com/sevigo/repo-pilot/internal/core"
)

var (
	schemaMu    sync.Mutex
	schemaCache = map[core.Task]*genai.Schema{}
)

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
	}
}

// ResponseSchema returns the response schema the model must follow for task.
// Documentation is free text and has no schema.
func ResponseSchema(task core.Task) (*genai.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if s, ok := schemaCache[task]; ok {
		return s, nil
	}

	if task == core.TaskDocumentation {
		return nil, nil
	}
	target, err := newResult(task)
	if err != nil {
		return nil, err
	}

	s := schemaToGenai(newReflector().Reflect(target))
	schemaCache[task] = s
	return s, nil
}

// newResult returns an empty value of the result type produced for task.
func newResult(task core.Task) (core.AnalysisResult, error) {
	switch task {
	case core.TaskIssueAnalysis:
		return &core.IssueAnalysis{}, nil
	case core.TaskPRReview:
		return &core.PRReview{}, nil
	case core.TaskCIAnalysis:
		return &core.CIAnalysis{}, nil
	case core.TaskTriage:
		return &core.TriageResult{}, nil
	case core.TaskDocumentation:
		return &core.Documentation{}, nil
	default:
		return nil, fmt.Errorf("unknown task %q", task)
	}
}

var requiredCache sync.Map

// requiredKeys lists the top-level properties the response schema of task marks
// as required.
func requiredKeys(task core.Task) ([]string, error) {
	if keys, ok := requiredCache.Load(task); ok {
		return keys.([]string), nil
	}
	target, err := newResult(task)
	if err != nil {
		return nil, err
	}
	keys := newReflector().Reflect(target).Required
	requiredCache.Store(task, keys)
	return keys, nil
}

func schemaToGenai(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Title:       s.Title,
	}
	if t := mapSchemaType(s.Type); t != "" {
		out.Type = t
	}

	if len(s.Enum) > 0 {
		out.Enum = make([]string, 0, len(s.Enum))
		for _, v := range s.Enum {
			out.Enum = append(out.Enum, fmt.Sprint(v))
		}
	}
	if len(s.Required) > 0 {
		out.Required = append(out.Required, s.Required...)
	}

	if v, ok := numberValue(s.Maximum); ok {
		out.Maximum = &v
	}
	if v, ok := numberValue(s.Minimum); ok {
		out.Minimum = &v
	}
	if s.MinItems != nil {
		v := int64(*s.MinItems)
		out.MinItems = &v
	}

	if s.Properties != nil {
		out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		ordering := make([]string, 0, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key] = schemaToGenai(pair.Value)
			ordering = append(ordering, pair.Key)
		}
		if len(ordering) > 0 {
			out.PropertyOrdering = ordering
		}
	}
	if s.Items != nil {
		out.Items = schemaToGenai(s.Items)
	}
	return out
}

func mapSchemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	case "null":
		return genai.TypeNULL
	default:
		return ""
	}
}

func numberValue(n json.Number) (float64, bool) {
	if len(n) == 0 {
		return 0, false
	}
	v, err := n.Float64()
	return v, err == nil
}
