package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sevigo/repo-pilot/internal/core"
)

// parseResult decodes the raw model output for task into its typed result and
// applies the actionability rule. It never returns a partially decoded value.
func parseResult(task core.Task, raw string) (core.AnalysisResult, error) {
	if task == core.TaskDocumentation {
		return &core.Documentation{Content: stripMarkdownFence(raw)}, nil
	}

	target, err := newResult(task)
	if err != nil {
		return nil, err
	}

	jsonString, err := extractJSON(raw)
	if err != nil {
		return nil, &core.AIResponseParseError{Task: task, Raw: raw, Err: err}
	}
	jsonString = sanitizeJSON(jsonString)

	if err := checkRequired(task, jsonString); err != nil {
		return nil, &core.AIResponseParseError{Task: task, Raw: raw, Err: err}
	}
	if err := json.Unmarshal([]byte(jsonString), target); err != nil {
		return nil, &core.AIResponseParseError{Task: task, Raw: raw, Err: err}
	}
	if err := core.ValidateResult(target); err != nil {
		return nil, &core.AIResponseParseError{Task: task, Raw: raw, Err: err}
	}
	return core.EnforceActionable(target), nil
}

// checkRequired fails when a key the response schema requires is absent or null.
func checkRequired(task core.Task, jsonString string) error {
	keys, err := requiredKeys(task)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonString), &fields); err != nil {
		return err
	}
	var missing []string
	for _, key := range keys {
		if v, ok := fields[key]; !ok || string(v) == "null" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// extractJSON finds the first JSON object in a model response, tolerating code
// fences and surrounding prose.
func extractJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if json.Valid([]byte(raw)) {
		return raw, nil
	}

	// Use the first fenced block when there is one.
	if startFence := strings.Index(raw, "```"); startFence != -1 {
		remaining := raw[startFence+3:]
		if endFence := strings.Index(remaining, "```"); endFence != -1 {
			inner := strings.TrimSpace(remaining[:endFence])
			if strings.HasPrefix(strings.ToLower(inner), "json") {
				inner = strings.TrimSpace(inner[4:])
			}
			raw = inner
		}
	}

	startBrace := strings.Index(raw, "{")
	if startBrace == -1 {
		return "", fmt.Errorf("response did not contain valid JSON start")
	}
	raw = raw[startBrace:]

	decoder := json.NewDecoder(strings.NewReader(raw))
	var msg json.RawMessage
	if err := decoder.Decode(&msg); err != nil {
		// An invalid escape breaks the decoder, so retry once on the repaired text.
		decoder = json.NewDecoder(strings.NewReader(sanitizeJSON(raw)))
		if err2 := decoder.Decode(&msg); err2 != nil {
			return "", fmt.Errorf("failed to decode JSON from response: %w", err)
		}
	}
	return string(msg), nil
}

// sanitizeJSON fixes invalid backslash escapes such as the \s in C:\src.
func sanitizeJSON(input string) string {
	if json.Valid([]byte(input)) {
		return input
	}

	var sb strings.Builder
	sb.Grow(len(input) + 20)

	runes := []rune(input)
	length := len(runes)

	for i := 0; i < length; i++ {
		char := runes[i]
		if char != '\\' {
			sb.WriteRune(char)
			continue
		}
		if i+1 >= length {
			sb.WriteString(`\\`)
			break
		}
		next := runes[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			sb.WriteRune(char)
			sb.WriteRune(next)
			i++
		default:
			sb.WriteString(`\\`)
		}
	}
	return sb.String()
}

// stripMarkdownFence removes a ```markdown fence some models wrap around plain text.
func stripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```markdown") && !strings.HasPrefix(trimmed, "```md") {
		return s
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
