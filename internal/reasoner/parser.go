package reasoner

import "strings"

// ExtractJSON strips markdown code fences from a model response, returning
// the fenced payload when one exists and the trimmed raw text otherwise.
// Models regularly wrap JSON in ```json fences despite being told not to;
// callers still have to json.Unmarshal the result and handle failure.
func ExtractJSON(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(text)
}
