package llm

import (
	"encoding/json"
	"log"
	"strings"
)

// ParseJSONResponse pulls a JSON object out of a model reply. Comedians are
// asked to answer with a bare {"joke": ...} object, but chat models like to
// wrap it in markdown code fences; those are stripped before decoding.
// Returns nil when no object can be decoded, so callers can fall back to
// treating the raw reply as the joke.
func ParseJSONResponse(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	text = stripCodeFence(text)

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		log.Printf("Model reply is not JSON: %v", err)
		return nil
	}
	return fields
}

// stripCodeFence drops a surrounding ``` block, fence language tag included.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}
