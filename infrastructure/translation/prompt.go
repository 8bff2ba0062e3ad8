package translation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/helixml/codevar/domain/search"
)

const systemPrompt = `You translate code search queries into English programming keywords.
Reply with a JSON object only: {"translation": "<english keywords separated by single spaces>", "suggestions": ["<related english identifier words>"]}.
Use at most eight suggestions. Never include non-English text.`

// llmReply is the JSON object the LLM backends are asked to produce.
type llmReply struct {
	Translation string   `json:"translation"`
	Suggestions []string `json:"suggestions"`
}

// userPrompt wraps the query for LLM backends.
func userPrompt(text string) string {
	return "Query: " + text
}

// parseReply decodes an LLM reply. Code fences around the JSON are tolerated.
// An empty translation is reported as no result.
func parseReply(raw string) (search.Translation, bool, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)
	if body == "" {
		return search.Translation{}, false, nil
	}

	var reply llmReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return search.Translation{}, false, fmt.Errorf("decode reply: %w", err)
	}

	text := search.NormalizeQuery(reply.Translation)
	if text == "" {
		return search.Translation{}, false, nil
	}
	return search.NewTranslation(text, cleanSuggestions(reply.Suggestions)), true, nil
}

func cleanSuggestions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
