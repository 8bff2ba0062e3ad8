package variable

// ComposeSuggestions prepends tokens to previous, removes duplicates keeping
// the first occurrence and drops empty or non-Latin entries.
func ComposeSuggestions(tokens, previous []string) []string {
	seen := make(map[string]struct{}, len(tokens)+len(previous))
	result := make([]string, 0, len(tokens)+len(previous))

	add := func(list []string) {
		for _, token := range list {
			if token == "" {
				continue
			}
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			if IsNonLatin(token) {
				continue
			}
			result = append(result, token)
		}
	}

	add(tokens)
	add(previous)
	return result
}
