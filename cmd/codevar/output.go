package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/helixml/codevar/domain/search"
)

// Output formats of the search command.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type candidateOutput struct {
	Keyword  string  `json:"keyword" yaml:"keyword"`
	Language string  `json:"language" yaml:"language"`
	Link     string  `json:"link" yaml:"link"`
	IDs      []int64 `json:"ids" yaml:"ids"`
}

type searchOutput struct {
	Query       string            `json:"query" yaml:"query"`
	Page        int               `json:"page" yaml:"page"`
	Languages   []string          `json:"languages" yaml:"languages"`
	Translated  bool              `json:"translated" yaml:"translated"`
	Suggestions []string          `json:"suggestions" yaml:"suggestions"`
	Candidates  []candidateOutput `json:"candidates" yaml:"candidates"`
}

// newSearchOutput flattens the most recent page of state.
func newSearchOutput(state search.State) searchOutput {
	out := searchOutput{
		Page:        state.Page,
		Languages:   state.SearchLang,
		Translated:  state.IsNonLatin,
		Suggestions: state.Suggestion,
		Candidates:  []candidateOutput{},
	}
	if state.SearchValue != nil {
		out.Query = *state.SearchValue
	}
	if n := len(state.VariableList); n > 0 {
		for _, c := range state.VariableList[n-1] {
			ids := make([]int64, len(c.RepoList))
			for i, r := range c.RepoList {
				ids[i] = r.ID
			}
			out.Candidates = append(out.Candidates, candidateOutput{
				Keyword:  c.Keyword,
				Language: c.RepoLang,
				Link:     c.RepoLink,
				IDs:      ids,
			})
		}
	}
	return out
}

func writeSearchOutput(w io.Writer, format string, out searchOutput) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatText, "":
		return writeSearchText(w, out)
	default:
		return fmt.Errorf("unknown format %q: want text, json or yaml", format)
	}
}

func writeSearchText(w io.Writer, out searchOutput) error {
	if len(out.Candidates) == 0 {
		_, err := fmt.Fprintf(w, "no variables found for %q\n", out.Query)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEYWORD\tLANGUAGE\tRESULTS\tREPOSITORY")
	for _, c := range out.Candidates {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Keyword, c.Language, len(c.IDs), c.Link)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(out.Suggestions) > 0 {
		_, err := fmt.Fprintf(w, "\nsuggestions: %s\n", strings.Join(out.Suggestions, ", "))
		return err
	}
	return nil
}
