package llm

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Response is a parsed inline prompt answer. Plain-text answers leave
// only Text set; structured answers carry the three fields the editor
// splices from.
type Response struct {
	Text string

	Structured           bool
	Reasoning            string
	SelectionReplacement string
	Explanation          string
}

// ParseResponse recognizes the structured JSON answer shape
// ({reasoning, selection_replacement, explanation}); anything else is
// returned as plain text. Models sometimes fence the JSON despite
// instructions, so a leading code fence is stripped first.
func ParseResponse(raw string) Response {
	body := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(body, "```json"); ok {
		body = strings.TrimSuffix(strings.TrimSpace(after), "```")
	} else if after, ok := strings.CutPrefix(body, "```"); ok {
		body = strings.TrimSuffix(strings.TrimSpace(after), "```")
	}
	body = strings.TrimSpace(body)

	if !gjson.Valid(body) {
		return Response{Text: raw}
	}
	replacement := gjson.Get(body, "selection_replacement")
	if !replacement.Exists() {
		return Response{Text: raw}
	}

	return Response{
		Text:                 raw,
		Structured:           true,
		Reasoning:            gjson.Get(body, "reasoning").String(),
		SelectionReplacement: replacement.String(),
		Explanation:          gjson.Get(body, "explanation").String(),
	}
}
