package verifier

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractJSON locates the single JSON object inside a model response that
// may be wrapped in prose or code fences. It strips fence markers, then
// takes the substring from the first '{' to the last '}'.
func ExtractJSON(raw string) (string, error) {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", eris.Errorf("verifier: no JSON object in response: %s", strings.TrimSpace(raw))
	}
	return s[start : end+1], nil
}

// claimPayload is the model's verdict for a claim. Status is required;
// a missing confidence defaults to 0.5.
type claimPayload struct {
	Status      *string  `json:"status"`
	Confidence  *float64 `json:"confidence"`
	Explanation string   `json:"explanation"`
}

func parseClaimPayload(raw string) (claimPayload, error) {
	var p claimPayload
	obj, err := ExtractJSON(raw)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return p, eris.Wrap(err, "verifier: unmarshal claim verdict")
	}
	if p.Status == nil {
		return p, eris.New("verifier: claim verdict missing status field")
	}
	return p, nil
}

// citationPayload is the model's verdict for a citation. IsReal is required.
type citationPayload struct {
	IsReal     *bool    `json:"isReal"`
	Confidence *float64 `json:"confidence"`
}

func parseCitationPayload(raw string) (citationPayload, error) {
	var p citationPayload
	obj, err := ExtractJSON(raw)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return p, eris.Wrap(err, "verifier: unmarshal citation verdict")
	}
	if p.IsReal == nil {
		return p, eris.New("verifier: citation verdict missing isReal field")
	}
	return p, nil
}
