package explain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/raysh454/clauseguard/internal/model"
)

const systemPrompt = "You are a helpful legal assistant that explains contract clauses in simple, practical language. " +
	"You focus on real-world implications and actionable advice. Always answer with a single JSON object."

func languageInstruction(lang string) string {
	switch lang {
	case "hi":
		return "Explain in Hindi (हिंदी में समझाएं). Use simple Hindi that common people can understand."
	case "both":
		return "Write every field in English first, then the same text in Hindi on a new line."
	default:
		return "Explain in clear, simple English."
	}
}

const jsonShape = `Reply with JSON only, exactly these string fields:
{"meaning": "...", "risk": "...", "beneficiary": "...", "recommendation": "..."}`

func singlePrompt(clause string, cat model.RiskCategory, lang string) string {
	var b strings.Builder
	b.WriteString(languageInstruction(lang))
	b.WriteString("\n\nAnalyze this contract clause. It was flagged as ")
	fmt.Fprintf(&b, "%q (%s risk): %s\n\n", cat.Label, cat.Severity, cat.Description)
	b.WriteString(`Provide a practical explanation:
- meaning: what this clause says in everyday language
- risk: what problems or costs this could cause for the person signing
- beneficiary: which party gains advantage from this clause
- recommendation: specific action to take (negotiate, remove, modify, or accept)

Keep each field concise (2-3 sentences max). Be direct and practical.

`)
	b.WriteString(jsonShape)
	b.WriteString("\n\nContract clause:\n")
	b.WriteString(clause)
	return b.String()
}

func multiPrompt(clause string, cats []model.RiskCategory, lang string) string {
	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = c.Label
	}
	var b strings.Builder
	b.WriteString(languageInstruction(lang))
	fmt.Fprintf(&b, "\n\nThis contract clause has multiple risk factors: %s\n\n", strings.Join(labels, ", "))
	b.WriteString(`Provide a comprehensive explanation:
- meaning: the overall meaning of the clause
- risk: how these risks work together
- beneficiary: which party is protected
- recommendation: the best course of action

`)
	b.WriteString(jsonShape)
	b.WriteString("\n\nClause:\n")
	b.WriteString(clause)
	return b.String()
}

// field accepts a JSON string, an array of strings, or an object of
// strings (e.g. {"en": ..., "hi": ...}) and flattens it to text.
type field string

func (f *field) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = field(strings.TrimSpace(s))
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = field(strings.TrimSpace(strings.Join(list, "\n")))
		return nil
	}
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		// English before Hindi, then anything else in a stable order.
		sort.Slice(keys, func(i, j int) bool {
			ri, rj := langRank(keys[i]), langRank(keys[j])
			if ri != rj {
				return ri < rj
			}
			return keys[i] < keys[j]
		})
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v := strings.TrimSpace(obj[k]); v != "" {
				parts = append(parts, v)
			}
		}
		*f = field(strings.Join(parts, "\n"))
		return nil
	}
	return fmt.Errorf("unsupported field value %s", data)
}

func langRank(k string) int {
	switch strings.ToLower(k) {
	case "en", "english":
		return 0
	case "hi", "hindi":
		return 1
	}
	return 2
}

type reply struct {
	Meaning        field `json:"meaning"`
	Risk           field `json:"risk"`
	Beneficiary    field `json:"beneficiary"`
	WhoBenefits    field `json:"who_benefits"`
	Recommendation field `json:"recommendation"`
	Action         field `json:"action"`
}

var errNoObject = errors.New("no JSON object in reply")

// parseReply extracts the first JSON object from raw, tolerating code
// fences and surrounding prose.
func parseReply(raw string) (*model.Explanation, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, errNoObject
	}
	var r reply
	dec := json.NewDecoder(bytes.NewReader([]byte(raw[start:])))
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	e := &model.Explanation{
		Meaning:        string(r.Meaning),
		Risk:           string(r.Risk),
		Beneficiary:    firstNonEmpty(string(r.Beneficiary), string(r.WhoBenefits)),
		Recommendation: firstNonEmpty(string(r.Recommendation), string(r.Action)),
	}
	if !e.Complete() {
		return nil, errors.New("reply is missing explanation fields")
	}
	return e, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
