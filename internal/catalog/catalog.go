// Package catalog holds the static, read-only set of risk categories and
// their clause signatures. It is the only state shared between concurrent
// analyses.
package catalog

import (
	"fmt"
	"regexp"

	"github.com/raysh454/clauseguard/internal/model"
)

// Entry is a catalog category with its compiled signatures.
type Entry struct {
	model.RiskCategory

	// Patterns are matched case-insensitively against clause text, English
	// signatures first.
	Patterns []*regexp.Regexp
}

type definition struct {
	id, label   string
	severity    model.Severity
	description string
	patterns    []string
}

// definitions is ordered; matching reports categories in this order.
var definitions = []definition{
	{"liability-cap", "Liability Cap", model.SeverityHigh,
		"Caps how much the other party pays when things go wrong",
		[]string{
			`liability.*limited\s+to`,
			`maximum\s+liability`,
			`shall\s+not\s+exceed`,
			`liability.*capped`,
			`दायित्व.*सीमित`,
			`अधिकतम\s+दायित्व`,
		}},
	{"indemnification", "Indemnification", model.SeverityCritical,
		"Makes you cover the other party's losses and legal costs",
		[]string{
			`indemnif`,
			`hold\s+harmless`,
			`defend.*against`,
			`क्षतिपूर्ति`,
			`हानि\s+रहित`,
			`मुआवजा`,
		}},
	{"automatic-renewal", "Automatic Renewal", model.SeverityMedium,
		"Renews the contract unless you cancel in time",
		[]string{
			`automatically\s+renew`,
			`auto-?renew`,
			`shall\s+renew\s+unless`,
			`perpetual\s+renewal`,
			`स्वचालित.*नवीनीकरण`,
			`स्वतः.*नवीकरण`,
		}},
	{"termination-fee", "Termination Fee", model.SeverityMedium,
		"Charges a penalty for leaving early",
		[]string{
			`termination\s+fee`,
			`early\s+termination.*penalty`,
			`cancellation\s+charge`,
			`exit\s+fee`,
			`समाप्ति\s+शुल्क`,
			`जुर्माना`,
			`रद्दीकरण\s+शुल्क`,
		}},
	{"ip-transfer", "IP Transfer", model.SeverityCritical,
		"Transfers ownership of your work or ideas",
		[]string{
			`intellectual\s+property.*transfer`,
			`ownership.*work\s+product`,
			`all\s+rights.*assigned`,
			`\bIP\b.*belongs\s+to`,
			`बौद्धिक\s+संपदा.*हस्तांतरण`,
			`स्वामित्व.*हस्तांतरित`,
		}},
	{"non-compete", "Non-Compete", model.SeverityMedium,
		"Restricts working for competitors or soliciting clients",
		[]string{
			`non-?compete`,
			`shall\s+not.*compet`,
			`restrictive\s+covenant`,
			`non-?solicitation`,
			`प्रतिस्पर्धा.*नहीं`,
			`प्रतिबंधात्मक`,
		}},
	{"arbitration", "Arbitration Clause", model.SeverityLow,
		"Sends disputes to private arbitration instead of court",
		[]string{
			`mandatory\s+arbitration`,
			`binding\s+arbitration`,
			`arbitration.*exclusive\s+remedy`,
			`waive.*right.*jury`,
			`अनिवार्य\s+मध्यस्थता`,
			`बाध्यकारी\s+मध्यस्थता`,
		}},
	{"unilateral-changes", "Unilateral Changes", model.SeverityMedium,
		"Lets the other party change terms on its own",
		[]string{
			`modify.*at\s+any\s+time`,
			`change.*without\s+notice`,
			`reserve.*right.*modify`,
			`sole\s+discretion`,
			`बिना\s+सूचना.*बदल`,
			`किसी\s+भी\s+समय.*संशोधन`,
		}},
	{"limited-warranty", "Limited Warranty", model.SeverityLow,
		"Sells the product or service without guarantees",
		[]string{
			`\bas\s+is\b`,
			`no\s+warranty`,
			`warranty\s+disclaim`,
			`without\s+warranty.*kind`,
			`कोई\s+वारंटी\s+नहीं`,
			`जैसा\s+है`,
		}},
	{"data-rights", "Data Rights", model.SeverityHigh,
		"Grants broad rights over your data",
		[]string{
			`data.*belong.*to`,
			`unlimited.*data\s+rights`,
			`perpetual.*data\s+license`,
			`use.*data.*any\s+purpose`,
			`डेटा.*अधिकार`,
			`असीमित.*उपयोग`,
		}},
	{"jurisdiction", "Jurisdiction", model.SeverityLow,
		"Fixes where disputes must be filed",
		[]string{
			`exclusive\s+jurisdiction`,
			`courts?\s+of.*shall\s+have\s+jurisdiction`,
			`forum.*venue`,
			`अनन्य\s+क्षेत्राधिकार`,
		}},
	{"confidentiality-burden", "Confidentiality Burden", model.SeverityMedium,
		"Imposes confidentiality without an end date",
		[]string{
			`confidential.*perpetuity`,
			`confidential.*indefinitely`,
			`गोपनीय.*हमेशा`,
		}},
	{"payment-terms", "Payment Terms", model.SeverityMedium,
		"Requires upfront or non-refundable payment",
		[]string{
			`non-?refundable`,
			`payment.*advance`,
			`no\s+refund`,
			`वापसी\s+नहीं`,
			`अग्रिम\s+भुगतान`,
		}},
	{"force-majeure-abuse", "Force Majeure Abuse", model.SeverityLow,
		"Allows suspension of service for broadly defined events",
		[]string{
			`force\s+majeure.*broadly`,
			`suspend.*force\s+majeure`,
			`अप्रत्याशित\s+घटना`,
		}},
	{"assignment-rights", "Assignment Rights", model.SeverityMedium,
		"Lets the other party hand the contract to someone else",
		[]string{
			`may\s+assign.*without\s+consent`,
			`freely\s+assign`,
			`सहमति\s+के\s+बिना.*हस्तांतरण`,
		}},
}

var (
	entries []Entry
	byID    map[string]*Entry
)

func init() {
	entries = make([]Entry, 0, len(definitions))
	for _, d := range definitions {
		e := Entry{RiskCategory: model.RiskCategory{
			ID:          d.id,
			Label:       d.label,
			Severity:    d.severity,
			Description: d.description,
		}}
		// (?s): a clause can be wrapped over several lines by PDF extraction.
		for _, p := range d.patterns {
			e.Patterns = append(e.Patterns, regexp.MustCompile(`(?is)`+p))
		}
		entries = append(entries, e)
	}
	byID = make(map[string]*Entry, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}
}

// All returns the catalog in matching order. Callers must not modify the
// returned entries.
func All() []Entry { return entries }

// Categories returns a copy of the category metadata.
func Categories() []model.RiskCategory {
	out := make([]model.RiskCategory, len(entries))
	for i, e := range entries {
		out[i] = e.RiskCategory
	}
	return out
}

// Lookup returns the entry for id.
func Lookup(id string) (*Entry, bool) {
	e, ok := byID[id]
	return e, ok
}

// Weight returns the catalog weight for id. Unknown ids are an error so a
// weight can never be invented outside the catalog.
func Weight(id string) (int, error) {
	e, ok := byID[id]
	if !ok {
		return 0, fmt.Errorf("unknown risk category %q: %w", id, model.ErrInvalidInput)
	}
	return e.Weight(), nil
}

// Len returns the number of categories.
func Len() int { return len(entries) }
