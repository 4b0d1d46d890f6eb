package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/clauseguard/internal/model"
)

func TestCatalogShape(t *testing.T) {
	t.Parallel()
	require.GreaterOrEqual(t, Len(), 15)

	seen := map[string]bool{}
	for _, e := range All() {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
		assert.True(t, e.Severity.Valid(), e.ID)
		assert.NotEmpty(t, e.Label)
		assert.NotEmpty(t, e.Patterns, e.ID)
	}
}

func TestCatalogUsesEverySeverity(t *testing.T) {
	t.Parallel()
	got := map[model.Severity]bool{}
	for _, c := range Categories() {
		got[c.Severity] = true
	}
	for _, s := range model.Severities {
		assert.True(t, got[s], "no category with severity %s", s)
	}
}

func TestWeight(t *testing.T) {
	t.Parallel()
	w, err := Weight("indemnification")
	require.NoError(t, err)
	assert.Equal(t, 5, w)

	w, err = Weight("jurisdiction")
	require.NoError(t, err)
	assert.Equal(t, 1, w)

	_, err = Weight("made-up")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCategoriesIsACopy(t *testing.T) {
	t.Parallel()
	cats := Categories()
	cats[0].Severity = model.SeverityLow
	e, ok := Lookup(cats[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, model.SeverityLow, e.Severity)
}

func matchesCategory(id, text string) bool {
	e, ok := Lookup(id)
	if !ok {
		return false
	}
	for _, p := range e.Patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func TestSignatures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		id, text string
	}{
		{"liability-cap", "The Company's maximum liability under this Agreement shall not exceed the fees paid."},
		{"indemnification", "Client shall INDEMNIFY and hold harmless the Company from all claims."},
		{"automatic-renewal", "This Agreement will automatically renew for successive one-year terms."},
		{"termination-fee", "Early termination will incur a termination fee of ₹50,000."},
		{"ip-transfer", "All intellectual property created shall transfer to the Company."},
		{"non-compete", "Employee agrees to a non-compete period of two years."},
		{"arbitration", "Disputes shall be resolved by binding arbitration."},
		{"unilateral-changes", "Company may change these terms without notice."},
		{"limited-warranty", "The software is provided AS IS."},
		{"data-rights", "Company may use customer data for any purpose."},
		{"jurisdiction", "The courts of Mumbai shall have exclusive jurisdiction."},
		{"confidentiality-burden", "Recipient shall keep all information confidential in perpetuity."},
		{"payment-terms", "All fees are non-refundable."},
		{"force-majeure-abuse", "Provider may suspend services under force majeure."},
		{"assignment-rights", "Provider may assign this agreement without consent of the Client."},
		{"indemnification", "ग्राहक कंपनी को क्षतिपूर्ति करेगा।"},
		{"liability-cap", "कंपनी का दायित्व सीमित रहेगा।"},
		{"termination-fee", "समय से पहले समाप्ति पर जुर्माना देना होगा।"},
	}
	for _, tc := range cases {
		assert.True(t, matchesCategory(tc.id, tc.text), "%s should match %q", tc.id, tc.text)
	}
}

func TestSignaturesSpanWrappedLines(t *testing.T) {
	t.Parallel()
	assert.True(t, matchesCategory("liability-cap",
		"The aggregate liability of the Company\nunder this Agreement is limited to\nthe fees paid."))
	assert.True(t, matchesCategory("automatic-renewal",
		"This Agreement will automatically\nrenew for successive terms."))
}

func TestSignaturesAvoidObviousFalsePositives(t *testing.T) {
	t.Parallel()
	assert.False(t, matchesCategory("limited-warranty", "Invoices will be paid as issued by the vendor."))
	assert.False(t, matchesCategory("ip-transfer", "The ship belongs to the carrier."))
}

func TestTemplates(t *testing.T) {
	t.Parallel()
	for _, c := range Categories() {
		tpl := TemplateFor(c.ID, "en")
		assert.NotEmpty(t, tpl.Meaning, c.ID)
		assert.NotEqual(t, genericTemplates["en"], tpl, c.ID)
	}

	assert.Equal(t, hindiTemplates["liability-cap"], TemplateFor("liability-cap", "hi"))
	assert.Equal(t, genericTemplates["hi"], TemplateFor("jurisdiction", "hi"))
	assert.Equal(t, genericTemplates["en"], TemplateFor("nope", "en"))

	both := TemplateFor("indemnification", "both")
	assert.Contains(t, both.Meaning, englishTemplates["indemnification"].Meaning)
	assert.Contains(t, both.Meaning, hindiTemplates["indemnification"].Meaning)
}

func TestExplanationHelpers(t *testing.T) {
	t.Parallel()
	e := Explanation("payment-terms", "")
	assert.Equal(t, model.SourceTemplate, e.Source)
	assert.Equal(t, "en", e.Language)
	assert.True(t, e.Complete())

	m := MergedExplanation([]string{"payment-terms", "jurisdiction", "arbitration"}, "en")
	assert.Contains(t, m.Meaning, englishTemplates["payment-terms"].Meaning)
	assert.Contains(t, m.Meaning, englishTemplates["jurisdiction"].Meaning)
	assert.NotContains(t, m.Meaning, englishTemplates["arbitration"].Meaning)
}
