package assessment

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/raysh454/clauseguard/internal/explain"
	"github.com/raysh454/clauseguard/internal/extract"
	"github.com/raysh454/clauseguard/internal/model"
	"github.com/raysh454/clauseguard/internal/scoring"
	"github.com/raysh454/clauseguard/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const contract = `SERVICE AGREEMENT

1. The Client shall indemnify and hold harmless the Company against all third party claims.
2. The Company's total liability is limited to the fees paid in the preceding month.
3. The Client shall pay all invoices within thirty days of receipt by bank transfer.
`

func newAnalyzer(client *testutil.DummyLLM) *Analyzer {
	var svc *explain.Service
	if client != nil {
		svc = explain.New(client, nil, explain.DefaultConfig(), nil)
	}
	return NewAnalyzer(Deps{Explainer: svc}, &testutil.DummyLogger{})
}

func aiReply() *testutil.DummyLLM {
	return &testutil.DummyLLM{Reply: testutil.ExplanationJSON("m", "r", "b", "rec")}
}

type stages struct {
	mu  sync.Mutex
	got []Stage
}

func (s *stages) record(p Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.got) == 0 || s.got[len(s.got)-1] != p.Stage {
		s.got = append(s.got, p.Stage)
	}
}

// ─── Analyze ───────────────────────────────────────────────────────────

func TestAnalyzeContract(t *testing.T) {
	t.Parallel()
	client := aiReply()
	rec := &stages{}

	res, err := newAnalyzer(client).Analyze(context.Background(), Input{Name: "msa.txt", Text: contract}, rec.record)
	require.NoError(t, err)

	assert.Equal(t, "msa.txt", res.DocumentName)
	assert.Equal(t, "text", res.Format)
	assert.Equal(t, "en", res.Language)
	assert.Equal(t, "en", res.ExplanationLanguage)
	assert.Len(t, res.Clauses, 3)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "indemnification", res.Matches[0].CategoryID)
	assert.Equal(t, "liability-cap", res.Matches[1].CategoryID)
	for _, m := range res.Matches {
		require.NotNil(t, m.Explanation)
		assert.Equal(t, model.SourceAI, m.Explanation.Source)
	}
	assert.False(t, res.Degraded)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, client.Calls())

	want, err := scoring.Default().Score([]int{5, 3}, extract.CountWords(extract.Clean(contract)))
	require.NoError(t, err)
	assert.Equal(t, want, res.Score)
	assert.Equal(t, scoring.Grade(res.Score), res.Grade)
	assert.Equal(t, 8, res.Metrics.WeightedMass)
	assert.Equal(t, 2, res.Metrics.RiskyClauses)
	assert.Equal(t, 1, res.Metrics.CountsBySeverity[model.SeverityCritical])
	assert.NotEmpty(t, res.ID)

	assert.Equal(t, []Stage{StageExtract, StageDetect, StageMatch, StageExplain, StageScore, StageDone}, rec.got)
}

func TestAnalyzeDegradesOnServiceOutage(t *testing.T) {
	t.Parallel()
	client := &testutil.DummyLLM{Err: &model.ServiceError{Service: "dummy", Err: model.ErrServiceUnavailable}}

	res, err := newAnalyzer(client).Analyze(context.Background(), Input{Text: contract}, nil)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, 1, client.Calls(), "outage should stop further calls")
	for _, m := range res.Matches {
		require.NotNil(t, m.Explanation)
		assert.Equal(t, model.SourceTemplate, m.Explanation.Source)
		assert.Contains(t, m.Explanation.Notice, "unavailable")
		assert.True(t, m.Explanation.Complete())
	}
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "2 of 2")
	assert.Len(t, res.Matches, 2, "clauses are still reported")
}

func TestAnalyzeKeepsTryingAfterMalformedReplies(t *testing.T) {
	t.Parallel()
	client := &testutil.DummyLLM{Reply: "not json"}
	res, err := newAnalyzer(client).Analyze(context.Background(), Input{Text: contract}, nil)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, 2, client.Calls())
}

func TestAnalyzeWithoutClientUsesTemplates(t *testing.T) {
	t.Parallel()
	res, err := newAnalyzer(nil).Analyze(context.Background(), Input{Text: contract, Language: "hi"}, nil)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Empty(t, res.Warnings)
	for _, m := range res.Matches {
		require.NotNil(t, m.Explanation)
		assert.Equal(t, model.SourceTemplate, m.Explanation.Source)
		assert.Equal(t, "hi", m.Explanation.Language)
		assert.Contains(t, m.Explanation.Notice, "not configured")
	}
}

func TestAnalyzeExplainNone(t *testing.T) {
	t.Parallel()
	client := aiReply()
	res, err := newAnalyzer(client).Analyze(context.Background(), Input{Text: contract, Explain: ExplainNone}, nil)
	require.NoError(t, err)
	assert.Zero(t, client.Calls())
	for _, m := range res.Matches {
		assert.Nil(t, m.Explanation)
	}
}

func TestAnalyzeMultiRiskClause(t *testing.T) {
	t.Parallel()
	client := aiReply()
	text := "1. The Client shall indemnify the Company and the liability of the Company is limited to fees paid under this agreement.\n" +
		"2. The Client shall pay all invoices within thirty days of receipt by bank transfer."

	res, err := newAnalyzer(client).Analyze(context.Background(), Input{Text: text}, nil)
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, res.Matches[0].ClauseIndex, res.Matches[1].ClauseIndex)
	assert.Same(t, res.Matches[0].Explanation, res.Matches[1].Explanation)
	require.Equal(t, 1, client.Calls())
	assert.Contains(t, client.Requests[0].User, "multiple risk factors")
}

func TestAnalyzeCleanContract(t *testing.T) {
	t.Parallel()
	text := "1. The Client shall pay all invoices within thirty days of receipt by bank transfer.\n" +
		"2. Each party shall give written notice of any change of its registered address."
	res, err := newAnalyzer(aiReply()).Analyze(context.Background(), Input{Text: text}, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, "A+", res.Grade)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)
}

func TestAnalyzeInputErrors(t *testing.T) {
	t.Parallel()
	a := newAnalyzer(nil)
	cases := map[string]Input{
		"empty":         {Text: "   "},
		"bad language":  {Text: contract, Language: "fr"},
		"bad mode":      {Text: contract, Explain: "some"},
		"binary upload": {Name: "x.png", Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")},
	}
	for name, in := range cases {
		_, err := a.Analyze(context.Background(), in, nil)
		assert.True(t, model.IsInputError(err), name)
	}
}

func TestAnalyzeHonorsContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAnalyzer(aiReply()).Analyze(ctx, Input{Text: contract}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseExplainMode(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]ExplainMode{"": ExplainAll, "ALL": ExplainAll, "true": ExplainAll, "none": ExplainNone, "false": ExplainNone} {
		got, err := ParseExplainMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseExplainMode("maybe")
	assert.True(t, model.IsInputError(err))
}

// ─── Compare ───────────────────────────────────────────────────────────

func TestCompare(t *testing.T) {
	t.Parallel()
	revised := strings.Replace(contract,
		"The Client shall indemnify and hold harmless the Company against all third party claims.",
		"Each party shall bear its own costs arising from third party claims against it.", 1)

	cmp, err := newAnalyzer(aiReply()).Compare(context.Background(),
		Input{Name: "v1.txt", Text: contract}, Input{Name: "v2.txt", Text: revised})
	require.NoError(t, err)

	assert.Equal(t, "v1.txt", cmp.Old.DocumentName)
	assert.Equal(t, "v2.txt", cmp.New.DocumentName)
	assert.Greater(t, cmp.ScoreDelta, 0)
	assert.Empty(t, cmp.Added)
	assert.Equal(t, []string{"indemnification"}, cmp.Removed)
	assert.Equal(t, []string{"liability-cap"}, cmp.Unchanged)
	assert.NotEmpty(t, cmp.Changes)
	assert.Positive(t, cmp.Insertions)
	assert.Positive(t, cmp.Deletions)
	assert.Contains(t, cmp.Summary(), "safer")
}

func TestCompareFailsWhenEitherSideFails(t *testing.T) {
	t.Parallel()
	_, err := newAnalyzer(nil).Compare(context.Background(), Input{Text: contract}, Input{Text: ""})
	require.Error(t, err)
	assert.True(t, model.IsInputError(err))
	assert.Contains(t, err.Error(), "new version")
}
