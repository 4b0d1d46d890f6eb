package matcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/clauseguard/internal/catalog"
	"github.com/raysh454/clauseguard/internal/model"
	"github.com/raysh454/clauseguard/internal/testutil"
)

func clauseAt(index, start int, text string) model.Clause {
	return model.Clause{Index: index, Text: text, Span: model.Span{Start: start, End: start + len(text)}}
}

func categoryIDs(ms []model.ClauseMatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.CategoryID
	}
	return out
}

// ─── Match ─────────────────────────────────────────────────────────────

func TestMatchEnglishClause(t *testing.T) {
	t.Parallel()
	text := "The Client shall indemnify the Company and the liability of the Company is limited to fees paid."
	tr := &testutil.DummyTranslator{}
	m := New(DefaultConfig(), tr, &testutil.DummyLogger{})

	res, err := m.Match(context.Background(), []model.Clause{clauseAt(3, 10, text)})
	require.NoError(t, err)
	assert.Equal(t, []string{"liability-cap", "indemnification"}, categoryIDs(res.Matches))
	assert.Zero(t, tr.Calls)
	assert.Empty(t, res.Warnings)

	limit := res.Matches[0]
	assert.Equal(t, 3, limit.ClauseIndex)
	assert.Equal(t, 10+strings.Index(text, "liability"), limit.Span.Start)
	assert.True(t, strings.HasSuffix(text[:limit.Span.End-10], "limited to"))
	assert.Equal(t, model.SeverityHigh, limit.Severity)
	assert.False(t, limit.ViaTranslation)
	assert.NotEmpty(t, limit.ID)
	assert.NotEqual(t, limit.ID, res.Matches[1].ID)
}

func TestMatchWeightsComeFromCatalog(t *testing.T) {
	t.Parallel()
	text := "Any dispute shall go to binding arbitration and the Supplier may modify these terms at any time."
	res, err := New(DefaultConfig(), nil, nil).Match(context.Background(), []model.Clause{clauseAt(0, 0, text)})
	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)
	for _, m := range res.Matches {
		w, err := catalog.Weight(m.CategoryID)
		require.NoError(t, err)
		assert.Equal(t, w, m.Weight, m.CategoryID)
	}
}

func TestMatchSkipsShortClauses(t *testing.T) {
	t.Parallel()
	res, err := New(DefaultConfig(), nil, nil).Match(context.Background(), []model.Clause{clauseAt(0, 0, "Sold as is.")})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
}

func TestMatchTranslatesHindiClauses(t *testing.T) {
	t.Parallel()
	hindi := "कर्मचारी द्वारा सेवा के दौरान बनाया गया सारा काम कंपनी का होगा"
	tr := &testutil.DummyTranslator{Dict: map[string]string{
		hindi: "All ownership of work product passes to the Company.",
	}}
	res, err := New(DefaultConfig(), tr, nil).Match(context.Background(), []model.Clause{clauseAt(1, 40, hindi)})
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Calls)
	assert.Equal(t, 1, res.Translated)
	require.Equal(t, []string{"ip-transfer"}, categoryIDs(res.Matches))
	hit := res.Matches[0]
	assert.True(t, hit.ViaTranslation)
	assert.Equal(t, model.Span{Start: 40, End: 40 + len(hindi)}, hit.Span)
}

func TestMatchTranslationFailureIsAWarning(t *testing.T) {
	t.Parallel()
	hindi := "ग्राहक कंपनी को क्षतिपूर्ति देगा और सभी हानि वहन करेगा"
	tr := &testutil.DummyTranslator{Err: &model.ServiceError{Service: "dummy", Err: model.ErrServiceUnavailable}}
	logger := &testutil.DummyLogger{}
	res, err := New(DefaultConfig(), tr, logger).Match(context.Background(), []model.Clause{clauseAt(0, 0, hindi)})
	require.NoError(t, err)
	assert.Equal(t, []string{"indemnification"}, categoryIDs(res.Matches))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "clause 1")
	assert.Equal(t, 1, logger.WarnCount())
}

func TestMatchHonorsContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultConfig(), nil, nil).Match(ctx, []model.Clause{clauseAt(0, 0, "The Client shall indemnify the Company.")})
	assert.True(t, errors.Is(err, context.Canceled))
}

// ─── Excerpt ───────────────────────────────────────────────────────────

func TestExcerpt(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "abc...", Excerpt("abc def", 4))
	assert.Equal(t, "कंपनी...", Excerpt("कंपनीकाम", 5))
	assert.Equal(t, "whole", Excerpt("whole", 0))
}
