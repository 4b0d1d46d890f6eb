package scoring

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/clauseguard/internal/catalog"
	"github.com/raysh454/clauseguard/internal/model"
)

// ─── Score ─────────────────────────────────────────────────────────────

func TestScoreNoMatchesIsPerfect(t *testing.T) {
	t.Parallel()
	a := Default()
	for _, words := range []int{0, 1, 100, 100000} {
		s, err := a.Score(nil, words)
		require.NoError(t, err)
		assert.Equal(t, 100, s, "words=%d", words)
	}
	s, err := a.Score([]int{0, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, s)
}

func TestScoreHeavierWeightScoresLower(t *testing.T) {
	t.Parallel()
	a := Default()
	heavy, err := a.Score([]int{5}, 100)
	require.NoError(t, err)
	light, err := a.Score([]int{1}, 100)
	require.NoError(t, err)
	assert.Less(t, heavy, light)
}

func TestScoreShorterDocumentScoresLower(t *testing.T) {
	t.Parallel()
	a := Default()
	short, err := a.Score([]int{5}, 50)
	require.NoError(t, err)
	long, err := a.Score([]int{5}, 500)
	require.NoError(t, err)
	assert.Less(t, short, long)
}

func TestScoreKnownValues(t *testing.T) {
	t.Parallel()
	a := Default()
	cases := []struct {
		weights []int
		words   int
		want    int
	}{
		// 2.5*5 + 25 (saturated) = 37.5 -> 62.5 rounds to 63
		{[]int{5}, 50, 63},
		// 2.5*5 + 25*0.5 = 25
		{[]int{5}, 500, 75},
		// 2.5 + 25*(10/20) = 15
		{[]int{1}, 100, 85},
		// zero length with a match saturates density
		{[]int{1}, 0, 73},
	}
	for _, tc := range cases {
		got, err := a.Score(tc.weights, tc.words)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "weights=%v words=%d", tc.weights, tc.words)
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	t.Parallel()
	weights := make([]int, 200)
	for i := range weights {
		weights[i] = 5
	}
	s, err := Default().Score(weights, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, s)
}

func TestScoreHugeWeightsSaturate(t *testing.T) {
	t.Parallel()
	a := Default()
	one, err := a.Score([]int{math.MaxInt}, 100)
	require.NoError(t, err)
	two, err := a.Score([]int{math.MaxInt, math.MaxInt}, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, one)
	assert.Equal(t, 0, two)

	mass, err := massOf([]int{math.MaxInt - 1, 5, 3}, 10)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, mass)
}

func TestScoreRejectsNegativeInput(t *testing.T) {
	t.Parallel()
	a := Default()

	_, err := a.Score([]int{1, -1}, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.True(t, model.IsScoringError(err))

	_, err = a.Score([]int{1}, -5)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.True(t, model.IsScoringError(err))
}

// ─── Properties ────────────────────────────────────────────────────────

func randomWeights(r *rand.Rand) []int {
	n := r.Intn(12)
	ws := make([]int, n)
	scale := []int{1, 2, 3, 5}
	for i := range ws {
		ws[i] = scale[r.Intn(len(scale))]
	}
	return ws
}

func TestScoreBounds(t *testing.T) {
	t.Parallel()
	a := Default()
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		ws := randomWeights(r)
		words := r.Intn(5000)
		s, err := a.Score(ws, words)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
}

func TestScoreNonIncreasingInWeight(t *testing.T) {
	t.Parallel()
	a := Default()
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		ws := randomWeights(r)
		words := r.Intn(3000)
		base, err := a.Score(ws, words)
		require.NoError(t, err)

		// Raising one weight.
		if len(ws) > 0 {
			bumped := append([]int(nil), ws...)
			bumped[r.Intn(len(bumped))] += 1 + r.Intn(4)
			s, err := a.Score(bumped, words)
			require.NoError(t, err)
			assert.LessOrEqual(t, s, base, "weights %v -> %v words=%d", ws, bumped, words)
		}

		// Adding a match.
		more := append(append([]int(nil), ws...), 1+r.Intn(5))
		s, err := a.Score(more, words)
		require.NoError(t, err)
		assert.LessOrEqual(t, s, base)
	}
}

func TestScoreNonDecreasingInLength(t *testing.T) {
	t.Parallel()
	a := Default()
	r := rand.New(rand.NewSource(13))
	for i := 0; i < 2000; i++ {
		ws := randomWeights(r)
		words := r.Intn(3000)
		base, err := a.Score(ws, words)
		require.NoError(t, err)
		longer, err := a.Score(ws, words+1+r.Intn(500))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, longer, base, "weights=%v words=%d", ws, words)
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	t.Parallel()
	a := Default()
	s1, err := a.Score([]int{1, 5, 3}, 400)
	require.NoError(t, err)
	s2, err := a.Score([]int{3, 1, 5}, 400)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

// ─── Config ────────────────────────────────────────────────────────────

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()
	_, err := New(Config{MassPenalty: -1, DensityPenaltyMax: 1, DensityCeiling: 1})
	assert.True(t, model.IsScoringError(err))
	_, err = New(Config{MassPenalty: 1, DensityPenaltyMax: 1, DensityCeiling: 0})
	assert.Error(t, err)

	a, err := New(Config{MassPenalty: 0, DensityPenaltyMax: 50, DensityCeiling: 10})
	require.NoError(t, err)
	s, err := a.Score([]int{1}, 1000)
	require.NoError(t, err)
	// density 1 -> factor 0.1 -> penalty 5
	assert.Equal(t, 95, s)
}

func TestDensity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, Density(0, 0))
	assert.Equal(t, 0.0, Density(3, 0))
	assert.InDelta(t, 10.0, Density(5, 500), 1e-9)
}

// ─── Aggregate ─────────────────────────────────────────────────────────

func matchFor(t *testing.T, id string, clause int) model.ClauseMatch {
	t.Helper()
	e, ok := catalog.Lookup(id)
	require.True(t, ok, id)
	return model.ClauseMatch{
		ClauseIndex: clause,
		CategoryID:  e.ID,
		Severity:    e.Severity,
		Weight:      e.Weight(),
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()
	a := Default()
	matches := []model.ClauseMatch{
		matchFor(t, "indemnification", 0),
		matchFor(t, "liability-cap", 0),
		matchFor(t, "jurisdiction", 3),
	}
	sum, err := a.Aggregate(matches, 6, 900)
	require.NoError(t, err)

	assert.Equal(t, 9, sum.Metrics.WeightedMass)
	assert.Equal(t, 2, sum.Metrics.RiskyClauses)
	assert.Equal(t, 6, sum.Metrics.Clauses)
	assert.Equal(t, 1, sum.Metrics.CountsBySeverity[model.SeverityCritical])
	assert.Equal(t, 1, sum.Metrics.CountsBySeverity[model.SeverityHigh])
	assert.Equal(t, 1, sum.Metrics.CountsBySeverity[model.SeverityLow])
	assert.InDelta(t, 10.0, sum.Metrics.Density, 1e-9)

	want, err := a.Score([]int{5, 3, 1}, 900)
	require.NoError(t, err)
	assert.Equal(t, want, sum.Score)
	assert.Equal(t, Grade(want), sum.Grade)
	assert.Equal(t, BandFor(want).Recommendation(), sum.Recommendation)
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()
	sum, err := Default().Aggregate(nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, sum.Score)
	assert.Equal(t, "A+", sum.Grade)
	assert.Equal(t, BandLow, sum.Band)
}

func TestAggregateRejectsForeignWeights(t *testing.T) {
	t.Parallel()
	m := matchFor(t, "jurisdiction", 0)
	m.Weight = 5
	_, err := Default().Aggregate([]model.ClauseMatch{m}, 1, 100)
	assert.True(t, model.IsScoringError(err))

	_, err = Default().Aggregate([]model.ClauseMatch{{CategoryID: "invented", Weight: 2}}, 1, 100)
	assert.True(t, model.IsScoringError(err))

	_, err = Default().Aggregate(nil, 1, -1)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

// ─── Grades ────────────────────────────────────────────────────────────

func TestGradeAndBand(t *testing.T) {
	t.Parallel()
	cases := []struct {
		score int
		grade string
		band  Band
	}{
		{100, "A+", BandLow},
		{90, "A+", BandLow},
		{89, "A", BandLow},
		{80, "A", BandLow},
		{79, "B", BandModerate},
		{60, "C", BandModerate},
		{59, "D", BandHigh},
		{50, "D", BandHigh},
		{49, "F", BandHigh},
		{0, "F", BandHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, Grade(tc.score), "score %d", tc.score)
		assert.Equal(t, tc.band, BandFor(tc.score), "score %d", tc.score)
	}
	assert.Contains(t, BandHigh.Recommendation(), "legal review")
}
