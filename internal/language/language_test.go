package language

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name, text, want string
	}{
		{"empty", "", English},
		{"short", "नमस्ते", English},
		{"symbols only", "!!!??? ... ---", English},
		{"english", "The Client shall indemnify the Company against all claims.", English},
		{"hindi", "ग्राहक कंपनी को किसी भी नुकसान के लिए क्षतिपूर्ति करेगा।", Hindi},
		{"mixed", "The Client shall pay all fees in advance. ग्राहक भुगतान करेगा। This agreement renews every year automatically.", Mixed},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Detect(tc.text), tc.name)
	}
}

func TestDetectMixedThresholds(t *testing.T) {
	t.Parallel()
	// 20 Latin letters + 3 Devanagari letters: ratio ~0.13 -> mixed.
	assert.Equal(t, Mixed, Detect(strings.Repeat("a", 20)+" कखग"))
	// 20 Latin letters + 1 Devanagari letter: ratio ~0.05 -> not mixed.
	assert.NotEqual(t, Mixed, Detect(strings.Repeat("a", 20)+" क"))
}

func TestSample(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("क", 800)
	assert.Equal(t, 500, len([]rune(sample(long))))
	assert.Equal(t, "abc", sample("abc"))
}

func TestHasDevanagari(t *testing.T) {
	t.Parallel()
	assert.True(t, HasDevanagari("fee जुर्माना"))
	assert.False(t, HasDevanagari("fee only"))
}

func TestHelpers(t *testing.T) {
	t.Parallel()
	assert.True(t, NeedsTranslation(Hindi))
	assert.True(t, NeedsTranslation(Mixed))
	assert.False(t, NeedsTranslation(English))
	assert.Equal(t, "Hindi (हिंदी)", DisplayName(Hindi))
	assert.Equal(t, "Unknown", DisplayName("fr"))
	assert.True(t, ValidExplanationLanguage("both"))
	assert.False(t, ValidExplanationLanguage(Mixed))
}
