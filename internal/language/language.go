// Package language identifies whether contract text is English, Hindi or
// a mix of both.
package language

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// Tags returned by Detect.
const (
	English = "en"
	Hindi   = "hi"
	Mixed   = "mixed"
)

const (
	minRunes    = 10
	sampleRunes = 500
	hindiRatio  = 0.5
	mixedRatio  = 0.1
)

// Detect classifies text by the share of Devanagari among its letters and
// digits. Above half is Hindi, above a tenth is mixed. Otherwise a
// statistical detector over the first 500 runes decides between Hindi and
// English. Empty or very short text is English.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minRunes {
		return English
	}

	var deva, total int
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			deva++
			total++
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			total++
		}
	}
	if total == 0 {
		return English
	}

	ratio := float64(deva) / float64(total)
	switch {
	case ratio > hindiRatio:
		return Hindi
	case ratio > mixedRatio:
		return Mixed
	}
	if whatlanggo.DetectLang(sample(text)) == whatlanggo.Hin {
		return Hindi
	}
	return English
}

func sample(text string) string {
	n := 0
	for i := range text {
		if n == sampleRunes {
			return text[:i]
		}
		n++
	}
	return text
}

// HasDevanagari reports whether text contains any Devanagari rune.
func HasDevanagari(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool { return unicode.Is(unicode.Devanagari, r) }) >= 0
}

// NeedsTranslation reports whether text tagged lang should be translated
// to English before matching.
func NeedsTranslation(lang string) bool {
	return lang == Hindi || lang == Mixed
}

// DisplayName returns a friendly name for a tag.
func DisplayName(tag string) string {
	switch tag {
	case English:
		return "English"
	case Hindi:
		return "Hindi (हिंदी)"
	case Mixed:
		return "Bilingual (English + Hindi)"
	case "both":
		return "English + Hindi"
	default:
		return "Unknown"
	}
}

// ValidExplanationLanguage reports whether lang is accepted for
// explanations.
func ValidExplanationLanguage(lang string) bool {
	return lang == English || lang == Hindi || lang == "both"
}
