// Package weight computes how much of the platform's length budget a status
// text consumes, using the weighted-length rules of the posting service.
package weight

import (
	"regexp"

	"github.com/atomicstack/tweet-popup/internal/draft"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxLength is the platform limit in weighted characters.
	DefaultMaxLength = 280
	// DefaultURLLength is the fixed weight of any link after shortening.
	DefaultURLLength = 23

	scale         = 100
	lightWeight   = 100
	defaultWeight = 200
)

type runeRange struct {
	lo, hi rune
}

// lightRanges weigh one character each; everything else weighs two.
var lightRanges = []runeRange{
	{0x0000, 0x10FF},
	{0x2000, 0x200D},
	{0x2010, 0x201F},
	{0x2032, 0x2037},
}

var urlPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s]+`)

// Weigher converts text into a draft.WeightedStatus.
type Weigher struct {
	MaxLength int
	URLLength int
}

// New returns a Weigher configured with the platform defaults.
func New() Weigher {
	return Weigher{MaxLength: DefaultMaxLength, URLLength: DefaultURLLength}
}

// Weigh returns the weighted status for text, or nil when text is empty.
func (w Weigher) Weigh(text string) *draft.WeightedStatus {
	if text == "" {
		return nil
	}
	return &draft.WeightedStatus{Text: text, Permillage: w.Permillage(text)}
}

// Permillage returns the weighted length of text as parts per thousand of
// the configured maximum.
func (w Weigher) Permillage(text string) int {
	max := w.MaxLength
	if max <= 0 {
		max = DefaultMaxLength
	}
	return w.units(text) * 1000 / (max * scale)
}

// Length returns the weighted length of text in characters, rounded down.
func (w Weigher) Length(text string) int {
	return w.units(text) / scale
}

func (w Weigher) units(text string) int {
	normalized := norm.NFC.String(text)
	urlLen := w.URLLength
	if urlLen <= 0 {
		urlLen = DefaultURLLength
	}
	total := 0
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(normalized, -1) {
		total += segmentUnits(normalized[last:loc[0]])
		total += urlLen * scale
		last = loc[1]
	}
	total += segmentUnits(normalized[last:])
	return total
}

func segmentUnits(text string) int {
	total := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		runes := gr.Runes()
		if isEmojiCluster(runes) {
			total += defaultWeight
			continue
		}
		for _, r := range runes {
			total += runeWeight(r)
		}
	}
	return total
}

func runeWeight(r rune) int {
	for _, rr := range lightRanges {
		if r >= rr.lo && r <= rr.hi {
			return lightWeight
		}
	}
	return defaultWeight
}

// isEmojiCluster reports whether a grapheme cluster is an emoji sequence,
// which is weighed as a single default-weight character.
func isEmojiCluster(runes []rune) bool {
	if len(runes) < 2 {
		return false
	}
	for _, r := range runes {
		switch {
		case r == 0x200D, r == 0xFE0F, r == 0x20E3:
			return true
		case r >= 0x1F1E6 && r <= 0x1F1FF:
			return true
		case r >= 0x1F300:
			return true
		}
	}
	return false
}
