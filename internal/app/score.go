package app

import (
	"strings"
	"unicode/utf8"

	"reviewking/internal/domain"
)

// ScoreConfig carries the heuristic thresholds and lexicons behind
// quality and sentiment scoring. DefaultScoreConfig reproduces
// production behavior; tests may override individual knobs.
type ScoreConfig struct {
	LongTextLen   int
	MediumTextLen int
	ShortTextLen  int

	QualityWords  []string
	PositiveWords []string
	NegativeWords []string
}

func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		LongTextLen:   150,
		MediumTextLen: 80,
		ShortTextLen:  40,
		QualityWords:  []string{"quality", "perfect", "excellent", "amazing", "love", "recommend"},
		PositiveWords: []string{"good", "great", "excellent", "love", "perfect", "happy", "amazing"},
		NegativeWords: []string{"bad", "poor", "terrible", "awful", "disappointed"},
	}
}

// Reviews scoring at or above this are surfaced as AI recommended.
const recommendThreshold = 8

// Quality computes the additive 0-10 usefulness score for one review.
//
// The rating bonus compares the raw value against 4 and 5, which is the
// sample platforms' 1-5 scale; aliexpress ratings arrive on 0-100 and
// always clear both thresholds. Kept as-is pending product clarification.
func (c ScoreConfig) Quality(r domain.Review) int {
	score := 0

	// Length tiers count characters, not bytes; non-ASCII text must not
	// jump tiers.
	switch n := utf8.RuneCountInString(r.Text); {
	case n > c.LongTextLen:
		score += 3
	case n > c.MediumTextLen:
		score += 2
	case n > c.ShortTextLen:
		score++
	}

	switch {
	case len(r.Images) >= 2:
		score += 2
	case len(r.Images) >= 1:
		score++
	}

	switch {
	case r.Rating >= 5:
		score += 2
	case r.Rating >= 4:
		score++
	}

	if r.Verified {
		score++
	}

	low := strings.ToLower(r.Text)
	matches := 0
	for _, w := range c.QualityWords {
		if strings.Contains(low, w) {
			matches++
		}
	}
	switch {
	case matches >= 2:
		score += 2
	case matches == 1:
		score++
	}

	if score > 10 {
		score = 10
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Sentiment maps review text onto [0,1]: 1.0 for all-positive lexicon
// hits, 0.0 for all-negative, 0.5 when balanced or no hits at all.
func (c ScoreConfig) Sentiment(text string) float64 {
	low := strings.ToLower(text)
	var pos, neg int
	for _, w := range c.PositiveWords {
		if strings.Contains(low, w) {
			pos++
		}
	}
	for _, w := range c.NegativeWords {
		if strings.Contains(low, w) {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0.5
	}
	return float64(pos-neg+total) / float64(2*total)
}

// ScoreAll assigns the three score fields in place. Each review is
// scored exactly once, right after extraction.
func (c ScoreConfig) ScoreAll(reviews []domain.Review) {
	for i := range reviews {
		q := c.Quality(reviews[i])
		reviews[i].QualityScore = q
		reviews[i].AIRecommended = q >= recommendThreshold
		reviews[i].SentimentScore = c.Sentiment(reviews[i].Text)
	}
}
