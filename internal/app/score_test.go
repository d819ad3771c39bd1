package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"reviewking/internal/domain"
)

func TestQualityAdditiveComponents(t *testing.T) {
	cfg := DefaultScoreConfig()

	cases := []struct {
		name   string
		review domain.Review
		want   int
	}{
		{
			name:   "empty review scores zero",
			review: domain.Review{},
			want:   0,
		},
		{
			name: "long verified photo review with two lexicon hits",
			review: domain.Review{
				Text:     strings.Repeat("x", 151) + " perfect quality",
				Images:   []string{"a", "b"},
				Rating:   5,
				Verified: true,
			},
			want: 10, // 3 text + 2 images + 2 rating + 1 verified + 2 lexicon
		},
		{
			name: "medium text, single image, single lexicon hit",
			review: domain.Review{
				Text:   strings.Repeat("y", 78) + " love it", // 86 chars
				Images: []string{"a"},
				Rating: 4,
			},
			want: 5, // 2 text + 1 image + 1 rating + 1 lexicon
		},
		{
			name: "short text only",
			review: domain.Review{
				Text: strings.Repeat("z", 45),
			},
			want: 1,
		},
		{
			name: "non-ascii text is measured in characters, not bytes",
			review: domain.Review{
				// 60 characters, 120 bytes: stays in the >40 tier.
				Text: strings.Repeat("я", 60),
			},
			want: 1,
		},
		{
			name: "aliexpress scale rating always clears both rating bonuses",
			review: domain.Review{
				Rating: 40,
			},
			want: 2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, cfg.Quality(tc.review))
		})
	}
}

func TestQualityClampedToTen(t *testing.T) {
	cfg := DefaultScoreConfig()
	r := domain.Review{
		Text:     strings.Repeat("amazing perfect excellent quality love recommend ", 10),
		Images:   []string{"a", "b", "c"},
		Rating:   100,
		Verified: true,
	}
	require.Equal(t, 10, cfg.Quality(r))
}

func TestSentiment(t *testing.T) {
	cfg := DefaultScoreConfig()

	require.Equal(t, 0.5, cfg.Sentiment("neutral description of the item"))
	require.Equal(t, 1.0, cfg.Sentiment("good great perfect"))
	require.Equal(t, 0.0, cfg.Sentiment("bad terrible awful"))

	// one positive, one negative hit balance out
	require.Equal(t, 0.5, cfg.Sentiment("good but disappointed"))

	// two positive, one negative
	require.InDelta(t, 2.0/3.0, cfg.Sentiment("great and amazing but poor packaging"), 1e-9)
}

func TestScoreAll(t *testing.T) {
	cfg := DefaultScoreConfig()
	reviews := []domain.Review{
		{Text: strings.Repeat("x", 151) + " perfect quality", Images: []string{"a", "b"}, Rating: 5, Verified: true},
		{Text: "meh"},
	}
	cfg.ScoreAll(reviews)

	require.Equal(t, 10, reviews[0].QualityScore)
	require.True(t, reviews[0].AIRecommended)
	require.NotZero(t, reviews[0].SentimentScore)

	require.Equal(t, 0, reviews[1].QualityScore)
	require.False(t, reviews[1].AIRecommended)
	require.Equal(t, 0.5, reviews[1].SentimentScore)
}

func TestRecommendationThreshold(t *testing.T) {
	cfg := DefaultScoreConfig()

	// 3 text + 2 images + 2 rating + 1 verified = 8, no lexicon hits
	atThreshold := []domain.Review{{
		Text:     strings.Repeat("x", 151),
		Images:   []string{"a", "b"},
		Rating:   5,
		Verified: true,
	}}
	cfg.ScoreAll(atThreshold)
	require.Equal(t, 8, atThreshold[0].QualityScore)
	require.True(t, atThreshold[0].AIRecommended)

	below := []domain.Review{{
		Text:   strings.Repeat("x", 151),
		Images: []string{"a", "b"},
		Rating: 5,
	}}
	cfg.ScoreAll(below)
	require.Equal(t, 7, below[0].QualityScore)
	require.False(t, below[0].AIRecommended)
}
