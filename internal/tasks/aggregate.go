package tasks

import (
	"fmt"
	"math"

	"github.com/duskriver/plrank/internal/models"
	"github.com/duskriver/plrank/internal/shared"
)

// round2 rounds to two decimal places, half to even.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Average reduces raw per-track feature vectors to their arithmetic mean,
// each descriptor rounded to two decimals.
//
// An empty input returns [shared.ErrNoFeatures]: a playlist with no
// feature-bearing tracks has no average and must be excluded from ranking
// rather than divided by zero. A nil entry returns
// [shared.ErrMissingFeatures]: silently skipping it would skew the mean.
func Average(features []*models.FeatureVector) (models.FeatureVector, error) {
	if len(features) == 0 {
		return models.FeatureVector{}, shared.ErrNoFeatures
	}

	var sum models.FeatureVector
	for i, f := range features {
		if f == nil {
			return models.FeatureVector{}, fmt.Errorf("%w: entry %d", shared.ErrMissingFeatures, i)
		}
		sum.Danceability += f.Danceability
		sum.Energy += f.Energy
		sum.Loudness += f.Loudness
		sum.Speechiness += f.Speechiness
		sum.Acousticness += f.Acousticness
		sum.Instrumentalness += f.Instrumentalness
		sum.Liveness += f.Liveness
		sum.Valence += f.Valence
		sum.Tempo += f.Tempo
	}

	n := float64(len(features))
	return models.FeatureVector{
		Danceability:     round2(sum.Danceability / n),
		Energy:           round2(sum.Energy / n),
		Loudness:         round2(sum.Loudness / n),
		Speechiness:      round2(sum.Speechiness / n),
		Acousticness:     round2(sum.Acousticness / n),
		Instrumentalness: round2(sum.Instrumentalness / n),
		Liveness:         round2(sum.Liveness / n),
		Valence:          round2(sum.Valence / n),
		Tempo:            round2(sum.Tempo / n),
	}, nil
}
