// package models defines the data model for playlist feature ranking
package models

// Playlist is a read-only snapshot of a playlist from the streaming service.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Collaborative bool   `json:"collaborative"`
	Public        bool   `json:"public"`
	TrackCount    int    `json:"track_count"`
	Owner         string `json:"owner"`
}

// TrackRef identifies a track within a playlist's track listing.
//
// ID is empty for locally-uploaded or unavailable tracks; those entries are
// filtered out before any audio-feature lookup.
type TrackRef struct {
	ID string `json:"id"`
}

// FeatureVector holds the nine audio descriptors as named fields.
//
// Keeping the descriptor set closed at the type level means the averaging and
// ranking stages can never disagree on which descriptors exist, and a typo in
// a descriptor name fails to compile instead of failing at runtime.
type FeatureVector struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Loudness         float64 `json:"loudness"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
}

// Descriptors is the fixed, ordered enumeration of audio descriptor names.
//
// Report sections appear in this order.
var Descriptors = []string{
	"danceability",
	"energy",
	"loudness",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
	"tempo",
}

// Value returns the named descriptor's value. Unknown names return 0; callers
// are expected to iterate [Descriptors].
func (f FeatureVector) Value(descriptor string) float64 {
	switch descriptor {
	case "danceability":
		return f.Danceability
	case "energy":
		return f.Energy
	case "loudness":
		return f.Loudness
	case "speechiness":
		return f.Speechiness
	case "acousticness":
		return f.Acousticness
	case "instrumentalness":
		return f.Instrumentalness
	case "liveness":
		return f.Liveness
	case "valence":
		return f.Valence
	case "tempo":
		return f.Tempo
	default:
		return 0
	}
}
