// Package models defines the domain entities for the playlist ranking tool.
//
// The types fall into three groups:
//
// 1. Spotify snapshots, fetched once per run and never mutated:
//   - [Playlist] : playlist metadata including the collaborative flag
//   - [TrackRef] : a track's position in a playlist, possibly without an ID
//
// 2. Audio descriptors:
//   - [FeatureVector] : the nine fixed numeric descriptors as named fields,
//     used both for raw per-track features and per-playlist averages
//   - [Descriptors] : the ordered, closed descriptor enumeration shared by
//     the averaging and ranking stages
//
// 3. [OrderedMap] : a string-keyed map preserving first-insertion order,
// used wherever playlist names must stay in fetch order (ranking ties are
// broken by this order).
package models
