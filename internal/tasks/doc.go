// Package tasks implements the collection and aggregation pipeline behind the rank command.
//
// # Core Operations
//
// The [ProfileEngine] exposes the three collection capabilities plus the
// composed pipeline:
//
//  1. [ProfileEngine.ListPlaylists] : drains all of the user's playlists,
//     optionally keeping only collaborative ones, into an ordered name → id
//     mapping (same-named playlists: last one fetched wins).
//
//  2. [ProfileEngine.ListTracks] : drains a playlist's track listing in
//     server order.
//
//  3. [ProfileEngine.FetchFeatures] : filters out track refs without IDs and
//     fetches audio features in batches of services.MaxAudioFeatureIDs.
//
//  4. [ProfileEngine.Run] : the full pipeline, producing an ordered
//     playlist-name → averaged-feature-vector mapping for the reporter.
//
// # Aggregation
//
// [Average] reduces raw per-track feature vectors to a single mean vector,
// rounded to two decimals with round-half-to-even. An empty input or a nil
// entry (a track the service had no features for) is an error; the engine
// turns those into per-playlist skips with a diagnostic instead of letting a
// NaN or a skewed average reach the report.
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values on an optional channel using
// non-blocking sends. A nil channel disables reporting.
package tasks
