// Package tasks populates dashboard install documents with Spotify data.
//
// # Core Operations
//
// [InstallEngine] handles the host's install/configure hook:
//
//  1. Logout (metadata.newValue falsy)
//     - Resets the playlist and artist choice schemas to the single "custom" entry
//     - Points every widget back at "custom"
//     - Makes no upstream calls
//
//  2. Login (metadata.newValue truthy)
//     - Fetches playlists and followed artists concurrently
//     - Builds a locale-sorted [models.ChoiceSchema] for each
//     - Merges both into the install document and defaults widgets to the first real choice
//
// The engine always works on a clone of the caller's document. A failed login returns an
// error result and discards the clone, so a document is never half populated.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate] values. Sends use select with
// default so a slow reader never blocks the request.
package tasks
