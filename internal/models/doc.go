// Package models defines the documents exchanged with the dashboard host during widget install.
//
// The package contains two categories of types:
//
// 1. Typed views over caller-owned JSON
//   - [InstallDocument] : the install document, kept as a generic JSON object so unknown fields survive
//   - [InstallRequest] : the POST body wrapping an install document, auth metadata and credentials
//
// 2. Value types built by this service
//   - [ChoiceSchema] : an enumerated list of selectable URIs with display names, always led by "custom"
//   - [Item] : a playlist or followed artist projected from the Spotify Web API
//   - [Result] and [ErrorObject] : the response envelope the host inspects via "proceed"
//
// Choice schemas live at schema.properties.widgets.items.properties.<kind>.properties.URI and every
// widget entry under options.widgets carries the selected key at <kind>.URI.
package models
