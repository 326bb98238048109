// Package data provides the embedded default catalog, used when no data
// files are configured.
package data

import _ "embed"

// Seed contains the default product and promotion catalog.
//
//go:embed data.json
var Seed []byte
