package homepage

import "embed"

// EmbeddedAssets contains the default stylesheet served at
// /public/homepage.css. A file of the same name in the static dir is
// shadowed by it.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
