// Package static embeds the site's static assets into the binary.
//
// The same files are served two ways: directly by the web process under
// /static (useful locally and as a fallback), and from the bucket after
// the migrate job syncs them there (storage.CollectStatic).
package static

import (
	"embed"
	"io/fs"
)

//go:embed assets
var assets embed.FS

// FS returns the asset tree rooted at the asset directory itself, so
// callers see "styles.css" rather than "assets/styles.css".
func FS() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		// The subtree is part of the binary; failing to open it is a
		// build defect, not a runtime condition.
		panic(err)
	}
	return sub
}
