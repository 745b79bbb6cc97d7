package storage

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path"

	"github.com/rs/zerolog"

	"github.com/arvield/cloudnotes/internal/static"
)

// staticPrefix is where synced assets land inside the bucket, keeping
// them apart from uploaded attachments.
const staticPrefix = "static/"

// CollectStatic syncs the embedded static assets into the bucket.
//
// It runs as part of the migrate job, after schema migrations: the job
// runs the same image that is about to serve traffic, so the assets it
// uploads always match the code. Existing objects are overwritten
// unconditionally; the set is small and diffing would save nothing.
//
// Returns the number of uploaded files.
func CollectStatic(ctx context.Context, store ObjectStore, logger *zerolog.Logger) (int, error) {
	uploaded := 0

	err := fs.WalkDir(static.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		f, err := static.FS().Open(p)
		if err != nil {
			return fmt.Errorf("opening asset %q: %w", p, err)
		}
		defer f.Close()

		contentType := mime.TypeByExtension(path.Ext(p))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := staticPrefix + p
		if err := store.Put(ctx, key, contentType, f); err != nil {
			return err
		}

		logger.Debug().Str("object", key).Msg("uploaded static asset")
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, err
	}

	logger.Info().Int("count", uploaded).Msg("static assets collected")
	return uploaded, nil
}
