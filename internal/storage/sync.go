package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// PullSnapshots downloads every object under prefix into dir, preserving the
// object's base name. Returns the number of files downloaded.
func PullSnapshots(ctx context.Context, store ObjectStorage, prefix, dir string) (int, error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return 0, err
	}

	downloaded := 0
	for _, obj := range objects {
		name := path.Base(obj.Key)
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		dest := filepath.Join(dir, name)
		if err := store.DownloadObject(ctx, obj.Key, dest); err != nil {
			return downloaded, err
		}
		downloaded++
		log.Debug().Str("key", obj.Key).Str("dest", dest).Msg("pulled snapshot")
	}

	log.Info().Int("files", downloaded).Str("prefix", prefix).Msg("pulled snapshots")
	return downloaded, nil
}

// PublishSnapshots uploads every CSV in dir under prefix. Returns the number
// of files uploaded.
func PublishSnapshots(ctx context.Context, store ObjectStorage, prefix, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	uploaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		key := path.Join(prefix, entry.Name())
		if err := store.UploadObject(ctx, key, filepath.Join(dir, entry.Name())); err != nil {
			return uploaded, err
		}
		uploaded++
		log.Debug().Str("key", key).Msg("published snapshot")
	}

	log.Info().Int("files", uploaded).Str("prefix", prefix).Msg("published snapshots")
	return uploaded, nil
}
