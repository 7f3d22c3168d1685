package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage is an in-memory ObjectStorage for exercising the sync helpers.
type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for key, data := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (f *fakeStorage) DownloadObject(ctx context.Context, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, f.objects[key], 0o644)
}

func (f *fakeStorage) UploadObject(ctx context.Context, key, srcPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func TestPullSnapshots(t *testing.T) {
	store := newFakeStorage()
	store.objects["datasets/sku_daily_sales.csv"] = []byte("date,sku_id\n")
	store.objects["datasets/readme.txt"] = []byte("ignored")

	dir := t.TempDir()
	n, err := PullSnapshots(context.Background(), store, "datasets", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(filepath.Join(dir, "sku_daily_sales.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,sku_id\n", string(data))
}

func TestPublishSnapshots(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_material_risk.csv"), []byte("a,b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip"), 0o644))

	store := newFakeStorage()
	n, err := PublishSnapshots(context.Background(), store, "datasets", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, store.objects, "datasets/raw_material_risk.csv")
}
