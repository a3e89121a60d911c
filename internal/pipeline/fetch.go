package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zeebo/xxh3"

	"reportetl/internal/docstore"
)

// download describes a report file copied to local disk.
type download struct {
	Path        string
	Size        int64
	Fingerprint string // xxh3-64, hex
}

// fetchFile copies folder/name from store into dir. The content is written
// to a temporary file first and renamed into place, so a partial download
// never appears under the final name.
func fetchFile(ctx context.Context, store docstore.Store, folder, name, dir string) (download, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return download{}, fmt.Errorf("create download dir: %w", err)
	}

	rc, err := store.Open(ctx, folder, name)
	if err != nil {
		return download{}, fmt.Errorf("open %s/%s: %w", folder, name, err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.part")
	if err != nil {
		return download{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmpName)
		}
	}()

	h := xxh3.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), rc)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return download{}, fmt.Errorf("download %s: %w", name, err)
	}
	if n == 0 {
		return download{}, errors.New("download " + name + ": empty file")
	}

	dst := filepath.Join(dir, filepath.Base(name))
	if err := os.Rename(tmpName, dst); err != nil {
		return download{}, fmt.Errorf("move download into place: %w", err)
	}
	ok = true
	return download{
		Path:        dst,
		Size:        n,
		Fingerprint: strconv.FormatUint(h.Sum64(), 16),
	}, nil
}
