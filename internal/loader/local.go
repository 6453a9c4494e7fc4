package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-schemafields/pkg/schema"
)

// payload is a fetched document body and the encoding its origin declares.
type payload struct {
	data   []byte
	format schema.Format
}

// readLocal serves both file and fs.FS sources. File paths are made absolute
// and read through os.DirFS so both kinds share the size check.
func readLocal(ctx context.Context, files fs.FS, name string, maxBytes int64) (payload, error) {
	if name == "" {
		return payload{}, errors.New("loader: path is required")
	}
	if err := ctx.Err(); err != nil {
		return payload{}, err
	}
	if files == nil {
		abs, err := filepath.Abs(name)
		if err != nil {
			return payload{}, err
		}
		files, name = os.DirFS(filepath.Dir(abs)), filepath.Base(abs)
	}

	if maxBytes > 0 {
		info, err := fs.Stat(files, name)
		if err != nil {
			return payload{}, err
		}
		if info.Size() > maxBytes {
			return payload{}, fmt.Errorf("loader: %s is %d bytes, limit is %d", name, info.Size(), maxBytes)
		}
	}
	data, err := fs.ReadFile(files, name)
	if err != nil {
		return payload{}, err
	}
	return payload{data: data, format: schema.FormatFromPath(name)}, nil
}
