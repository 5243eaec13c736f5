package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cg-saarland/GloBiE/asset/scene"
)

// The Writer interface is implemented by all BVH writers.
type Writer interface {
	// Write a flattened BVH.
	Write(io.Writer, *scene.Bvh) error
}

// Write BVH to a file. The format is selected by the file extension:
// ".bvh" for the zstd packed stream and ".zip" for a gob archive.
func WriteBvh(b *scene.Bvh, filename string) error {
	var writer Writer
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bvh":
		writer = newPackedWriter()
	case ".zip":
		writer = newZipWriter()
	default:
		return fmt.Errorf("writeBvh: unsupported file format %q", filepath.Ext(filename))
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("writeBvh: %w", err)
	}

	if err = writer.Write(f, b); err != nil {
		f.Close()
		return fmt.Errorf("writeBvh: %s: %w", filename, err)
	}
	return f.Close()
}
