package writer

import (
	"archive/zip"
	"encoding/gob"
	"io"
	"time"

	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/log"
)

const (
	dataFile = "bvh.bin"
)

type zipWriter struct {
	logger log.Logger
}

// Create a new zip BVH writer.
func newZipWriter() *zipWriter {
	return &zipWriter{
		logger: log.New("zip writer"),
	}
}

// Write a gob encoded BVH into a zip archive.
func (w *zipWriter) Write(out io.Writer, b *scene.Bvh) error {
	w.logger.Infof("writing zip archive for build %s", b.BuildID)
	start := time.Now()

	zw := zip.NewWriter(out)
	cw, err := zw.Create(dataFile)
	if err != nil {
		return err
	}

	if err = gob.NewEncoder(cw).Encode(b); err != nil {
		return err
	}
	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Infof("compressed BVH in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
