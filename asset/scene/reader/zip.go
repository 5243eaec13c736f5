package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/cg-saarland/GloBiE/asset"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/log"
)

const (
	dataFile = "bvh.bin"
)

type zipReader struct {
	logger log.Logger
}

// Create a new zip BVH reader.
func newZipReader() *zipReader {
	return &zipReader{
		logger: log.New("zip reader"),
	}
}

// Read a gob encoded BVH from a zip archive.
func (p *zipReader) Read(res *asset.Resource) (*scene.Bvh, error) {
	p.logger.Noticef(`loading BVH from "%s"`, res.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := io.ReadAll(res)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zipReader: %w", err)
	}

	var out *scene.Bvh
	for _, f := range zr.File {
		if f.Name != dataFile {
			p.logger.Warningf("unknown file %s in BVH zip file; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		out = &scene.Bvh{}
		err = gob.NewDecoder(rc).Decode(out)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zipReader: failed to load %s: %w", f.Name, err)
		}
	}

	if out == nil {
		return nil, fmt.Errorf("zipReader: missing %s in %s", dataFile, res.Path())
	}

	p.logger.Noticef("loaded BVH in %d ms", time.Since(start).Nanoseconds()/1e6)
	return out, nil
}
