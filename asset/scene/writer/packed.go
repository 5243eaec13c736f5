package writer

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/log"
	"github.com/cg-saarland/GloBiE/numeric"
	"github.com/klauspost/compress/zstd"
)

type packedWriter struct {
	logger log.Logger
}

// Create a new packed BVH writer.
func newPackedWriter() *packedWriter {
	return &packedWriter{
		logger: log.New("packed writer"),
	}
}

// Write the BVH as a header followed by the zstd compressed node and leaf
// arrays.
func (w *packedWriter) Write(out io.Writer, b *scene.Bvh) error {
	start := time.Now()

	var body bytes.Buffer
	if err := binary.Write(&body, binary.LittleEndian, b.Nodes); err != nil {
		return err
	}
	if err := binary.Write(&body, binary.LittleEndian, b.Leaves); err != nil {
		return err
	}

	hdr := scene.NewPackedHeader(
		b.BuildID,
		numeric.MustCast[uint32](len(b.Nodes)),
		numeric.MustCast[uint32](len(b.Leaves)),
		xxhash.Sum64(body.Bytes()),
	)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	if err != nil {
		return err
	}
	defer enc.Close()
	compressed := enc.EncodeAll(body.Bytes(), nil)

	if err = binary.Write(out, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	if _, err = out.Write(compressed); err != nil {
		return err
	}

	w.logger.Infof("packed %d bytes into %d bytes in %d ms", body.Len(), len(compressed), time.Since(start).Nanoseconds()/1e6)
	return nil
}
