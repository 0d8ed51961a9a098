package trace

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/stance-ik/internal/network/packets"
)

// ExportJSONLZstd writes a run as zstd-compressed JSON lines, one frame per
// line, and returns the number of frames written.
func (s *Store) ExportJSONLZstd(ctx context.Context, runID int64, w io.Writer) (int, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(enc)
	je := json.NewEncoder(bw)

	n := 0
	err = s.Frames(ctx, runID, func(f packets.Frame) error {
		n++
		return je.Encode(f)
	})
	if err != nil {
		_ = enc.Close()
		return n, fmt.Errorf("export run %d: %w", runID, err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return n, err
	}
	return n, enc.Close()
}

// ReadJSONLZstd decodes an export produced by ExportJSONLZstd.
func ReadJSONLZstd(r io.Reader, fn func(packets.Frame) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()

	jd := json.NewDecoder(dec)
	for {
		var f packets.Frame
		if err := jd.Decode(&f); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
}
