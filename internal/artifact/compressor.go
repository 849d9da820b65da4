package artifact

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor compresses a file into a zstd frame.
type ZstdCompressor struct {
	level zstd.EncoderLevel
}

// NewZstdCompressor creates a compressor at the given level.
func NewZstdCompressor(level zstd.EncoderLevel) *ZstdCompressor {
	return &ZstdCompressor{level: level}
}

// Compress writes the compressed form of input to output.
func (c *ZstdCompressor) Compress(ctx context.Context, input, output string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", input, err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(c.level))
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to create encoder: %w", err)
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		out.Close()
		return fmt.Errorf("failed to compress %s: %w", input, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to flush encoder: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
