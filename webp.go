// Package webp implements a decoder for the WebP image format's lossless
// (VP8L) variant, registering itself with the standard library's image
// package so that image.Decode can transparently read VP8L .webp files.
package webp

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/webpdec/vp8l/internal/container"
	"github.com/webpdec/vp8l/internal/lossless"
)

func init() {
	image.RegisterFormat("webp", "RIFF????WEBP", Decode, DecodeConfig)
}

// Errors returned by the decoder.
var (
	ErrUnsupported = errors.New("webp: unsupported format")
	ErrNoFrames    = errors.New("webp: no image frames found")
)

// Features describes a WebP file's properties, available without
// decoding pixel data.
type Features struct {
	Width        int
	Height       int
	HasAlpha     bool
	HasAnimation bool
	Format       string // "lossy", "lossless", "extended"
	LoopCount    int    // animation loop count (0 = infinite)
	FrameCount   int    // number of frames (1 for still images)
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a WebP image from r and returns it as an image.Image.
// Only lossless (VP8L) frames are decoded; a lossy or animated file
// returns ErrUnsupported.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("webp: reading data: %w", err)
	}
	return decodeBytes(data)
}

// DecodeConfig returns the color model and dimensions of a WebP image
// without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("webp: reading data: %w", err)
	}

	p, err := container.NewParser(data)
	if err != nil {
		return image.Config{}, fmt.Errorf("webp: parsing container: %w", err)
	}

	feat := p.Features()
	cm := color.NRGBAModel
	if feat.Format == container.FormatVP8 && !feat.HasAlpha {
		cm = color.YCbCrModel
	}

	return image.Config{
		ColorModel: cm,
		Width:      feat.Width,
		Height:     feat.Height,
	}, nil
}

// GetFeatures reads WebP features without decoding pixel data.
func GetFeatures(r io.Reader) (*Features, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("webp: reading data: %w", err)
	}

	p, err := container.NewParser(data)
	if err != nil {
		return nil, fmt.Errorf("webp: parsing container: %w", err)
	}

	feat := p.Features()
	f := &Features{
		Width:        feat.Width,
		Height:       feat.Height,
		HasAlpha:     feat.HasAlpha,
		HasAnimation: feat.HasAnim,
		FrameCount:   len(p.Frames()),
		LoopCount:    feat.LoopCount,
	}

	switch feat.Format {
	case container.FormatVP8:
		f.Format = "lossy"
	case container.FormatVP8L:
		f.Format = "lossless"
	case container.FormatVP8X:
		f.Format = "extended"
	default:
		f.Format = "unknown"
	}

	return f, nil
}

// decodeBytes decodes a complete WebP file from a byte slice.
func decodeBytes(data []byte) (image.Image, error) {
	p, err := container.NewParser(data)
	if err != nil {
		return nil, fmt.Errorf("webp: parsing container: %w", err)
	}

	frames := p.Frames()
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if p.Features().HasAnim {
		return nil, ErrUnsupported
	}

	// Decode the first (and, for a still image, only) frame.
	frame := frames[0]
	if !frame.IsLossless {
		return nil, ErrUnsupported
	}
	return decodeLossless(frame.Payload)
}

// decodeLossless decodes a VP8L lossless bitstream.
func decodeLossless(data []byte) (image.Image, error) {
	img, err := lossless.DecodeVP8L(data)
	if err != nil {
		return nil, fmt.Errorf("webp: lossless decode: %w", err)
	}
	return img, nil
}
