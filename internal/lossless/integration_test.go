package lossless

import (
	"testing"
)

// onePixelGreenStream is a complete, hand-assembled 1x1 VP8L bitstream: no
// transforms, no colour cache, and five single-symbol ("simple code")
// Huffman trees so that the lone pixel is resolved entirely by the
// IsTrivialCode fast path in decodeImageData without consuming any bits
// from the image-data section itself. It decodes to a single opaque green
// pixel: green=0x80, red=0x00, blue=0x00, alpha=0xFF.
var onePixelGreenStream = []byte{
	0x2f,                   // signature
	0x00, 0x00, 0x00, 0x00, // width=1, height=1, alpha_is_used=0, version=0
	0x28, 0x60, 0x44, 0xff, 0x03, // transforms=none, no colour cache, 5 trivial trees
}

func TestDecodeVP8L_OnePixelGreen(t *testing.T) {
	img, err := DecodeVP8L(onePixelGreenStream)
	if err != nil {
		t.Fatalf("DecodeVP8L: %v", err)
	}
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Fatalf("got %dx%d, want 1x1", img.Bounds().Dx(), img.Bounds().Dy())
	}
	c := img.NRGBAAt(0, 0)
	if c.R != 0x00 || c.G != 0x80 || c.B != 0x00 || c.A != 0xff {
		t.Fatalf("pixel = %+v, want R=0 G=0x80 B=0 A=0xff", c)
	}
}

func TestGetInfo(t *testing.T) {
	width, height, hasAlpha, err := GetInfo(onePixelGreenStream[:VP8LHeaderSize])
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if width != 1 || height != 1 || hasAlpha {
		t.Fatalf("GetInfo = (%d, %d, %v), want (1, 1, false)", width, height, hasAlpha)
	}
}

func TestGetInfo_BadSignature(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x00}
	if _, _, _, err := GetInfo(data); err != ErrBadSignature {
		t.Fatalf("GetInfo: got %v, want ErrBadSignature", err)
	}
}

func TestGetInfo_TooShort(t *testing.T) {
	if _, _, _, err := GetInfo(onePixelGreenStream[:3]); err != ErrBadSignature {
		t.Fatalf("GetInfo: got %v, want ErrBadSignature", err)
	}
}

func TestCheckSignature(t *testing.T) {
	if !CheckSignature(onePixelGreenStream) {
		t.Error("CheckSignature: want true")
	}
	if CheckSignature([]byte{0x00}) {
		t.Error("CheckSignature: want false for bad magic byte")
	}
	if CheckSignature(nil) {
		t.Error("CheckSignature: want false for empty input")
	}
}

func TestIncrementalDecode_Resume(t *testing.T) {
	dec := NewIncrementalDecoder()
	dec.AppendData(onePixelGreenStream[:7])

	if err := dec.DecodeHeader(); err != ErrSuspended {
		t.Fatalf("DecodeHeader (partial): got %v, want ErrSuspended", err)
	}

	dec.AppendData(onePixelGreenStream[7:])
	if err := dec.DecodeHeader(); err != nil {
		t.Fatalf("DecodeHeader (complete): %v", err)
	}

	var got []uint32
	err := dec.DecodeImage(func(from, to int, pixels []uint32) error {
		got = append(got, pixels...)
		return nil
	})
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if len(got) != 1 || got[0] != 0xff008000 {
		t.Fatalf("pixels = %#x, want [0xff008000]", got)
	}
}

func TestIncrementalDecode_Reset(t *testing.T) {
	dec := NewIncrementalDecoder()
	dec.AppendData(onePixelGreenStream)
	if err := dec.DecodeHeader(); err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	dec.Reset()
	if dec.headerDone {
		t.Error("Reset: headerDone should be false")
	}
	if !dec.Incremental {
		t.Error("Reset: Incremental flag should survive")
	}
}

// bitWriter packs bits LSB-first within each byte, matching the order
// LosslessReader consumes them in, for assembling hand-built VP8L
// bitstreams byte by byte.
type bitWriter struct {
	bytes  []byte
	bitPos int
}

func (w *bitWriter) writeBits(value uint32, n int) {
	for i := 0; i < n; i++ {
		if w.bitPos == 0 {
			w.bytes = append(w.bytes, 0)
		}
		w.bytes[len(w.bytes)-1] |= byte((value>>uint(i))&1) << uint(w.bitPos)
		w.bitPos = (w.bitPos + 1) % 8
	}
}

// buildDistanceOneOverlapStream assembles a 4x1 VP8L stream with no
// transforms and no colour cache: a green+length tree built from a normal
// (RLE) code holding exactly two symbols (0, a literal; 258, a length-3
// backward reference), trivial single-symbol trees for red/blue/alpha, and
// a trivial distance tree whose one symbol resolves to plane code 2 (pixel
// distance 1 at width 4). The image data is a single literal pixel followed
// by a length-3, distance-1 copy, so all four output pixels end up equal.
func buildDistanceOneOverlapStream() []byte {
	w := &bitWriter{}
	w.writeBits(3, 14) // width-1 => width=4
	w.writeBits(0, 14) // height-1 => height=1
	w.writeBits(0, 1)  // alpha_is_used
	w.writeBits(0, 3)  // version
	w.writeBits(0, 1)  // no transforms
	w.writeBits(0, 1)  // no colour cache
	w.writeBits(0, 1)  // no meta Huffman

	// Green+length tree, normal code. The code-length-code alphabet only
	// needs symbols 1 (length 1) and 18 (repeat-zero, 11-138), reached via
	// a 4-entry code-length-code table, and a tight use-length bound of 4
	// iterations covers the whole sparse 280-symbol alphabet without
	// trailing zero-run codes.
	w.writeBits(0, 1) // simple code = false
	w.writeBits(0, 4) // numCodes-4 = 0 -> numCodes = 4
	w.writeBits(0, 3) // CL code 17 length = 0
	w.writeBits(1, 3) // CL code 18 length = 1
	w.writeBits(0, 3) // CL code 0 length = 0
	w.writeBits(1, 3) // CL code 1 length = 1
	w.writeBits(1, 1) // use length = true
	w.writeBits(0, 3) // length_nbits selector = 0 -> 2 bits
	w.writeBits(2, 2) // max_symbol = 2+2 = 4 iterations
	w.writeBits(0, 1) // CL symbol 1 -> codeLengths[0] = 1 (literal)
	w.writeBits(1, 1) // CL symbol 18 (repeat zero)
	w.writeBits(127, 7) // 11+127 = 138 zeros -> covers symbols 1..138
	w.writeBits(1, 1)   // CL symbol 18 again
	w.writeBits(108, 7) // 11+108 = 119 zeros -> covers symbols 139..257
	w.writeBits(0, 1)   // CL symbol 1 -> codeLengths[258] = 1 (length code)

	// Red, blue: trivial single symbol 0.
	for i := 0; i < 2; i++ {
		w.writeBits(1, 1) // simple code
		w.writeBits(0, 1) // one symbol
		w.writeBits(0, 1) // first symbol length code -> 1 bit
		w.writeBits(0, 1) // symbol = 0
	}
	// Alpha: trivial single symbol 255.
	w.writeBits(1, 1)
	w.writeBits(0, 1)
	w.writeBits(1, 1) // first symbol length code -> 8 bits
	w.writeBits(255, 8)
	// Distance: trivial single symbol 1 (plane code 2 -> distance 1 at width 4).
	w.writeBits(1, 1)
	w.writeBits(0, 1)
	w.writeBits(0, 1)
	w.writeBits(1, 1)

	// Image data: literal pixel, then a length-3 copy at distance 1.
	w.writeBits(0, 1) // green symbol 0: literal
	w.writeBits(1, 1) // green symbol 258: length code (length 3, no extra bits)
	w.writeBits(0, 1) // distance symbol 1 (no extra bits)

	return append([]byte{VP8LMagicByte}, w.bytes...)
}

func TestDecodeVP8L_DistanceOneOverlap(t *testing.T) {
	img, err := DecodeVP8L(buildDistanceOneOverlapStream())
	if err != nil {
		t.Fatalf("DecodeVP8L: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 1 {
		t.Fatalf("got %dx%d, want 4x1", img.Bounds().Dx(), img.Bounds().Dy())
	}
	want := img.NRGBAAt(0, 0)
	if want.A != 0xff || want.R != 0 || want.G != 0 || want.B != 0 {
		t.Fatalf("pixel(0,0) = %+v, want opaque black", want)
	}
	for x := 1; x < 4; x++ {
		got := img.NRGBAAt(x, 0)
		if got != want {
			t.Errorf("pixel(%d,0) = %+v, want %+v (copied from pixel 0 at distance 1)", x, got, want)
		}
	}
}

// buildOversubscribedGreenTreeStream assembles a 1x1 VP8L stream whose
// green tree's code-length-code table claims three distinct one-bit codes,
// one more than the two a one-bit code space can hold.
func buildOversubscribedGreenTreeStream() []byte {
	w := &bitWriter{}
	w.writeBits(0, 14) // width-1 => width=1
	w.writeBits(0, 14) // height-1 => height=1
	w.writeBits(0, 1)
	w.writeBits(0, 3)
	w.writeBits(0, 1) // no transforms
	w.writeBits(0, 1) // no colour cache
	w.writeBits(0, 1) // no meta Huffman

	w.writeBits(0, 1) // simple code = false
	w.writeBits(0, 4) // numCodes-4 = 0 -> numCodes = 4
	w.writeBits(1, 3) // CL code 17 length = 1
	w.writeBits(1, 3) // CL code 18 length = 1
	w.writeBits(1, 3) // CL code 0 length = 1
	w.writeBits(0, 3) // CL code 1 length = 0

	return append([]byte{VP8LMagicByte}, w.bytes...)
}

func TestDecodeVP8L_OversubscribedGreenTree(t *testing.T) {
	img, err := DecodeVP8L(buildOversubscribedGreenTreeStream())
	if err == nil {
		t.Fatal("DecodeVP8L: want an error for an over-subscribed Huffman tree, got nil")
	}
	if img != nil {
		t.Errorf("DecodeVP8L: want a nil image alongside the error, got %v", img)
	}
}

// buildColumnLiteralStream assembles a 1xheight VP8L stream whose green
// tree holds two symbols ({0, 1}, only 0 is ever used) so every literal
// pixel spends a real, bit-consuming 1-bit code instead of taking the
// zero-bit trivial-code fast path. splitLen is the byte length of the
// stream once exactly the first 8 image-data bits (one row band, given
// SyncEveryNRows=8) have been written.
func buildColumnLiteralStream(height int) (full []byte, splitLen int) {
	w := &bitWriter{}
	w.writeBits(0, 14)
	w.writeBits(uint32(height-1), 14)
	w.writeBits(0, 1)
	w.writeBits(0, 3)
	w.writeBits(0, 1) // no transforms
	w.writeBits(0, 1) // no colour cache
	w.writeBits(0, 1) // no meta Huffman

	w.writeBits(1, 1) // simple code
	w.writeBits(1, 1) // two symbols
	w.writeBits(0, 1) // first symbol length code -> 1 bit
	w.writeBits(0, 1) // first symbol = 0
	w.writeBits(1, 8) // second symbol = 1 (never used)

	for i := 0; i < 2; i++ { // red, blue: trivial symbol 0
		w.writeBits(1, 1)
		w.writeBits(0, 1)
		w.writeBits(0, 1)
		w.writeBits(0, 1)
	}
	w.writeBits(1, 1) // alpha: trivial symbol 255
	w.writeBits(0, 1)
	w.writeBits(1, 1)
	w.writeBits(255, 8)
	w.writeBits(1, 1) // distance: trivial symbol 0 (never read)
	w.writeBits(0, 1)
	w.writeBits(0, 1)
	w.writeBits(0, 1)

	for i := 0; i < SyncEveryNRows; i++ {
		w.writeBits(0, 1) // literal pixel, green symbol 0
	}
	splitLen = len(w.bytes) + 1 // +1 for the magic byte

	for i := SyncEveryNRows; i < height; i++ {
		w.writeBits(0, 1)
	}

	full = append([]byte{VP8LMagicByte}, w.bytes...)
	return full, splitLen
}

// TestIncrementalDecode_ResumeMidImageData exercises the checkpoint/restore
// path inside decodeImageData itself, not just the header split covered by
// TestIncrementalDecode_Resume: the input runs out partway through the
// second row band, after the first band has already been delivered.
func TestIncrementalDecode_ResumeMidImageData(t *testing.T) {
	height := 2 * SyncEveryNRows
	full, splitLen := buildColumnLiteralStream(height)

	dec := NewIncrementalDecoder()
	dec.AppendData(full[:splitLen])
	if err := dec.DecodeHeader(); err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}

	var got []uint32
	collect := func(from, to int, pixels []uint32) error {
		got = append(got, pixels...)
		return nil
	}

	if err := dec.DecodeImage(collect); err != ErrSuspended {
		t.Fatalf("DecodeImage (first band only): got %v, want ErrSuspended", err)
	}
	if len(got) != SyncEveryNRows {
		t.Fatalf("after first band: got %d pixels, want %d", len(got), SyncEveryNRows)
	}

	dec.AppendData(full[splitLen:])
	if err := dec.DecodeImage(collect); err != nil {
		t.Fatalf("DecodeImage (resumed): %v", err)
	}
	if len(got) != height {
		t.Fatalf("after resume: got %d pixels, want %d", len(got), height)
	}
	for i, p := range got {
		if p != 0xff000000 {
			t.Errorf("pixel %d = %#x, want 0xff000000", i, p)
		}
	}
}
