package lossless

// io.go provides the non-destructive header probe (GetInfo/CheckSignature)
// and the output-side descriptors (Colorspace, IODescriptor, OutputBuffer)
// that generalise the decoder's output path beyond a single hardcoded
// NRGBA buffer.
//
// Reference: libwebp/src/dec/vp8l_dec.c (VP8LGetInfo, VP8LCheckSignature).

import (
	"github.com/webpdec/vp8l/internal/bitio"
	"github.com/webpdec/vp8l/internal/dsp"
)

// CheckSignature reports whether data begins with a valid VP8L signature
// byte. It does not validate anything past that byte.
func CheckSignature(data []byte) bool {
	return len(data) >= VP8LSignatureSize && data[0] == VP8LMagicByte
}

// GetInfo reads the 5-byte VP8L header and returns the image dimensions and
// whether the alpha flag is set, without allocating a Decoder or touching
// any Huffman/transform state. It is safe to call on a prefix of the full
// bitstream as long as at least VP8LHeaderSize bytes are present.
func GetInfo(data []byte) (width, height int, hasAlpha bool, err error) {
	if len(data) < VP8LHeaderSize {
		return 0, 0, false, ErrBadSignature
	}
	if data[0] != VP8LMagicByte {
		return 0, 0, false, ErrBadSignature
	}

	br := bitio.NewLosslessReader(data[1:])
	width = int(br.ReadBits(VP8LImageSizeBits)) + 1
	height = int(br.ReadBits(VP8LImageSizeBits)) + 1
	hasAlpha = br.ReadBits(1) != 0
	version := br.ReadBits(VP8LVersionBits)
	if version != VP8LVersion {
		return 0, 0, false, ErrBadVersion
	}
	if br.IsEndOfStream() {
		return 0, 0, false, ErrBitstream
	}
	return width, height, hasAlpha, nil
}

// Colorspace selects the channel order (or planar layout) of a decode's
// output buffer.
type Colorspace int

// Colorspace values, ordered to match the WebP decode API's MODE_* enum.
const (
	ColorspaceBGRA Colorspace = iota
	ColorspaceRGBA
	ColorspaceARGB
	ColorspaceRGB
	ColorspaceBGR
)

// String implements fmt.Stringer.
func (c Colorspace) String() string {
	switch c {
	case ColorspaceBGRA:
		return "BGRA"
	case ColorspaceRGBA:
		return "RGBA"
	case ColorspaceARGB:
		return "ARGB"
	case ColorspaceRGB:
		return "RGB"
	case ColorspaceBGR:
		return "BGR"
	default:
		return "unknown"
	}
}

// IODescriptor carries the crop and scaling parameters a caller wants
// applied to a decode. A zero-value IODescriptor decodes the full image at
// its native size.
type IODescriptor struct {
	Width, Height int

	CropTop, CropLeft, CropBottom, CropRight int

	UseScaling          bool
	ScaledWidth, ScaledHeight int
}

// cropWindow returns the effective crop rectangle, defaulting to the full
// image when no crop has been requested (CropBottom/CropRight left at 0).
func (io *IODescriptor) cropWindow() (top, left, bottom, right int) {
	bottom, right = io.CropBottom, io.CropRight
	if bottom == 0 {
		bottom = io.Height
	}
	if right == 0 {
		right = io.Width
	}
	return io.CropTop, io.CropLeft, bottom, right
}

// OutputBuffer describes a caller-supplied pixel buffer: its colour space,
// backing bytes, and row stride. Pix must be large enough for Colorspace's
// channel count times the descriptor's (scaled) dimensions times Stride
// rows.
type OutputBuffer struct {
	Colorspace Colorspace
	Pix        []byte
	Stride     int
}

// bytesPerPixel returns the channel count for c (3 for RGB/BGR, 4 otherwise).
func (c Colorspace) bytesPerPixel() int {
	switch c {
	case ColorspaceRGB, ColorspaceBGR:
		return 3
	default:
		return 4
	}
}

// WriteRow writes one row of ARGB pixels into buf at row y, converting to
// buf.Colorspace's channel order.
func (buf *OutputBuffer) WriteRow(y int, argb []uint32) {
	stride := buf.Stride
	if stride == 0 {
		stride = len(argb) * buf.Colorspace.bytesPerPixel()
	}
	dst := buf.Pix[y*stride:]
	switch buf.Colorspace {
	case ColorspaceRGBA:
		dsp.ConvertBGRAToRGBA(argb, len(argb), dst)
	case ColorspaceBGRA:
		for i, px := range argb {
			off := i * 4
			dst[off+0] = byte(px)
			dst[off+1] = byte(px >> 8)
			dst[off+2] = byte(px >> 16)
			dst[off+3] = byte(px >> 24)
		}
	case ColorspaceARGB:
		dsp.ConvertBGRAToARGB(argb, len(argb), dst)
	case ColorspaceRGB:
		dsp.ConvertBGRAToRGB(argb, len(argb), dst)
	case ColorspaceBGR:
		dsp.ConvertBGRAToBGR(argb, len(argb), dst)
	}
}

// rescaleRows resamples the cropped window [top,bottom)x[left,right) of
// pixels (row stride rowStride) down or up to io's ScaledWidth x
// ScaledHeight, one dsp.Rescaler per channel, writing each produced row to
// out as it becomes available.
func rescaleRows(pixels []uint32, rowStride, top, left, bottom, right int, io *IODescriptor, out *OutputBuffer) {
	srcWidth := right - left
	srcHeight := bottom - top
	dstWidth := io.ScaledWidth
	dstHeight := io.ScaledHeight

	var rA, rR, rG, rB dsp.Rescaler
	dsp.RescalerInit(&rA, srcWidth, srcHeight, dstWidth, dstHeight)
	dsp.RescalerInit(&rR, srcWidth, srcHeight, dstWidth, dstHeight)
	dsp.RescalerInit(&rG, srcWidth, srcHeight, dstWidth, dstHeight)
	dsp.RescalerInit(&rB, srcWidth, srcHeight, dstWidth, dstHeight)

	srcA := make([]byte, srcWidth)
	srcR := make([]byte, srcWidth)
	srcG := make([]byte, srcWidth)
	srcB := make([]byte, srcWidth)
	dstA := make([]byte, dstWidth)
	dstR := make([]byte, dstWidth)
	dstG := make([]byte, dstWidth)
	dstB := make([]byte, dstWidth)
	dstRow := make([]uint32, dstWidth)

	dstY := 0
	for y := top; y < bottom; y++ {
		row := pixels[y*rowStride+left : y*rowStride+right]
		for x, px := range row {
			srcA[x] = byte(px >> 24)
			srcR[x] = byte(px >> 16)
			srcG[x] = byte(px >> 8)
			srcB[x] = byte(px)
		}
		dsp.RescalerImportRow(&rA, srcA)
		dsp.RescalerImportRow(&rR, srcR)
		dsp.RescalerImportRow(&rG, srcG)
		dsp.RescalerImportRow(&rB, srcB)

		for dsp.RescalerHasDstRow(&rA) {
			dsp.RescalerExportRow(&rA, dstA)
			dsp.RescalerExportRow(&rR, dstR)
			dsp.RescalerExportRow(&rG, dstG)
			dsp.RescalerExportRow(&rB, dstB)
			for x := range dstRow {
				dstRow[x] = uint32(dstA[x])<<24 | uint32(dstR[x])<<16 | uint32(dstG[x])<<8 | uint32(dstB[x])
			}
			out.WriteRow(dstY, dstRow)
			dstY++
		}
	}
}

// DecodeInto decodes a full VP8L bitstream into a caller-supplied
// OutputBuffer, applying io's crop window if set. This is the generalised
// form of DecodeVP8L for callers that need a colour space other than NRGBA
// or want to avoid an image.NRGBA allocation.
func DecodeInto(data []byte, io *IODescriptor, out *OutputBuffer) error {
	dsp.Init()

	dec := acquireDecoder()
	defer releaseDecoder(dec)

	if err := dec.decodeHeader(data); err != nil {
		return err
	}

	const huffSlabSize = 1 << 16
	if cap(dec.huffScratch.tableSlab) < huffSlabSize {
		dec.huffScratch.tableSlab = make([]HuffmanCode, huffSlabSize)
	}
	dec.huffScratch.slabOff = 0

	if err := dec.decodeImageStream(dec.Width, dec.Height, true); err != nil {
		return err
	}

	tw := dec.transformWidth
	if tw == 0 {
		tw = dec.Width
	}
	numPixOrig := dec.Width * dec.Height
	numPixTrans := tw * dec.Height
	numAlloc := numPixOrig
	if numPixTrans > numAlloc {
		numAlloc = numPixTrans
	}
	needed := numAlloc + dec.Width + dec.Width*numArgbCacheRows
	if cap(dec.pixels) >= needed {
		dec.pixels = dec.pixels[:needed]
	} else {
		dec.pixels = make([]uint32, needed)
	}
	dec.argbCache = dec.pixels[numAlloc+dec.Width:]
	if cap(dec.transformBuf) >= numAlloc {
		dec.transformBuf = dec.transformBuf[:numAlloc]
	} else {
		dec.transformBuf = make([]uint32, numAlloc)
	}

	if err := dec.decodeImageData(dec.pixels[:numPixTrans], tw, dec.Height, dec.Height); err != nil {
		return err
	}
	pixels := dec.applyInverseTransforms(dec.pixels[:numPixOrig])

	if io == nil {
		io = &IODescriptor{Width: dec.Width, Height: dec.Height}
	}
	top, left, bottom, right := io.cropWindow()
	if io.UseScaling && io.ScaledWidth > 0 && io.ScaledHeight > 0 &&
		(io.ScaledWidth != right-left || io.ScaledHeight != bottom-top) {
		rescaleRows(pixels, dec.Width, top, left, bottom, right, io, out)
		return nil
	}
	for y := top; y < bottom; y++ {
		row := pixels[y*dec.Width+left : y*dec.Width+right]
		out.WriteRow(y-top, row)
	}
	return nil
}
