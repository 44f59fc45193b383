package lossless

// alpha.go implements the alpha-plane fast path: a lossy VP8 frame's alpha
// channel is itself a VP8L bitstream, but one with no outer signature or
// width/height header of its own (those come from the ALPH chunk) and,
// because the encoder only ever writes meaningful values into the green
// channel, a common special case where the whole stream reduces to exactly
// one colour-indexing transform with no colour cache. That case can be
// decoded straight into a one-byte-per-pixel buffer instead of full ARGB.
//
// Reference: libwebp/src/dec/vp8l_dec.c (Is8bOptimizable, DecodeAlphaData,
// ExtractPalettedAlphaRows, VP8LDecodeAlphaHeader, VP8LDecodeAlphaImageStream).

import (
	"github.com/webpdec/vp8l/internal/bitio"
	"github.com/webpdec/vp8l/internal/dsp"
)

// AlphaDecoder decodes the VP8L bitstream carrying a lossy frame's alpha
// plane into a caller-supplied byte buffer, one byte per pixel.
type AlphaDecoder struct {
	dec    *Decoder
	width  int
	height int
	tw     int // transform (working) width

	use8b     bool
	palette8b []byte // green byte of each colour-indexing palette entry
	packed    []byte // raw (possibly sub-byte packed) decoded index stream

	output  []byte // caller-owned width*height alpha plane
	lastRow int
}

// DecodeAlphaHeader parses the alpha plane's transform and Huffman header
// and allocates the one-byte-per-pixel output plane, retrieved via Output.
func DecodeAlphaHeader(data []byte, width, height int) (*AlphaDecoder, error) {
	dsp.Init()

	dec := &Decoder{Incremental: true}
	dec.Width = width
	dec.Height = height
	dec.br = bitio.NewLosslessReader(data)

	if err := dec.decodeImageStream(width, height, true); err != nil {
		return nil, err
	}

	tw := dec.transformWidth
	if tw == 0 {
		tw = width
	}

	ad := &AlphaDecoder{dec: dec, width: width, height: height, tw: tw, output: make([]byte, width*height)}

	if dec.nextTransform == 1 && dec.transforms[0].Type == ColorIndexingTransform && is8bOptimizable(&dec.hdr) {
		t := &dec.transforms[0]
		ad.use8b = true
		ad.palette8b = make([]byte, len(t.Data))
		for i, c := range t.Data {
			ad.palette8b[i] = byte(c >> 8)
		}
		ad.packed = make([]byte, tw*height)
		return ad, nil
	}

	numAlloc := width * height
	if tw*height > numAlloc {
		numAlloc = tw * height
	}
	dec.pixels = make([]uint32, numAlloc+width+width*numArgbCacheRows)
	dec.argbCache = dec.pixels[numAlloc+width:]
	dec.transformBuf = make([]uint32, numAlloc)
	return ad, nil
}

// is8bOptimizable reports whether every HTreeGroup's red, blue and alpha
// trees each contain only a single code, and no colour cache is in use —
// the condition under which the red/blue/alpha channels never need to be
// read from the bitstream at all.
func is8bOptimizable(hdr *metadata) bool {
	if hdr.colorCacheSize > 0 {
		return false
	}
	for i := range hdr.htreeGroups {
		g := &hdr.htreeGroups[i]
		if g.HTrees[int(HuffRed)][0].Bits > 0 {
			return false
		}
		if g.HTrees[int(HuffBlue)][0].Bits > 0 {
			return false
		}
		if g.HTrees[int(HuffAlpha)][0].Bits > 0 {
			return false
		}
	}
	return true
}

// Output returns the alpha plane decoded so far, one byte per pixel in
// row-major order. Rows beyond the last lastRow passed to DecodeImageStream
// are not yet valid.
func (ad *AlphaDecoder) Output() []byte {
	return ad.output
}

// DecodeImageStream decodes, and extracts into the output buffer, every row
// up to lastRow. It may be called again with a larger lastRow to extend the
// output. The input is the data given to DecodeAlphaHeader; if it ends
// before row lastRow, the call returns ErrSuspended and extracts no rows.
func (ad *AlphaDecoder) DecodeImageStream(lastRow int) error {
	if lastRow > ad.height {
		lastRow = ad.height
	}
	if ad.lastRow >= lastRow {
		return nil
	}

	if ad.use8b {
		if err := ad.dec.decodeAlphaData8b(ad.packed, ad.tw, ad.height, lastRow); err != nil {
			return err
		}
		colorIndexInverseTransformAlpha(&ad.dec.transforms[0], ad.palette8b, ad.lastRow, lastRow, ad.packed, ad.output)
		ad.lastRow = lastRow
		return nil
	}

	numPixTrans := ad.tw * ad.height
	if err := ad.dec.decodeImageData(ad.dec.pixels[:numPixTrans], ad.tw, ad.height, lastRow); err != nil {
		return err
	}
	band := ad.dec.processBand(ad.lastRow, lastRow)
	dst := ad.output[ad.lastRow*ad.width:]
	for i, argb := range band {
		dst[i] = byte(argb >> 8)
	}
	ad.lastRow = lastRow
	return nil
}

// decodeAlphaData8b is the byte-output counterpart of decodeImageData used
// when is8bOptimizable holds: the red, blue and alpha trees are never
// consulted, and literals/copies operate on single bytes (raw colour-index
// values) rather than packed ARGB words.
func (dec *Decoder) decodeAlphaData8b(data []byte, width, height, lastRow int) error {
	br := dec.br
	hdr := &dec.hdr
	lenCodeLimit := NumLiteralCodes + NumLengthCodes
	mask := hdr.huffmanMask

	pos := dec.incPos
	row := dec.incRow
	col := dec.incCol
	srcLast := width * lastRow

	var brCkpt bitio.LosslessReaderState
	if dec.Incremental {
		brCkpt = br.Checkpoint()
	}

	var htreeGroup *HTreeGroup
	if pos < srcLast {
		htreeGroup = dec.getHTreeGroup(col, row)
	}

	for pos < srcLast {
		if (col & mask) == 0 {
			htreeGroup = dec.getHTreeGroup(col, row)
		}

		br.FillBitWindow()
		prefetch := br.PrefetchBits()
		val, bits := ReadSymbol(htreeGroup.HTrees[int(HuffGreen)], prefetch)
		br.SetBitPos(br.BitPos() + bits)
		code := int(val)

		if br.IsEndOfStream() {
			break
		}

		if code < NumLiteralCodes {
			data[pos] = byte(code)
			pos++
			col++
			if col >= width {
				col = 0
				row++
			}
		} else if code < lenCodeLimit {
			lengthSym := code - NumLiteralCodes
			length := getCopyLength(lengthSym, br)

			br.FillBitWindow()
			distVal, distBits := ReadSymbol(htreeGroup.HTrees[int(HuffDist)], br.PrefetchBits())
			br.SetBitPos(br.BitPos() + distBits)
			distCode := getCopyDistance(int(distVal), br)
			dist := PlaneCodeToDistance(width, distCode)

			if br.IsEndOfStream() {
				break
			}
			if pos < dist || len(data)-pos < length {
				return ErrBitstream
			}
			copyBlock8b(data, pos, dist, length)
			pos += length
			col += length
			for col >= width {
				col -= width
				row++
			}
			if col&mask != 0 {
				htreeGroup = dec.getHTreeGroup(col, row)
			}
		} else {
			return ErrBitstream
		}
	}

	if br.IsEndOfStream() && pos < srcLast {
		if dec.Incremental {
			br.Restore(brCkpt)
			return ErrSuspended
		}
		return ErrBitstream
	}

	dec.incPos, dec.incRow, dec.incCol = pos, row, col
	return nil
}

// copyBlock8b copies length bytes from data[pos-dist:] to data[pos:],
// correctly handling the overlapping case (dist < length) a plain copy()
// would get wrong.
func copyBlock8b(data []byte, pos, dist, length int) {
	src := pos - dist
	if dist >= length {
		copy(data[pos:pos+length], data[src:src+length])
		return
	}
	dst := data[pos : pos+length]
	for i := range dst {
		dst[i] = data[src+i]
	}
}

// colorIndexInverseTransformAlpha is the byte-oriented counterpart of
// colorIndexInverseTransform used for the alpha plane's 8-bit fast path:
// both the packed index stream and the palette are raw bytes rather than
// ARGB words.
func colorIndexInverseTransformAlpha(t *Transform, palette []byte, yStart, yEnd int, src, dst []byte) {
	width := t.XSize
	bitsPerPixel := 8 >> t.Bits

	if bitsPerPixel < 8 {
		pixelsPerByte := 1 << t.Bits
		countMask := pixelsPerByte - 1
		bitMask := byte((1 << bitsPerPixel) - 1)
		srcRowWidth := VP8LSubSampleSize(width, t.Bits)

		srcOff := yStart * srcRowWidth
		dstOff := yStart * width
		for y := yStart; y < yEnd; y++ {
			var packed byte
			for x := 0; x < width; x++ {
				if x&countMask == 0 {
					packed = src[srcOff]
					srcOff++
				}
				idx := packed & bitMask
				if int(idx) < len(palette) {
					dst[dstOff] = palette[idx]
				}
				dstOff++
				packed >>= uint(bitsPerPixel)
			}
		}
		return
	}

	srcOff := yStart * width
	dstOff := yStart * width
	for y := yStart; y < yEnd; y++ {
		for x := 0; x < width; x++ {
			idx := src[srcOff]
			srcOff++
			if int(idx) < len(palette) {
				dst[dstOff] = palette[idx]
			}
			dstOff++
		}
	}
}
