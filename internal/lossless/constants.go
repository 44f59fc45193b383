package lossless

// Wire-format constants for the VP8L lossless bitstream: signature byte,
// header field widths, Huffman alphabet sizes, and the fixed lookup
// tables the format spec defines for distance-code and length-code
// decoding. None of these are decoder design choices; they are the
// numbers a conforming VP8L reader has no freedom to pick differently.
//
// Reference: libwebp/src/webp/format_constants.h, libwebp/src/dec/vp8l_dec.c.

// Frame header layout.
const (
	VP8LMagicByte     = 0x2f // first byte of a VP8L chunk payload
	VP8LSignatureSize = 1    // signature is the single VP8LMagicByte byte
	VP8LVersionBits   = 3
	VP8LVersion       = 0
	VP8LImageSizeBits = 14
	VP8LHeaderSize    = 5 // 1 signature byte + 4 bytes of packed header fields
)

// Huffman alphabet sizes and tree shape.
const (
	NumLiteralCodes  = 256
	NumLengthCodes   = 24
	NumDistanceCodes = 40
	CodeLengthCodes  = 19

	MaxAllowedCodeLength = 15
	DefaultCodeLength    = 8 // initial "previous length" readHuffmanCodeLengths assumes

	HuffmanTableBits = 8
	HuffmanTableMask = (1 << HuffmanTableBits) - 1

	LengthsTableBits = 7
	LengthsTableMask = (1 << LengthsTableBits) - 1

	HuffmanPackedBits      = 6
	HuffmanPackedTableSize = 1 << HuffmanPackedBits

	HuffmanCodesPerMetaCode = 5 // green+length, red, blue, alpha, distance
)

// Color cache, palette, and transform-chain limits.
const (
	MinCacheBits = 0 // 0 means "no color cache"
	MaxCacheBits = 11

	MaxPaletteSize = 256

	NumTransforms    = 4
	TransformPresent = 1

	MinHuffmanBits = 2
	NumHuffmanBits = 3

	MinTransformBits = 2
	NumTransformBits = 3

	ARGBBlack = 0xff000000
)

// HuffIndex enumerates the 5 Huffman trees bundled into one HTreeGroup.
type HuffIndex int

const (
	HuffGreen HuffIndex = iota
	HuffRed
	HuffBlue
	HuffAlpha
	HuffDist
)

// CodeLengthCodeOrder gives the order code-length codes are transmitted
// in: the two repeat codes and the zero code come first, since sparse
// trees (most literal/distance alphabets) lean on them heavily.
var CodeLengthCodeOrder = [CodeLengthCodes]int{
	17, 18, 0, 1, 2, 3, 4, 5, 16, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// KLiteralMap classifies each of the 5 Huffman trees: 0 marks a
// variable-size alphabet (green+length, distance — the color cache or
// the fixed distance-code count grows these), 1 marks a fixed 256-entry
// byte alphabet (red, blue, alpha).
var KLiteralMap = [HuffmanCodesPerMetaCode]uint8{0, 1, 1, 1, 0}

// kBaseAlphabetSize holds each tree's alphabet size before a color cache
// (green only) is folded in.
var kBaseAlphabetSize = [HuffmanCodesPerMetaCode]int{
	NumLiteralCodes + NumLengthCodes,
	NumLiteralCodes,
	NumLiteralCodes,
	NumLiteralCodes,
	NumDistanceCodes,
}

// AlphabetSize returns the alphabet size of Huffman tree huffIndex given
// the image's declared color-cache size. Only the green tree grows: cache
// codes are multiplexed onto the green+length alphabet, never onto
// red/blue/alpha or distance.
func AlphabetSize(huffIndex HuffIndex, colorCacheBits int) int {
	size := kBaseAlphabetSize[huffIndex]
	if huffIndex == HuffGreen {
		size += 1 << colorCacheBits
	}
	return size
}

// CodeToPlaneCodesCount is the number of entries in CodeToPlane.
const CodeToPlaneCodesCount = 120

// CodeToPlane maps a 1-based distance-code index to a packed
// (yoffset, xoffset) byte: yoffset = value>>4, xoffset = 8-(value&0xf).
// These are the 120 shortest, most common offsets in typical lossless
// images (same row/column or a near diagonal), ordered so that small
// plane codes land on the most frequent offsets.
var CodeToPlane = [CodeToPlaneCodesCount]uint8{
	0x18, 0x07, 0x17, 0x19, 0x28, 0x06, 0x27, 0x29, 0x16, 0x1a,
	0x26, 0x2a, 0x38, 0x05, 0x37, 0x39, 0x15, 0x1b, 0x36, 0x3a,
	0x25, 0x2b, 0x48, 0x04, 0x47, 0x49, 0x14, 0x1c, 0x35, 0x3b,
	0x46, 0x4a, 0x24, 0x2c, 0x58, 0x45, 0x4b, 0x34, 0x3c, 0x03,
	0x57, 0x59, 0x13, 0x1d, 0x56, 0x5a, 0x23, 0x2d, 0x44, 0x4c,
	0x55, 0x5b, 0x33, 0x3d, 0x68, 0x02, 0x67, 0x69, 0x12, 0x1e,
	0x66, 0x6a, 0x22, 0x2e, 0x54, 0x5c, 0x43, 0x4d, 0x65, 0x6b,
	0x32, 0x3e, 0x78, 0x01, 0x77, 0x79, 0x53, 0x5d, 0x11, 0x1f,
	0x64, 0x6c, 0x42, 0x4e, 0x76, 0x7a, 0x21, 0x2f, 0x75, 0x7b,
	0x31, 0x3f, 0x63, 0x6d, 0x52, 0x5e, 0x00, 0x74, 0x7c, 0x41,
	0x4f, 0x10, 0x20, 0x62, 0x6e, 0x30, 0x73, 0x7d, 0x51, 0x5f,
	0x40, 0x72, 0x7e, 0x61, 0x6f, 0x50, 0x71, 0x7f, 0x60, 0x70,
}

// PlaneCodeToDistance turns a decoded distance plane code into an actual
// pixel distance for an image xsize pixels wide. A code above
// CodeToPlaneCodesCount means (code - CodeToPlaneCodesCount) pixels back
// in raster order; codes 1..CodeToPlaneCodesCount resolve through
// CodeToPlane's packed offsets.
func PlaneCodeToDistance(xsize int, planeCode int) int {
	switch {
	case planeCode <= 0:
		return 1
	case planeCode > CodeToPlaneCodesCount:
		return planeCode - CodeToPlaneCodesCount
	}
	packed := CodeToPlane[planeCode-1]
	yoffset := int(packed >> 4)
	xoffset := 8 - int(packed&0xf)
	if dist := yoffset*xsize + xoffset; dist >= 1 {
		return dist
	}
	return 1
}

// log2Floor returns floor(log2(n)) for n > 0.
func log2Floor(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// prefixEncode is the shared core of PrefixEncodeBitsNoLUT and
// PrefixEncodeNoLUT: both express a 1-based distance or length as a
// small prefix code plus some number of literal extra bits, they just
// differ in whether the caller also wants the extra bits' value.
func prefixEncode(distance int) (code, extraBits, extraBitsValue int) {
	distance-- // rebase to 0-based
	if distance < 2 {
		return distance, 0, 0
	}
	hi := log2Floor(distance)
	hi2 := (distance >> (hi - 1)) & 1
	extraBits = hi - 1
	extraBitsValue = distance & ((1 << extraBits) - 1)
	code = 2*hi + hi2
	return code, extraBits, extraBitsValue
}

// PrefixEncodeBitsNoLUT computes the prefix code and extra-bit count for
// a 1-based distance or length value.
func PrefixEncodeBitsNoLUT(distance int) (code int, extraBits int) {
	code, extraBits, _ = prefixEncode(distance)
	return code, extraBits
}

// PrefixEncodeNoLUT is PrefixEncodeBitsNoLUT plus the extra bits' value.
func PrefixEncodeNoLUT(distance int) (code, extraBits, extraBitsValue int) {
	return prefixEncode(distance)
}

// VP8LSubSampleSize returns ceil(size / (1 << samplingBits)), the number
// of sub-sampled tiles/rows/columns covering size pixels at a given
// sub-sampling precision.
func VP8LSubSampleSize(size, samplingBits int) int {
	return (size + (1 << samplingBits) - 1) >> samplingBits
}

// Code-length RLE encoding (code-length-code alphabet symbols 16, 17, 18).
const (
	CodeLengthLiterals   = 16 // literal code-length values occupy symbols 0..15
	CodeLengthRepeatCode = 16 // first of the three repeat symbols
)

// CodeLengthExtraBits gives the extra-bit count for repeat symbols 16, 17, 18.
var CodeLengthExtraBits = [3]uint8{2, 3, 7}

// CodeLengthRepeatOffsets gives the minimum repeat count each symbol adds
// before its extra bits.
var CodeLengthRepeatOffsets = [3]uint8{3, 3, 11}

// FixedTableSize is the worst-case combined table size for the three
// fixed-256-alphabet trees (red, blue, alpha) plus the worst-case
// distance tree: 630*3 + 410.
const FixedTableSize = 630*3 + 410

// KTableSize gives the worst-case total Huffman table memory needed per
// color-cache bit count (index 0..11).
var KTableSize = [12]int{
	FixedTableSize + 654, FixedTableSize + 656, FixedTableSize + 658,
	FixedTableSize + 662, FixedTableSize + 670, FixedTableSize + 686,
	FixedTableSize + 718, FixedTableSize + 782, FixedTableSize + 912,
	FixedTableSize + 1168, FixedTableSize + 1680, FixedTableSize + 2704,
}
