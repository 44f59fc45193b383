package dsp

// VP8L color transforms (batch versions) from lossless.c.
// These operate on slices of ARGB uint32 pixels.

// AddGreenToBlueAndRed adds the green channel to both the red and blue channels
// for each pixel in the row. This is the inverse of the SubtractGreen transform.
func AddGreenToBlueAndRed(argb []uint32, numPixels int) {
	for i := 0; i < numPixels; i++ {
		p := argb[i]
		green := (p >> 8) & 0xff
		redBlue := (p & 0x00ff00ff) + (green * 0x00010001)
		redBlue &= 0x00ff00ff
		argb[i] = (p & 0xff00ff00) | redBlue
	}
}

// --- BGRA-to-* conversion functions ---
// In WebP lossless, pixels are stored as ARGB uint32 in native byte order:
//   bits [31:24] = A, [23:16] = R, [15:8] = G, [7:0] = B
// The "BGRA" naming in libwebp refers to the internal storage format.

// ConvertBGRAToRGBA converts ARGB uint32 pixels to interleaved RGBA bytes.
func ConvertBGRAToRGBA(src []uint32, numPixels int, dst []byte) {
	for i := 0; i < numPixels; i++ {
		argb := src[i]
		off := i * 4
		dst[off+0] = uint8(argb >> 16) // R
		dst[off+1] = uint8(argb >> 8)  // G
		dst[off+2] = uint8(argb)       // B
		dst[off+3] = uint8(argb >> 24) // A
	}
}

// ConvertBGRAToARGB converts ARGB uint32 pixels to interleaved ARGB bytes.
func ConvertBGRAToARGB(src []uint32, numPixels int, dst []byte) {
	for i := 0; i < numPixels; i++ {
		argb := src[i]
		off := i * 4
		dst[off+0] = uint8(argb >> 24) // A
		dst[off+1] = uint8(argb >> 16) // R
		dst[off+2] = uint8(argb >> 8)  // G
		dst[off+3] = uint8(argb)       // B
	}
}

// ConvertBGRAToRGB converts ARGB uint32 pixels to interleaved RGB bytes.
func ConvertBGRAToRGB(src []uint32, numPixels int, dst []byte) {
	for i := 0; i < numPixels; i++ {
		argb := src[i]
		off := i * 3
		dst[off+0] = uint8(argb >> 16) // R
		dst[off+1] = uint8(argb >> 8)  // G
		dst[off+2] = uint8(argb)       // B
	}
}

// ConvertBGRAToBGR converts ARGB uint32 pixels to interleaved BGR bytes.
func ConvertBGRAToBGR(src []uint32, numPixels int, dst []byte) {
	for i := 0; i < numPixels; i++ {
		argb := src[i]
		off := i * 3
		dst[off+0] = uint8(argb)       // B
		dst[off+1] = uint8(argb >> 8)  // G
		dst[off+2] = uint8(argb >> 16) // R
	}
}
