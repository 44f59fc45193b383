// Package webp implements a decoder for the lossless (VP8L) WebP image
// format, plus the RIFF container walk needed to find a VP8L payload
// inside a .webp file.
//
// Lossy (VP8) frames are recognised and reported by GetFeatures but are
// not decoded to pixels: decoding a lossy or animated file returns
// ErrUnsupported. Encoding, animation, and ICC/EXIF/XMP metadata are out
// of scope.
//
// Basic usage:
//
//	img, err := webp.Decode(reader)
package webp
