package lossless

import "testing"

func TestIs8bOptimizable(t *testing.T) {
	trivial := HTreeGroup{}
	trivial.HTrees[int(HuffRed)] = []HuffmanCode{{Bits: 0, Value: 0}}
	trivial.HTrees[int(HuffBlue)] = []HuffmanCode{{Bits: 0, Value: 0}}
	trivial.HTrees[int(HuffAlpha)] = []HuffmanCode{{Bits: 0, Value: 0}}

	hdr := &metadata{htreeGroups: []HTreeGroup{trivial}}
	if !is8bOptimizable(hdr) {
		t.Error("want true for trivial red/blue/alpha trees and no colour cache")
	}

	hdr.colorCacheSize = 8
	if is8bOptimizable(hdr) {
		t.Error("want false when a colour cache is in use")
	}

	hdr.colorCacheSize = 0
	nonTrivial := trivial
	nonTrivial.HTrees[int(HuffRed)] = []HuffmanCode{{Bits: 3, Value: 1}, {Bits: 2, Value: 0}}
	hdr.htreeGroups = []HTreeGroup{nonTrivial}
	if is8bOptimizable(hdr) {
		t.Error("want false when the red tree has more than one code")
	}
}

func TestCopyBlock8b_NonOverlapping(t *testing.T) {
	data := make([]byte, 10)
	copy(data, []byte{1, 2, 3, 4, 5, 0, 0, 0, 0, 0})
	copyBlock8b(data, 5, 5, 5)
	want := []byte{1, 2, 3, 4, 5, 1, 2, 3, 4, 5}
	if string(data) != string(want) {
		t.Errorf("got %v, want %v", data, want)
	}
}

func TestCopyBlock8b_Overlapping(t *testing.T) {
	// "a" repeated via a distance-1 copy of length 4: classic RLE pattern.
	data := make([]byte, 5)
	data[0] = 'a'
	copyBlock8b(data, 1, 1, 4)
	want := []byte{'a', 'a', 'a', 'a', 'a'}
	if string(data) != string(want) {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestCopyBlock8b_SmallOverlap(t *testing.T) {
	// distance=2, length=5: source and destination overlap partway through.
	data := make([]byte, 7)
	data[0], data[1] = 'x', 'y'
	copyBlock8b(data, 2, 2, 5)
	want := []byte{'x', 'y', 'x', 'y', 'x', 'y', 'x'}
	if string(data) != string(want) {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestColorIndexInverseTransformAlpha_OneByteEach(t *testing.T) {
	palette := []byte{0x10, 0x20, 0x30, 0x40}
	transform := &Transform{Type: ColorIndexingTransform, XSize: 4, Bits: 0}
	src := []byte{3, 1, 0, 2}
	dst := make([]byte, 4)
	colorIndexInverseTransformAlpha(transform, palette, 0, 1, src, dst)
	want := []byte{0x40, 0x20, 0x10, 0x30}
	if string(dst) != string(want) {
		t.Errorf("got %v, want %v", dst, want)
	}
}

func TestColorIndexInverseTransformAlpha_Packed(t *testing.T) {
	// bits=3 packs 8 pixels per byte (1 bit per pixel), palette of 2 colours.
	palette := []byte{0x00, 0xff}
	transform := &Transform{Type: ColorIndexingTransform, XSize: 4, Bits: 3}
	// Packed byte 0b00001010 (LSB first): pixel0=0,pixel1=1,pixel2=0,pixel3=1.
	src := []byte{0b00001010}
	dst := make([]byte, 4)
	colorIndexInverseTransformAlpha(transform, palette, 0, 1, src, dst)
	want := []byte{0x00, 0xff, 0x00, 0xff}
	if string(dst) != string(want) {
		t.Errorf("got %v, want %v", dst, want)
	}
}
