package lossless

import (
	"image"
	"testing"

	"github.com/webpdec/vp8l/internal/bitio"
)

func TestDecodeHeader_Valid(t *testing.T) {
	// width=1, height=1, alpha=0, version=0
	data := []byte{0x2f, 0x00, 0x00, 0x00, 0x00}
	dec := &Decoder{}
	err := dec.decodeHeader(data)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if dec.Width != 1 || dec.Height != 1 {
		t.Errorf("got %dx%d, want 1x1", dec.Width, dec.Height)
	}
	if dec.HasAlpha {
		t.Error("HasAlpha should be false")
	}
}

func TestDecodeHeader_LargerSize(t *testing.T) {
	// width=100, height=50, alpha=1, version=0
	// val32 = 99 | (49 << 14) | (1 << 28) = 0x100C4063, LE bytes: 0x63,0x40,0x0C,0x10
	data := []byte{0x2f, 0x63, 0x40, 0x0C, 0x10}
	dec := &Decoder{}
	err := dec.decodeHeader(data)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if dec.Width != 100 {
		t.Errorf("Width = %d, want 100", dec.Width)
	}
	if dec.Height != 50 {
		t.Errorf("Height = %d, want 50", dec.Height)
	}
	if !dec.HasAlpha {
		t.Error("HasAlpha should be true")
	}
}

func TestDecodeHeader_BadSignature(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x00}
	dec := &Decoder{}
	if err := dec.decodeHeader(data); err != ErrBadSignature {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestDecodeHeader_TooShort(t *testing.T) {
	data := []byte{0x2f, 0x00}
	dec := &Decoder{}
	if err := dec.decodeHeader(data); err != ErrBadSignature {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestArgbToNRGBA(t *testing.T) {
	pixels := []uint32{
		0xffff0000, // opaque red
		0xff00ff00, // opaque green
		0xff0000ff, // opaque blue
		0x80402010, // semi-transparent
	}
	img := argbToNRGBA(pixels, 2, 2)

	tests := []struct {
		x, y       int
		r, g, b, a uint8
	}{
		{0, 0, 0xff, 0x00, 0x00, 0xff},
		{1, 0, 0x00, 0xff, 0x00, 0xff},
		{0, 1, 0x00, 0x00, 0xff, 0xff},
		{1, 1, 0x40, 0x20, 0x10, 0x80},
	}
	for _, tc := range tests {
		c := img.NRGBAAt(tc.x, tc.y)
		if c.R != tc.r || c.G != tc.g || c.B != tc.b || c.A != tc.a {
			t.Errorf("pixel(%d,%d) = (%d,%d,%d,%d), want (%d,%d,%d,%d)",
				tc.x, tc.y, c.R, c.G, c.B, c.A, tc.r, tc.g, tc.b, tc.a)
		}
	}
}

func TestNRGBAToARGB_Roundtrip(t *testing.T) {
	pixels := []uint32{0xff112233, 0x80aabbcc}
	img := argbToNRGBA(pixels, 2, 1)
	got := NRGBAToARGB(img)
	for i, want := range pixels {
		if got[i] != want {
			t.Errorf("pixel %d: got 0x%08x, want 0x%08x", i, got[i], want)
		}
	}
}

func TestAddGreenToBlueAndRed(t *testing.T) {
	src := []uint32{0xff102030}
	dst := make([]uint32, 1)
	addGreenToBlueAndRed(src, 1, dst)

	expected := uint32(0xff302050)
	if dst[0] != expected {
		t.Errorf("addGreenToBlueAndRed: got 0x%08x, want 0x%08x", dst[0], expected)
	}
}

func TestAddGreenToBlueAndRed_Overflow(t *testing.T) {
	src := []uint32{0xffC080D0}
	dst := make([]uint32, 1)
	addGreenToBlueAndRed(src, 1, dst)

	expected := uint32(0xff408050)
	if dst[0] != expected {
		t.Errorf("addGreenToBlueAndRed overflow: got 0x%08x, want 0x%08x", dst[0], expected)
	}
}

func TestClampedAddSubtractFull(t *testing.T) {
	a := uint32(0xc8c8c8c8)
	b := uint32(0xb4b4b4b4)
	c := uint32(0x64646464)
	result := clampedAddSubtractFull(a, b, c)
	expected := uint32(0xffffffff) // 200+180-100=280 -> clamped to 255 per channel
	if result != expected {
		t.Errorf("clampedAddSubtractFull: got 0x%08x, want 0x%08x", result, expected)
	}
}

func TestClampedAddSubtractFull_Underflow(t *testing.T) {
	a := uint32(0x0a0a0a0a)
	b := uint32(0x0a0a0a0a)
	c := uint32(0xc8c8c8c8)
	result := clampedAddSubtractFull(a, b, c)
	expected := uint32(0x00000000) // 10+10-200=-180 -> clamped to 0
	if result != expected {
		t.Errorf("clampedAddSubtractFull underflow: got 0x%08x, want 0x%08x", result, expected)
	}
}

func TestSelectPredictor(t *testing.T) {
	top := uint32(0xff808080)
	left := uint32(0xff000000)
	topLeft := uint32(0xff808080)
	// |top-topLeft|=0, |left-topLeft|=128 per channel => select top.
	result := selectPredictor(left, top, topLeft)
	if result != top {
		t.Errorf("selectPredictor: got 0x%08x, want 0x%08x (top)", result, top)
	}
}

func TestAverage2(t *testing.T) {
	a := uint32(0xff000000)
	b := uint32(0x01000000)
	result := average2(a, b)
	expected := uint32(0x80000000) // (255+1)/2 = 128
	if result != expected {
		t.Errorf("average2: got 0x%08x, want 0x%08x", result, expected)
	}
}

func TestAddPixels(t *testing.T) {
	a := uint32(0x10203040)
	b := uint32(0x01020304)
	result := addPixels(a, b)
	expected := uint32(0x11223344)
	if result != expected {
		t.Errorf("addPixels: got 0x%08x, want 0x%08x", result, expected)
	}
}

func TestColorIndexInverseTransform_FourColour(t *testing.T) {
	// 4-colour palette, bits=2 => 4 pixels per byte, 2 bits each.
	palette := []uint32{0xff000000, 0xff0000ff, 0xff00ff00, 0xffff0000}
	transform := Transform{
		Type:  ColorIndexingTransform,
		Bits:  2,
		XSize: 4,
		YSize: 1,
		Data:  palette,
	}

	// Indices 0,1,2,3 packed as 2 bits each: 0b11_10_01_00 = 0xe4, stored
	// in the green channel of the packed source word.
	src := []uint32{0x0000e400}
	dst := make([]uint32, 4)

	colorIndexInverseTransform(&transform, 0, 1, src, dst)

	expected := []uint32{0xff000000, 0xff0000ff, 0xff00ff00, 0xffff0000}
	for i := range expected {
		if dst[i] != expected[i] {
			t.Errorf("colorIndexInverse[%d]: got 0x%08x, want 0x%08x", i, dst[i], expected[i])
		}
	}
}

func TestColorIndexInverseTransform_TwoColourSubByte(t *testing.T) {
	// 2-colour palette, bits=3 => 8 pixels per byte, 1 bit each: the
	// tightest sub-byte packing the colour-indexing transform produces.
	palette := []uint32{0xff111111, 0xff222222}
	transform := Transform{
		Type:  ColorIndexingTransform,
		Bits:  3,
		XSize: 8,
		YSize: 1,
		Data:  palette,
	}

	// Indices 0,1,0,1,1,0,1,0 packed LSB-first into one byte: 0x5a, stored
	// in the green channel of the packed source word.
	src := []uint32{0x00005a00}
	dst := make([]uint32, 8)

	colorIndexInverseTransform(&transform, 0, 1, src, dst)

	expected := []uint32{
		palette[0], palette[1], palette[0], palette[1],
		palette[1], palette[0], palette[1], palette[0],
	}
	for i := range expected {
		if dst[i] != expected[i] {
			t.Errorf("colorIndexInverse[%d]: got 0x%08x, want 0x%08x", i, dst[i], expected[i])
		}
	}
}

func TestTransformColorInverse(t *testing.T) {
	m := colorMultipliers{greenToRed: 0, greenToBlue: 0, redToBlue: 0}
	argb := uint32(0xff804020)
	result := transformColorInverse(m, argb)
	if result != argb {
		t.Errorf("transformColorInverse (zero multipliers): got 0x%08x, want 0x%08x", result, argb)
	}
}

func TestExpandColorMap(t *testing.T) {
	// 2-colour palette, bits=3 => finalNumColors = 1<<(8>>3) = 2
	palette := []uint32{0xff010203, 0x00040506}
	result := expandColorMap(2, 3, palette)

	if len(result) != 2 {
		t.Fatalf("expandColorMap: len = %d, want 2", len(result))
	}
	if result[0] != 0xff010203 {
		t.Errorf("result[0] = 0x%08x, want 0xff010203", result[0])
	}
	// Delta-decoded per byte against result[0].
	expected1 := uint32(0xff050709)
	if result[1] != expected1 {
		t.Errorf("result[1] = 0x%08x, want 0x%08x", result[1], expected1)
	}
}

func TestCopyBlock32(t *testing.T) {
	data := make([]uint32, 10)
	data[0] = 0xAAAAAAAA
	data[1] = 0xBBBBBBBB
	data[2] = 0xCCCCCCCC

	copyBlock32(data, 3, 3, 3)
	if data[3] != 0xAAAAAAAA || data[4] != 0xBBBBBBBB || data[5] != 0xCCCCCCCC {
		t.Errorf("copyBlock32: got [0x%08x, 0x%08x, 0x%08x]", data[3], data[4], data[5])
	}
}

func TestCopyBlock32_Overlap(t *testing.T) {
	data := make([]uint32, 6)
	data[0] = 0x11111111

	// dist=1, length=5: must repeat data[0] five times, not bulk-copy.
	copyBlock32(data, 1, 1, 5)
	for i := 1; i <= 5; i++ {
		if data[i] != 0x11111111 {
			t.Errorf("copyBlock32 overlap: data[%d] = 0x%08x, want 0x11111111", i, data[i])
		}
	}
}

func TestGetCopyDistance(t *testing.T) {
	br := bitio.NewLosslessReader([]byte{0x00, 0x00, 0x00, 0x00})

	// distanceSymbol < 4 => distance = symbol + 1, no bits consumed.
	if d := getCopyDistance(0, br); d != 1 {
		t.Errorf("getCopyDistance(0) = %d, want 1", d)
	}
	if d := getCopyDistance(3, br); d != 4 {
		t.Errorf("getCopyDistance(3) = %d, want 4", d)
	}
}

func TestGetCopyDistance_ExtraBits(t *testing.T) {
	// distanceSymbol=4: extraBits=(4-2)>>1=1, offset=(2+0)<<1=4.
	// With extra bit = 1, distance = 4+1+1 = 6.
	br := bitio.NewLosslessReader([]byte{0x01, 0x00, 0x00, 0x00})
	if d := getCopyDistance(4, br); d != 6 {
		t.Errorf("getCopyDistance(4) = %d, want 6", d)
	}
}

func TestPlaneCodeToDistance(t *testing.T) {
	// planeCode > 120 => simple subtraction.
	if d := PlaneCodeToDistance(100, 121); d != 1 {
		t.Errorf("PlaneCodeToDistance(100, 121) = %d, want 1", d)
	}

	// planeCode=1 => kCodeToPlane[0]=0x18 => yoffset=1, xoffset=0 => dist=1*100+0=100.
	if d := PlaneCodeToDistance(100, 1); d != 100 {
		t.Errorf("PlaneCodeToDistance(100, 1) = %d, want 100", d)
	}

	// planeCode=2 => kCodeToPlane[1]=0x07 => yoffset=0, xoffset=1 => dist=1,
	// the same-row immediately-preceding-pixel case scenario 4 relies on.
	if d := PlaneCodeToDistance(4, 2); d != 1 {
		t.Errorf("PlaneCodeToDistance(4, 2) = %d, want 1", d)
	}
}

func TestARGBToNRGBAImage(t *testing.T) {
	pixels := []uint32{0xffff0000, 0xff00ff00}
	img := ARGBToNRGBA(pixels, 2, 1)
	if img.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Errorf("bounds = %v, want (0,0)-(2,1)", img.Bounds())
	}
}
