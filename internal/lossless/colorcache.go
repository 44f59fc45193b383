package lossless

// ColorCache is the VP8L color cache: a small hash-addressed table that
// lets the bitstream refer to a recently-seen ARGB pixel by a short cache
// code instead of re-emitting it through the literal/backward-reference
// Huffman trees. The hash is a single multiply-and-shift, chosen in the
// original format for speed rather than for collision resistance, so a
// cache slot holds whichever color last hashed there and nothing more.
//
// Reference: libwebp/src/utils/color_cache_utils.h + .c
type ColorCache struct {
	HashBits  int
	HashShift int
	Colors    []uint32
}

// colorCacheHashMul is the multiplicative hash constant the bitstream
// format fixes for every color cache, regardless of its declared size.
const colorCacheHashMul = 0x1e35a7bd

// NewColorCache allocates a fresh ColorCache with 2^hashBits entries.
// hashBits must be in [1, MaxCacheBits].
func NewColorCache(hashBits int) *ColorCache {
	return ReuseColorCache(nil, hashBits)
}

// ReuseColorCache returns a cleared ColorCache sized for hashBits,
// reusing existing's backing array when it already has enough capacity
// rather than allocating a new one.
func ReuseColorCache(existing *ColorCache, hashBits int) *ColorCache {
	size := 1 << hashBits
	cc := existing
	if cc == nil || cap(cc.Colors) < size {
		cc = &ColorCache{Colors: make([]uint32, size)}
	} else {
		cc.Colors = cc.Colors[:size]
	}
	cc.HashBits = hashBits
	cc.HashShift = 32 - hashBits
	cc.Reset()
	return cc
}

// HashPix maps an ARGB value to its cache slot.
func (c *ColorCache) HashPix(argb uint32) int {
	return int((argb * colorCacheHashMul) >> uint(c.HashShift))
}

// Contains reports whether argb currently occupies its hashed slot,
// returning that slot as key when it does.
func (c *ColorCache) Contains(argb uint32) (key int, ok bool) {
	key = c.HashPix(argb)
	return key, c.Colors[key] == argb
}

// Lookup returns whatever color currently occupies slot key, without
// checking that it matches anything in particular; callers that already
// know the bitstream asked for this key use this directly.
func (c *ColorCache) Lookup(key int) uint32 {
	return c.Colors[key]
}

// Insert stores argb at its hashed slot, evicting whatever was there.
func (c *ColorCache) Insert(argb uint32) {
	c.Colors[c.HashPix(argb)] = argb
}

// Set stores argb at an explicit slot, bypassing the hash.
func (c *ColorCache) Set(key int, argb uint32) {
	c.Colors[key] = argb
}

// Reset zeroes every slot.
func (c *ColorCache) Reset() {
	for i := range c.Colors {
		c.Colors[i] = 0
	}
}

// Copy overwrites c's slots with src's. Both must share the same HashBits.
func (c *ColorCache) Copy(src *ColorCache) {
	copy(c.Colors, src.Colors)
}
