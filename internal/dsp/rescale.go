package dsp

// A Rescaler resamples one 8-bit image channel row by row, shrinking or
// expanding along each axis independently with a fixed-point box filter.
// Decoding a WebP file to a different output size runs one Rescaler per
// channel (ARGB) side by side, driven by matching RescalerImportRow /
// RescalerExportRow calls.
//
// Reference: libwebp/src/dsp/rescaler.c, rescaler_utils.c.

// fixedPointBits is the fractional precision used throughout the
// rescaler's fixed-point arithmetic (WEBP_RESCALER_RFIX upstream).
const fixedPointBits = 32

// fixedPointOne represents the fixed-point value 1.0.
const fixedPointOne = uint64(1) << fixedPointBits

// Rescaler is the per-channel resampling state. Horizontal resampling
// writes into row; when shrinking vertically, row is also accumulated
// into accum across several source rows before a destination row is
// produced.
type Rescaler struct {
	SrcWidth, SrcHeight int
	DstWidth, DstHeight int

	XExpand bool // destination is wider than source
	YExpand bool // destination is taller than source

	row   []int32 // horizontal-resample output for the current source row
	accum []int32 // vertical accumulator (shrink) / previous row (expand)

	yAccum int // signed countdown driving when a destination row is ready
	yAdd   int // source height
	ySub   int // destination height

	xAdd int // source width
	xSub int // destination width

	xScale  uint32 // 1/xSub in fixed point, used while shrinking horizontally
	yScale  uint32 // 1/ySub in fixed point, used in both vertical directions
	xyScale uint32 // combined normalization factor, used while shrinking vertically

	SrcY int
	DstY int
}

// fixedMulRound computes round(x*y / fixedPointOne).
func fixedMulRound(x, y uint32) uint32 {
	const half = uint64(1) << (fixedPointBits - 1)
	return uint32((uint64(x)*uint64(y) + half) >> fixedPointBits)
}

// fixedMulFloor computes floor(x*y / fixedPointOne).
func fixedMulFloor(x, y uint32) uint32 {
	return uint32((uint64(x) * uint64(y)) >> fixedPointBits)
}

// fixedRatio computes floor(x/y) in fixed point, or 0 for y == 0 (the
// "no scaling needed along this axis" case).
func fixedRatio(x, y int) uint32 {
	if y == 0 {
		return 0
	}
	return uint32((uint64(x) << fixedPointBits) / uint64(y))
}

// RescalerInit prepares r to resample a srcWidth x srcHeight channel down
// or up to dstWidth x dstHeight.
func RescalerInit(r *Rescaler, srcWidth, srcHeight, dstWidth, dstHeight int) {
	*r = Rescaler{
		SrcWidth: srcWidth, SrcHeight: srcHeight,
		DstWidth: dstWidth, DstHeight: dstHeight,
		XExpand: dstWidth > srcWidth,
		YExpand: dstHeight > srcHeight,
		row:     make([]int32, dstWidth),
		accum:   make([]int32, dstWidth),
		xAdd:    srcWidth, xSub: dstWidth,
		yAdd: srcHeight, ySub: dstHeight,
	}

	if r.YExpand {
		r.yAccum = r.ySub
	} else {
		r.yAccum = r.yAdd
	}

	if !r.XExpand && r.xSub > 0 {
		r.xScale = fixedRatio(1, r.xSub)
	}
	if r.ySub > 0 {
		r.yScale = fixedRatio(1, r.ySub)
	}
	if !r.YExpand && r.xAdd > 0 && r.yAdd > 0 {
		ratio := (uint64(dstHeight) << fixedPointBits) / uint64(r.xAdd*r.yAdd)
		if ratio == uint64(uint32(ratio)) {
			r.xyScale = uint32(ratio)
		}
		// else leave xyScale == 0; shrinkRowVertical's zero-scale
		// branch handles that case without overflowing.
	}
}

// RescalerImportRow feeds one source row (srcWidth bytes of a single
// channel) through horizontal resampling, then folds the result into the
// vertical accumulator when shrinking.
func RescalerImportRow(r *Rescaler, src []byte) {
	if r.XExpand {
		expandRowHorizontal(r, src)
	} else {
		shrinkRowHorizontal(r, src)
	}
	if !r.YExpand {
		for x, v := range r.row {
			r.accum[x] += v
		}
	}
	r.SrcY++
	r.yAccum -= r.ySub
}

// expandRowHorizontal linearly interpolates src across the wider
// destination row.
func expandRowHorizontal(r *Rescaler, src []byte) {
	xIn := 1
	accum := r.xAdd
	left := int32(src[0])
	right := left
	if r.SrcWidth > 1 {
		right = int32(src[1])
	}

	for xOut := 0; ; {
		r.row[xOut] = right*int32(r.xAdd) + (left-right)*int32(accum)
		xOut++
		if xOut >= r.DstWidth {
			return
		}
		accum -= r.xSub
		if accum < 0 {
			left = right
			xIn++
			if xIn < r.SrcWidth {
				right = int32(src[xIn])
			}
			accum += r.xAdd
		}
	}
}

// shrinkRowHorizontal box-filters src down across the narrower
// destination row.
func shrinkRowHorizontal(r *Rescaler, src []byte) {
	xIn := 0
	var sum uint32
	accum := 0

	for xOut := 0; xOut < r.DstWidth; xOut++ {
		var base uint32
		accum += r.xAdd
		for accum > 0 {
			accum -= r.xSub
			if xIn < r.SrcWidth {
				base = uint32(src[xIn])
			}
			sum += base
			xIn++
		}
		frac := base * uint32(-accum)
		r.row[xOut] = int32(sum*uint32(r.xSub) - frac)
		sum = fixedMulRound(frac, r.xScale) // carry the fractional remainder into the next pixel
	}
}

// RescalerExportRow produces one destination row into dst if the vertical
// accumulator has enough source rows buffered; it reports whether it did.
func RescalerExportRow(r *Rescaler, dst []byte) bool {
	if r.yAccum > 0 {
		return false
	}
	if r.YExpand {
		expandRowVertical(r, dst)
	} else {
		shrinkRowVertical(r, dst)
	}
	r.yAccum += r.yAdd
	r.DstY++
	return true
}

// clamp8 saturates a fixed-point channel value to the uint8 range.
func clamp8(v uint32) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// expandRowVertical interpolates vertically between the current
// horizontally-resampled row and the previous one.
func expandRowVertical(r *Rescaler, dst []byte) {
	if r.yAccum == 0 {
		for x, v := range r.row {
			dst[x] = clamp8(fixedMulRound(uint32(v), r.yScale))
		}
	} else {
		weightPrev := fixedRatio(-r.yAccum, r.ySub)
		weightCur := uint32(fixedPointOne - uint64(weightPrev))
		const half = uint64(1) << (fixedPointBits - 1)
		for x := range r.row {
			blended := uint64(weightCur)*uint64(uint32(r.row[x])) + uint64(weightPrev)*uint64(uint32(r.accum[x]))
			dst[x] = clamp8(fixedMulRound(uint32((blended+half)>>fixedPointBits), r.yScale))
		}
	}
	copy(r.accum, r.row)
}

// shrinkRowVertical finishes the box filter along the vertical axis,
// leaving the accumulator's fractional remainder for the next cycle.
func shrinkRowVertical(r *Rescaler, dst []byte) {
	scale := r.yScale * uint32(-r.yAccum)
	if scale == 0 {
		for x, v := range r.accum {
			dst[x] = clamp8(fixedMulRound(uint32(v), r.xyScale))
			r.accum[x] = 0
		}
		return
	}
	for x, v := range r.row {
		frac := fixedMulFloor(uint32(v), scale)
		dst[x] = clamp8(fixedMulRound(uint32(r.accum[x])-frac, r.xyScale))
		r.accum[x] = int32(frac)
	}
}

// RescalerHasDstRow reports whether RescalerExportRow would succeed right now.
func RescalerHasDstRow(r *Rescaler) bool {
	return r.yAccum <= 0
}

// RescalerNeedsSrcRow reports whether another RescalerImportRow call is
// needed before a destination row can be produced.
func RescalerNeedsSrcRow(r *Rescaler) bool {
	return r.yAccum > 0
}
