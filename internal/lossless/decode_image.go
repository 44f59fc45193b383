package lossless

// decode_image.go turns the Huffman-coded section of a VP8L bitstream
// into a flat ARGB pixel array: first the five-tree-per-meta-code
// Huffman forest (optionally keyed by a lower-resolution "Huffman
// image" that lets different regions of a picture use different
// trees), then the LZ77-style literal/backward-reference/color-cache
// loop that walks the forest to produce pixels.
//
// Reference: libwebp/src/dec/vp8l_dec.c's ReadHuffmanCode(s) and
// DecodeImageData.

import "github.com/webpdec/vp8l/internal/bitio"

// readHuffmanCodeLengths decodes numSymbols code lengths using a
// previously built code-length-code table (clTable), following the RLE
// scheme the format uses: literal lengths are written directly, one repeat
// symbol (16) repeats the previous non-zero length, and two (17, 18)
// compress shorter and longer runs of zero.
func (dec *Decoder) readHuffmanCodeLengths(clTable []HuffmanCode, numSymbols int) ([]int, error) {
	lengths := dec.scratchCodeLengths(numSymbols)
	lastNonZero := DefaultCodeLength

	budget := numSymbols
	if dec.br.ReadBits(1) == 1 { // a tighter symbol budget than the full alphabet follows
		budgetBits := 2 + 2*int(dec.br.ReadBits(3))
		budget = 2 + int(dec.br.ReadBits(budgetBits))
		if budget > numSymbols {
			return nil, ErrBitstream
		}
	}

	out := 0
	for out < numSymbols && budget > 0 {
		budget--
		dec.br.FillBitWindow()
		entry := clTable[dec.br.PrefetchBits()&LengthsTableMask]
		dec.br.SetBitPos(dec.br.BitPos() + int(entry.Bits))
		clSymbol := int(entry.Value)

		if clSymbol < CodeLengthLiterals {
			lengths[out] = clSymbol
			out++
			if clSymbol != 0 {
				lastNonZero = clSymbol
			}
			continue
		}

		slot := clSymbol - CodeLengthLiterals
		runLen := int(dec.br.ReadBits(int(CodeLengthExtraBits[slot]))) + int(CodeLengthRepeatOffsets[slot])
		if out+runLen > numSymbols {
			return nil, ErrBitstream
		}
		fill := 0
		if clSymbol == CodeLengthRepeatCode {
			fill = lastNonZero
		}
		for i := 0; i < runLen; i++ {
			lengths[out] = fill
			out++
		}
	}

	if dec.br.IsEndOfStream() {
		return nil, ErrBitstream
	}
	return lengths, nil
}

// readHuffmanCode reads one Huffman tree (either a "simple code" of 1-2
// symbols written directly, or a "normal code" carried by its own small
// code-length-code tree) and builds its lookup table. It also returns
// the longest code length used, needed by the caller to decide whether
// this tree's meta-code qualifies for the packed-table fast path.
func (dec *Decoder) readHuffmanCode(alphabetSize int) ([]HuffmanCode, int, error) {
	isSimple := dec.br.ReadBits(1) == 1

	var lengths []int
	if isSimple {
		lengths = dec.scratchCodeLengths(alphabetSize)
		if err := dec.readSimpleCodeLengths(lengths, alphabetSize); err != nil {
			return nil, 0, err
		}
	} else {
		decoded, err := dec.readNormalCodeLengths(alphabetSize)
		if err != nil {
			return nil, 0, err
		}
		lengths = decoded
	}

	if dec.br.IsEndOfStream() {
		return nil, 0, ErrBitstream
	}

	maxCodeLen := 0
	for _, cl := range lengths {
		if cl > maxCodeLen {
			maxCodeLen = cl
		}
	}

	table, err := BuildHuffmanTableScratch(HuffmanTableBits, lengths, dec.huffTableScratch())
	if err != nil {
		return nil, 0, err
	}
	return table, maxCodeLen, nil
}

// readSimpleCodeLengths handles the "simple code" encoding: 1 or 2
// symbols, each given a literal 1-bit code length, written directly into
// lengths (everything else stays 0).
func (dec *Decoder) readSimpleCodeLengths(lengths []int, alphabetSize int) error {
	numSymbols := int(dec.br.ReadBits(1)) + 1
	symbolBits := 1
	if dec.br.ReadBits(1) == 1 {
		symbolBits = 8
	}
	symbol := int(dec.br.ReadBits(symbolBits))
	if symbol >= alphabetSize {
		return ErrBitstream
	}
	lengths[symbol] = 1

	if numSymbols == 2 {
		symbol2 := int(dec.br.ReadBits(8))
		if symbol2 >= alphabetSize {
			return ErrBitstream
		}
		lengths[symbol2] = 1
	}
	return nil
}

// readNormalCodeLengths handles the "normal code" encoding: a small
// code-length-code tree (at most CodeLengthCodes symbols, each given a
// literal 3-bit length) is read first, then used to RLE-decode the real
// per-symbol code lengths via readHuffmanCodeLengths.
func (dec *Decoder) readNormalCodeLengths(alphabetSize int) ([]int, error) {
	var clLengths [CodeLengthCodes]int
	numCodes := int(dec.br.ReadBits(4)) + 4
	if numCodes > CodeLengthCodes {
		numCodes = CodeLengthCodes
	}
	for i := 0; i < numCodes; i++ {
		clLengths[CodeLengthCodeOrder[i]] = int(dec.br.ReadBits(3))
	}

	clTable, err := BuildHuffmanTableScratch(LengthsTableBits, clLengths[:], dec.huffTableScratch())
	if err != nil {
		return nil, err
	}
	return dec.readHuffmanCodeLengths(clTable, alphabetSize)
}

// scratchCodeLengths returns a zeroed []int of length n, reusing the
// decoder's codeLengthsBuf when large enough.
func (dec *Decoder) scratchCodeLengths(n int) []int {
	if cap(dec.codeLengthsBuf) < n {
		dec.codeLengthsBuf = make([]int, n)
		return dec.codeLengthsBuf
	}
	lengths := dec.codeLengthsBuf[:n]
	for i := range lengths {
		lengths[i] = 0
	}
	return lengths
}

// huffTableScratch returns the decoder's reusable HuffmanTableScratch.
func (dec *Decoder) huffTableScratch() *HuffmanTableScratch {
	return &dec.huffScratch
}

// readHuffmanCodes reads the optional meta-Huffman image (which assigns
// a tree group per tile instead of one tree group for the whole picture)
// and then every HTreeGroup the image references.
func (dec *Decoder) readHuffmanCodes(xsize, ysize, colorCacheBits int, allowRecursion bool) error {
	huffmanImage, groupForTile, numGroupsMax, err := dec.readMetaHuffmanImage(xsize, ysize, allowRecursion)
	if err != nil {
		return err
	}
	if dec.br.IsEndOfStream() {
		return ErrBitstream
	}

	// groupForTile is nil when there's no remapping: tile index == group
	// index directly, and numGroups == numGroupsMax.
	numGroups := numGroupsMax
	if groupForTile != nil {
		numGroups = 0
		for _, g := range groupForTile {
			if g+1 > numGroups {
				numGroups = g + 1
			}
		}
	}

	groups := dec.scratchHTreeGroups(numGroups)
	for tile := 0; tile < numGroupsMax; tile++ {
		dest := tile
		if groupForTile != nil {
			dest = groupForTile[tile]
		}
		if dest < 0 {
			// This tile index is never referenced by the meta-Huffman
			// image; its trees still occupy bitstream space and must be
			// read to keep the reader in sync, then thrown away.
			if err := dec.skipHTreeGroup(colorCacheBits); err != nil {
				return err
			}
			continue
		}
		if err := dec.readHTreeGroupInto(&groups[dest], colorCacheBits); err != nil {
			return err
		}
	}

	dec.hdr.numHTreeGroups = numGroups
	dec.hdr.htreeGroups = groups
	dec.hdr.huffmanImage = huffmanImage
	return nil
}

// readMetaHuffmanImage reads the optional sub-image that assigns a tree
// group index to each tile of the picture, remapping group indices down
// to a dense [0, numGroupsMax) range. When no meta-image is present (or
// allowRecursion forbids one), it returns a single implicit group
// covering the whole picture: huffmanImage is nil and groupForTile is
// nil (tile index IS group index, numGroupsMax == 1).
//
// groupForTile is only non-nil when the raw group indices stored in the
// sub-image span too wide a range to use directly (largest index + 1 is
// over 1000, or over the pixel count) — the common case leaves
// tile index and group index identical and skips the remap entirely.
func (dec *Decoder) readMetaHuffmanImage(xsize, ysize int, allowRecursion bool) (huffmanImage []uint32, groupForTile []int, numGroupsMax int, err error) {
	if !allowRecursion || dec.br.ReadBits(1) != 1 {
		return nil, nil, 1, nil
	}

	precision := MinHuffmanBits + int(dec.br.ReadBits(NumHuffmanBits))
	tilesX := VP8LSubSampleSize(xsize, precision)
	tilesY := VP8LSubSampleSize(ysize, precision)
	numTiles := tilesX * tilesY

	subImage, err := dec.decodeSubImage(tilesX, tilesY)
	if err != nil {
		return nil, nil, 0, err
	}
	dec.hdr.huffmanSubsampleBits = precision

	numGroupsMax = 1
	for i := 0; i < numTiles; i++ {
		g := int((subImage[i] >> 8) & 0xffff)
		subImage[i] = uint32(g)
		if g+1 > numGroupsMax {
			numGroupsMax = g + 1
		}
	}

	if numGroupsMax > 1000 || numGroupsMax > xsize*ysize {
		groupForTile = make([]int, numGroupsMax)
		for i := range groupForTile {
			groupForTile[i] = -1
		}
		next := 0
		for i := 0; i < numTiles; i++ {
			g := int(subImage[i])
			if groupForTile[g] == -1 {
				groupForTile[g] = next
				next++
			}
			subImage[i] = uint32(groupForTile[g])
		}
	}
	return subImage, groupForTile, numGroupsMax, nil
}

// scratchHTreeGroups returns a zeroed []HTreeGroup of length n, reusing
// the decoder's htreeGroupsBuf when large enough.
func (dec *Decoder) scratchHTreeGroups(n int) []HTreeGroup {
	if cap(dec.htreeGroupsBuf) < n {
		dec.htreeGroupsBuf = make([]HTreeGroup, n)
		return dec.htreeGroupsBuf
	}
	groups := dec.htreeGroupsBuf[:n]
	for i := range groups {
		groups[i] = HTreeGroup{}
	}
	return groups
}

// treeAlphabetSize returns the alphabet size of the j-th tree in a
// meta-code (green=0 .. distance=4), folding in the color cache's extra
// codes for the green tree.
func treeAlphabetSize(j, colorCacheBits int) int {
	size := kBaseAlphabetSize[j]
	if j == 0 && colorCacheBits > 0 {
		size += 1 << colorCacheBits
	}
	return size
}

// skipHTreeGroup reads and discards all five trees of one meta-code,
// used for tile indices the meta-Huffman image never actually selects.
func (dec *Decoder) skipHTreeGroup(colorCacheBits int) error {
	for j := 0; j < HuffmanCodesPerMetaCode; j++ {
		if _, _, err := dec.readHuffmanCode(treeAlphabetSize(j, colorCacheBits)); err != nil {
			return err
		}
	}
	return nil
}

// readHTreeGroupInto reads all five trees of one meta-code into group,
// then derives the fast-path flags (IsTrivialLiteral, IsTrivialCode,
// UsePackedTable) that decodeImageData's hot loop relies on to skip
// real tree traversal when every channel (or every channel but green)
// is a single constant symbol.
func (dec *Decoder) readHTreeGroupInto(group *HTreeGroup, colorCacheBits int) error {
	isTrivialLiteral := true
	constantBits := 0
	literalMaxBits := 0

	for j := 0; j < HuffmanCodesPerMetaCode; j++ {
		table, maxCodeLen, err := dec.readHuffmanCode(treeAlphabetSize(j, colorCacheBits))
		if err != nil {
			return err
		}
		group.HTrees[j] = table

		if isTrivialLiteral && KLiteralMap[j] == 1 {
			isTrivialLiteral = table[0].Bits == 0
		}
		constantBits += int(table[0].Bits)
		if j <= int(HuffAlpha) {
			literalMaxBits += maxCodeLen
		}
	}

	group.IsTrivialLiteral = isTrivialLiteral
	if isTrivialLiteral {
		red := uint32(group.HTrees[HuffRed][0].Value)
		blue := uint32(group.HTrees[HuffBlue][0].Value)
		alpha := uint32(group.HTrees[HuffAlpha][0].Value)
		group.LiteralARB = (alpha << 24) | (red << 16) | blue
		if constantBits == 0 && group.HTrees[HuffGreen][0].Value < NumLiteralCodes {
			group.IsTrivialCode = true
			group.LiteralARB |= uint32(group.HTrees[HuffGreen][0].Value) << 8
		}
	}

	group.UsePackedTable = !group.IsTrivialCode && literalMaxBits < HuffmanPackedBits
	if group.UsePackedTable {
		buildPackedTable(group)
	}
	return nil
}

// bitsSpecialMarker flags a PackedTable entry as "not a full literal":
// Bits holds HuffmanPackedBits-sized green-tree bits plus this marker,
// and Value is the green symbol (a length code or cache code) the caller
// still needs to decode red/blue/alpha (or a cache lookup) for.
const bitsSpecialMarker = 0x100

// buildPackedTable precomputes, for every possible HuffmanPackedBits-bit
// prefetch window, either a complete ARGB literal (when green decodes to
// a byte value and all four channels fit within the window) or the
// green-channel symbol alone (when it doesn't), so decodeImageData can
// skip walking four separate Huffman tables for the common case.
func buildPackedTable(group *HTreeGroup) {
	for prefetch := uint32(0); prefetch < HuffmanPackedTableSize; prefetch++ {
		bits := prefetch
		packed := &group.PackedTable[prefetch]

		green := group.HTrees[HuffGreen][bits&HuffmanTableMask]
		if int(green.Value) >= NumLiteralCodes {
			packed.Bits = int(green.Bits) + bitsSpecialMarker
			packed.Value = uint32(green.Value)
			continue
		}

		packed.Bits = 0
		packed.Value = 0
		bits >>= accumulateChannel(group.HTrees[HuffGreen][bits&HuffmanTableMask], 8, packed)
		bits >>= accumulateChannel(group.HTrees[HuffRed][bits&HuffmanTableMask], 16, packed)
		bits >>= accumulateChannel(group.HTrees[HuffBlue][bits&HuffmanTableMask], 0, packed)
		accumulateChannel(group.HTrees[HuffAlpha][bits&HuffmanTableMask], 24, packed)
	}
}

// accumulateChannel folds one channel's Huffman symbol into packed at
// the given byte shift, returning the bit count consumed so the caller
// can advance its prefetch window.
func accumulateChannel(hcode HuffmanCode, shift int, packed *HuffmanCode32) int {
	packed.Bits += int(hcode.Bits)
	packed.Value |= uint32(hcode.Value) << shift
	return int(hcode.Bits)
}

// getMetaIndex returns the Huffman tree group index covering pixel (x, y).
func (dec *Decoder) getMetaIndex(x, y int) int {
	if dec.hdr.huffmanSubsampleBits == 0 {
		return 0
	}
	shift := dec.hdr.huffmanSubsampleBits
	return int(dec.hdr.huffmanImage[dec.hdr.huffmanXSize*(y>>shift)+(x>>shift)])
}

// getHTreeGroup returns the HTreeGroup covering pixel (x, y).
func (dec *Decoder) getHTreeGroup(x, y int) *HTreeGroup {
	return &dec.hdr.htreeGroups[dec.getMetaIndex(x, y)]
}

// getCopyDistance decodes a prefix-coded distance (or, via getCopyLength,
// a length): symbols below 4 are the distance minus one directly;
// larger symbols carry extra literal bits on top of a power-of-two base.
// Takes a concrete *bitio.LosslessReader rather than an interface so the
// compiler can inline it into decodeImageData's hot loop.
func getCopyDistance(distanceSymbol int, br *bitio.LosslessReader) int {
	if distanceSymbol < 4 {
		return distanceSymbol + 1
	}
	extraBits := (distanceSymbol - 2) >> 1
	base := (2 + (distanceSymbol & 1)) << extraBits
	return base + int(br.ReadBits(extraBits)) + 1
}

// getCopyLength decodes a length symbol; lengths and distances share the
// same prefix-code encoding.
func getCopyLength(lengthSymbol int, br *bitio.LosslessReader) int {
	return getCopyDistance(lengthSymbol, br)
}

// readSymbolFromTree fills the bit window if needed and decodes one
// Huffman symbol from table, advancing the reader past it.
func readSymbolFromTree(table []HuffmanCode, br *bitio.LosslessReader) int {
	br.FillBitWindow()
	val, bitsUsed := ReadSymbol(table, br.PrefetchBits())
	br.SetBitPos(br.BitPos() + bitsUsed)
	return int(val)
}

// readPackedSymbols tries to decode a whole ARGB pixel straight out of
// group's packed table. isLiteral reports whether argb is a complete
// pixel; when it is false, greenCode is the green-channel symbol the
// caller must still resolve through the slow path (a length or cache
// code).
func readPackedSymbols(group *HTreeGroup, br *bitio.LosslessReader) (argb uint32, greenCode int, isLiteral bool) {
	entry := group.PackedTable[br.PrefetchBits()&(HuffmanPackedTableSize-1)]
	if entry.Bits < bitsSpecialMarker {
		br.SetBitPos(br.BitPos() + entry.Bits)
		return entry.Value, 0, true
	}
	br.SetBitPos(br.BitPos() + entry.Bits - bitsSpecialMarker)
	return 0, int(entry.Value), false
}

// flushColorCache inserts data[from:to] into cache in order, returning
// the new "last cached" position (==to). A decoder bulk-inserts pending
// pixels at row boundaries, after each backward-reference copy and
// immediately before each cache lookup, rather than after every single
// pixel, since a cache lookup needs every pixel up to that point already
// present regardless of how it was produced.
func flushColorCache(cache *ColorCache, data []uint32, from, to int) int {
	if cache == nil {
		return to
	}
	for from < to {
		cache.Insert(data[from])
		from++
	}
	return to
}

// decodeImageData is the entropy-decoding loop that turns Huffman
// symbols into width*height ARGB pixels in data, picking whichever of
// three paths a pixel's tree group supports: a single constant literal
// for every channel (IsTrivialCode), a full pixel out of a precomputed
// packed table (UsePackedTable), or the full green/red/blue/alpha/
// distance tree walk.
//
// In incremental mode it snapshots the reader and color cache once at
// entry and restores them on suspension, so a caller driving this in
// row bands never has to distinguish "ran out of data" from "ran out of
// data right at curious bit count": the whole band is simply retried.
//
// The hot loop inlines readSymbolFromTree/getCopyDistance's bodies by
// hand (FillBitWindow/PrefetchBits/ReadSymbol/SetBitPos/BitPos as
// separate calls) because those two functions are just over Go's inline
// budget; keeping each component call inlined individually keeps the
// reader's state in registers across a pixel instead of spilling it
// through a non-inlined call.
func (dec *Decoder) decodeImageData(data []uint32, width, height, lastRow int) error {
	br := dec.br
	hdr := &dec.hdr

	literalLimit := NumLiteralCodes + NumLengthCodes
	cacheLimit := literalLimit + hdr.colorCacheSize
	cache := hdr.colorCache
	tileMask := hdr.huffmanMask

	cursor := dec.incPos
	lastCached := dec.incLastCached
	row := dec.incRow
	col := dec.incCol
	srcEnd := width * height
	bandEnd := width * lastRow

	var brCkpt bitio.LosslessReaderState
	if dec.Incremental {
		brCkpt = br.Checkpoint()
		if cache != nil {
			dec.cacheCkptBuf = append(dec.cacheCkptBuf[:0], cache.Colors...)
		}
	}

	var htreeGroup *HTreeGroup
	if cursor < bandEnd {
		htreeGroup = dec.getHTreeGroup(col, row)
	}

	for cursor < bandEnd {
		if (col & tileMask) == 0 {
			htreeGroup = dec.getHTreeGroup(col, row)
		}

		if htreeGroup.IsTrivialCode {
			data[cursor] = htreeGroup.LiteralARB
			cursor++
			col++
			if col >= width {
				col = 0
				row++
				lastCached = flushColorCache(cache, data, lastCached, cursor)
			}
			continue
		}

		br.FillBitWindow()

		var greenSymbol int
		if htreeGroup.UsePackedTable {
			argb, gc, isLit := readPackedSymbols(htreeGroup, br)
			if br.IsEndOfStream() {
				break
			}
			if isLit {
				data[cursor] = argb
				cursor++
				col++
				if col >= width {
					col = 0
					row++
					lastCached = flushColorCache(cache, data, lastCached, cursor)
				}
				continue
			}
			greenSymbol = gc
		} else {
			prefetch := br.PrefetchBits()
			val, bits := ReadSymbol(htreeGroup.HTrees[HuffGreen], prefetch)
			br.SetBitPos(br.BitPos() + bits)
			greenSymbol = int(val)
		}

		if br.IsEndOfStream() {
			break
		}

		switch {
		case greenSymbol < NumLiteralCodes:
			if htreeGroup.IsTrivialLiteral {
				data[cursor] = htreeGroup.LiteralARB | (uint32(greenSymbol) << 8)
			} else {
				prefetch := br.PrefetchBits()
				redVal, redBits := ReadSymbol(htreeGroup.HTrees[HuffRed], prefetch)
				br.SetBitPos(br.BitPos() + redBits)

				br.FillBitWindow() // green+red consumed up to 30 bits; refill before blue+alpha

				prefetch = br.PrefetchBits()
				blueVal, blueBits := ReadSymbol(htreeGroup.HTrees[HuffBlue], prefetch)
				br.SetBitPos(br.BitPos() + blueBits)

				prefetch = br.PrefetchBits()
				alphaVal, alphaBits := ReadSymbol(htreeGroup.HTrees[HuffAlpha], prefetch)
				br.SetBitPos(br.BitPos() + alphaBits)

				if br.IsEndOfStream() {
					break
				}
				data[cursor] = (uint32(alphaVal) << 24) | (uint32(redVal) << 16) | (uint32(greenSymbol) << 8) | uint32(blueVal)
			}
			cursor++
			col++
			if col >= width {
				col = 0
				row++
				lastCached = flushColorCache(cache, data, lastCached, cursor)
			}

		case greenSymbol < literalLimit:
			lengthSym := greenSymbol - NumLiteralCodes

			var length int
			if lengthSym < 4 {
				length = lengthSym + 1
			} else {
				extraBits := (lengthSym - 2) >> 1
				base := (2 + (lengthSym & 1)) << extraBits
				br.FillBitWindow()
				length = base + int(br.PrefetchBits()&uint32((1<<extraBits)-1)) + 1
				br.SetBitPos(br.BitPos() + extraBits)
			}

			br.FillBitWindow()
			prefetch := br.PrefetchBits()
			distVal, distBits := ReadSymbol(htreeGroup.HTrees[HuffDist], prefetch)
			br.SetBitPos(br.BitPos() + distBits)
			distSymbol := int(distVal)

			var planeCode int
			if distSymbol < 4 {
				planeCode = distSymbol + 1
			} else {
				extraBits := (distSymbol - 2) >> 1
				base := (2 + (distSymbol & 1)) << extraBits
				br.FillBitWindow()
				planeCode = base + int(br.PrefetchBits()&uint32((1<<extraBits)-1)) + 1
				br.SetBitPos(br.BitPos() + extraBits)
			}
			backDistance := PlaneCodeToDistance(width, planeCode)

			if br.IsEndOfStream() {
				break
			}
			if cursor < backDistance || srcEnd-cursor < length {
				return ErrBitstream
			}

			copyBlock32(data, cursor, backDistance, length)
			cursor += length
			col += length
			for col >= width {
				col -= width
				row++
			}
			if col&tileMask != 0 {
				htreeGroup = dec.getHTreeGroup(col, row)
			}
			lastCached = flushColorCache(cache, data, lastCached, cursor)

		case greenSymbol < cacheLimit:
			key := greenSymbol - literalLimit
			if cache != nil {
				lastCached = flushColorCache(cache, data, lastCached, cursor)
				data[cursor] = cache.Lookup(key)
			}
			cursor++
			col++
			if col >= width {
				col = 0
				row++
				lastCached = flushColorCache(cache, data, lastCached, cursor)
			}

		default:
			return ErrBitstream
		}
	}

	if br.IsEndOfStream() && cursor < bandEnd {
		if dec.Incremental {
			br.Restore(brCkpt)
			if cache != nil {
				copy(cache.Colors, dec.cacheCkptBuf)
			}
			return ErrSuspended
		}
		return ErrBitstream
	}

	dec.incPos, dec.incRow, dec.incCol, dec.incLastCached = cursor, row, col, lastCached
	return nil
}

// copyBlock32 copies a length-pixel run from data[pos-dist:] to
// data[pos:]. Three cases: a non-overlapping source lets copy() do a
// plain memmove; dist==1 is really "repeat the previous pixel length
// times," handled as a fill; any other overlap is filled by doubling an
// initial dist-sized chunk until length pixels are written, since a
// straight element-by-element loop would defeat copy()'s batching.
func copyBlock32(data []uint32, pos, dist, length int) {
	src := pos - dist
	switch {
	case dist >= length:
		copy(data[pos:pos+length], data[src:src+length])
	case dist == 1:
		val := data[src]
		run := data[pos : pos+length]
		for i := range run {
			run[i] = val
		}
	default:
		copy(data[pos:pos+dist], data[src:src+dist])
		done := dist
		for done < length {
			chunk := done
			if chunk > length-done {
				chunk = length - done
			}
			copy(data[pos+done:pos+done+chunk], data[pos:pos+chunk])
			done += chunk
		}
	}
}
