package lossless

// Incremental decoding lets a caller feed a VP8L bitstream to the decoder
// as it arrives over the wire, rather than handing over one complete byte
// slice up front. AppendData accumulates bytes; DecodeHeader parses the
// frame header and transform/Huffman metadata once enough of it has
// arrived; DecodeImage drives pixel decoding in row bands, handing each
// completed band to a callback as soon as it is ready and returning
// ErrSuspended when the bytes appended so far run out mid-band.
//
// Reference: libwebp/src/dec/vp8l_dec.c's VP8LDecodeImage, which is driven
// incrementally by the WebPIDecoder state machine in dec/idec_dec.c.

// NewIncrementalDecoder returns a Decoder configured for incremental use.
// It does not come from the pool DecodeVP8L uses: an incremental decode
// can stay alive across many AppendData calls, so recycling its buffers
// into a short-lived one-shot decode would be counterproductive.
func NewIncrementalDecoder() *Decoder {
	return &Decoder{Incremental: true}
}

// AppendData adds newly-arrived bytes to the decoder's accumulated input.
// It is safe to call before DecodeHeader has succeeded (to build up the
// minimum header size) and between DecodeImage calls that returned
// ErrSuspended.
func (dec *Decoder) AppendData(data []byte) {
	dec.rawData = append(dec.rawData, data...)
	if dec.br != nil {
		dec.br.Grow(dec.rawData[1:])
	}
}

// DecodeHeader parses the signature, frame dimensions, transform chain,
// color cache configuration and top-level Huffman codes from the data
// appended so far. It is idempotent once it succeeds. If the accumulated
// data is not yet sufficient it returns ErrSuspended; the caller should
// AppendData more bytes and call DecodeHeader again. Each retry re-parses
// from the start of the buffer, since nothing about header parsing itself
// is resumable mid-field.
func (dec *Decoder) DecodeHeader() error {
	if dec.headerDone {
		return nil
	}
	if len(dec.rawData) < VP8LHeaderSize {
		return ErrSuspended
	}

	dec.nextTransform = 0
	dec.transformsSeen = 0
	dec.hdr = metadata{}

	if err := dec.decodeHeader(dec.rawData); err != nil {
		if dec.br != nil && dec.br.IsEndOfStream() {
			return ErrSuspended
		}
		return err
	}

	const huffSlabSize = 1 << 16
	if cap(dec.huffScratch.tableSlab) < huffSlabSize {
		dec.huffScratch.tableSlab = make([]HuffmanCode, huffSlabSize)
	}
	dec.huffScratch.slabOff = 0

	if err := dec.decodeImageStream(dec.Width, dec.Height, true); err != nil {
		if dec.br.IsEndOfStream() {
			return ErrSuspended
		}
		return err
	}

	tw := dec.transformWidth
	if tw == 0 {
		tw = dec.Width
	}
	dec.decTW = tw

	numPixOrig := dec.Width * dec.Height
	numPixTrans := tw * dec.Height
	numAlloc := numPixOrig
	if numPixTrans > numAlloc {
		numAlloc = numPixTrans
	}

	needed := numAlloc + dec.Width + dec.Width*numArgbCacheRows
	dec.pixels = make([]uint32, needed)
	dec.argbCache = dec.pixels[numAlloc+dec.Width:]
	dec.transformBuf = make([]uint32, numAlloc)

	dec.headerDone = true
	return nil
}

// DecodeImage decodes pixel rows not yet delivered, in bands of at most
// SyncEveryNRows rows, calling rowCallback with each band's final (fully
// inverse-transformed) pixels as soon as it completes. The slice passed to
// rowCallback is reused by the next call's processBand; callers that need
// to retain it past the callback's return must copy it.
//
// If DecodeHeader has not yet succeeded, DecodeImage calls it first.
// DecodeImage returns ErrSuspended when decoding a band runs out of
// appended data; AppendData more and call DecodeImage again to resume from
// the last completed band boundary. It returns nil once every row of the
// image has been delivered.
func (dec *Decoder) DecodeImage(rowCallback func(fromRow, toRow int, pixels []uint32) error) error {
	if err := dec.DecodeHeader(); err != nil {
		return err
	}
	if dec.streamDone {
		return nil
	}

	tw := dec.decTW
	numPixTrans := tw * dec.Height

	for dec.incLastRow < dec.Height {
		bandEnd := dec.incLastRow + SyncEveryNRows
		if bandEnd > dec.Height {
			bandEnd = dec.Height
		}

		if err := dec.decodeImageData(dec.pixels[:numPixTrans], tw, dec.Height, bandEnd); err != nil {
			return err
		}

		band := dec.processBand(dec.incLastRow, bandEnd)
		if err := rowCallback(dec.incLastRow, bandEnd, band); err != nil {
			return err
		}
		dec.incLastRow = bandEnd
	}

	dec.streamDone = true
	return nil
}

// Reset clears all decoder state so the Decoder can be reused for a fresh
// incremental decode of a different image.
func (dec *Decoder) Reset() {
	*dec = Decoder{Incremental: dec.Incremental}
}
