// Package pool provides bucketed sync.Pool byte-buffer recycling for the
// decoder's hot allocation paths (reading a whole file into memory, staging
// chunk payloads). Buffers are rounded up to one of a handful of size
// classes so that a pool bucket sees repeated same-size traffic instead of
// a different size on every Get, which is what makes sync.Pool effective.
package pool

import "sync"

// Byte-buffer size classes.
const (
	Size256B = 256
	Size1K   = 1024
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
)

// bucket pairs a size class with the pool holding buffers of that class.
type bucket struct {
	size int
	pool sync.Pool
}

var buckets = [...]*bucket{
	{size: Size256B}, {size: Size1K}, {size: Size4K}, {size: Size16K},
	{size: Size64K}, {size: Size256K}, {size: Size1M},
}

func init() {
	for _, b := range buckets {
		sz := b.size
		b.pool.New = func() any {
			buf := make([]byte, sz)
			return &buf
		}
	}
}

// bucketIndex returns the index into buckets of the smallest size class
// able to hold size bytes, clamped to the last bucket once size exceeds
// every size class (the caller then gets an exact-sized, unpooled
// allocation).
func bucketIndex(size int) int {
	for i, b := range buckets {
		if size <= b.size {
			return i
		}
	}
	return len(buckets) - 1
}

// Get returns a byte slice of length size from the appropriate bucket,
// allocating fresh if the bucket is empty or its buffer turned out too
// small. The caller must return it with Put once done.
func Get(size int) []byte {
	b := buckets[bucketIndex(size)]
	bp := b.pool.Get().(*[]byte)
	buf := *bp
	if cap(buf) < size {
		buf = make([]byte, size)
		*bp = buf
		return buf
	}
	return buf[:size]
}

// Put returns a byte slice obtained from Get back to its bucket. Slices
// smaller than Size256B are not pooled, since they are cheap enough that
// pooling them would not pay for the pool's own bookkeeping.
func Put(b []byte) {
	c := cap(b)
	if c < Size256B {
		return
	}
	full := b[:c:c]
	buckets[bucketIndex(c)].pool.Put(&full)
}

// GetInt16 allocates a fresh int16 slice of length; unlike Get/Put there is
// no size-classed pooling backing it, since the decoder's int16-slice
// allocations (Huffman scratch aside) aren't hot enough to warrant one.
func GetInt16(length int) []int16 {
	return make([]int16, length)
}

// GetInt32 allocates a fresh int32 slice of length.
func GetInt32(length int) []int32 {
	return make([]int32, length)
}

// GetUint32 allocates a fresh uint32 slice of length.
func GetUint32(length int) []uint32 {
	return make([]uint32, length)
}
