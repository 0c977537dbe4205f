package domain

// Chunk is a contiguous, inclusive 1-based page range processed as one
// batch, optionally followed by a rest interval.
type Chunk struct {
	// Start is the first page in the chunk.
	Start int

	// End is the last page in the chunk, inclusive.
	End int
}

// Len returns the number of pages in the chunk.
func (c Chunk) Len() int {
	return c.End - c.Start + 1
}

// Pages returns the page numbers in the chunk, in increasing order.
func (c Chunk) Pages() []int {
	pages := make([]int, 0, c.Len())
	for p := c.Start; p <= c.End; p++ {
		pages = append(pages, p)
	}
	return pages
}

// PartitionChunks splits the inclusive page range [start..end] into
// contiguous, non-overlapping chunks of at most size pages, in
// increasing order. Every page in the range appears in exactly one
// chunk. A size below 1 is treated as 1. Returns nil when the range is
// empty.
func PartitionChunks(start, end, size int) []Chunk {
	if end < start {
		return nil
	}
	if size < 1 {
		size = 1
	}

	total := end - start + 1
	chunks := make([]Chunk, 0, (total+size-1)/size)
	for cur := start; cur <= end; cur += size {
		last := cur + size - 1
		if last > end {
			last = end
		}
		chunks = append(chunks, Chunk{Start: cur, End: last})
	}
	return chunks
}
