package chunking

import "fmt"

// Chunk is one contiguous byte range of a payload.
type Chunk struct {
	Index  int
	Offset int64
	Length int64
}

// End returns the exclusive end offset of the chunk.
func (c Chunk) End() int64 {
	return c.Offset + c.Length
}

// Plan partitions [0, TotalSize) into chunks of ChunkByteCount bytes; only the
// last chunk may be shorter.
type Plan struct {
	TotalSize      int64
	ChunkByteCount int64
	Chunks         []Chunk
}

// NumChunks returns ceil(totalSize / chunkByteCount).
func NumChunks(totalSize, chunkByteCount int64) int {
	if totalSize <= 0 || chunkByteCount <= 0 {
		return 0
	}
	return int((totalSize + chunkByteCount - 1) / chunkByteCount)
}

// NewPlan computes the chunk partition of a payload.
func NewPlan(totalSize, chunkByteCount int64) (Plan, error) {
	if chunkByteCount <= 0 {
		return Plan{}, fmt.Errorf("chunk byte count must be positive, got %d", chunkByteCount)
	}
	if totalSize < 0 {
		return Plan{}, fmt.Errorf("total size must not be negative, got %d", totalSize)
	}

	n := NumChunks(totalSize, chunkByteCount)
	chunks := make([]Chunk, 0, n)
	for i := 0; i < n; i++ {
		offset := int64(i) * chunkByteCount
		chunks = append(chunks, Chunk{
			Index:  i,
			Offset: offset,
			Length: min(chunkByteCount, totalSize-offset),
		})
	}

	return Plan{
		TotalSize:      totalSize,
		ChunkByteCount: chunkByteCount,
		Chunks:         chunks,
	}, nil
}
