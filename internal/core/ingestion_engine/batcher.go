package ingestion_engine

// Batcher hands out a document's chunks in order, at most size at a time.
type Batcher struct {
	chunks []string
	size   int
}

// NewBatcher returns a Batcher over chunks. A non-positive size uses DefaultBatchSize.
// The slice is not modified.
func NewBatcher(chunks []string, size int) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batcher{chunks: chunks, size: size}
}

// Next removes and returns the next batch; ok is false once every chunk was handed out.
func (b *Batcher) Next() (batch []string, ok bool) {
	if len(b.chunks) == 0 {
		return nil, false
	}
	n := min(b.size, len(b.chunks))
	batch, b.chunks = b.chunks[:n:n], b.chunks[n:]
	return batch, true
}

// Remaining reports how many chunks have not been handed out yet.
func (b *Batcher) Remaining() int {
	return len(b.chunks)
}

// Batches splits chunks into consecutive batches of at most size.
func Batches(chunks []string, size int) [][]string {
	b := NewBatcher(chunks, size)
	var out [][]string
	for batch, ok := b.Next(); ok; batch, ok = b.Next() {
		out = append(out, batch)
	}
	return out
}
