package mqtt

// bufferedMsg is a serialized message held for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer holds at most capacity items in arrival order. When full, the
// oldest item is overwritten. Not safe for concurrent use.
type ringBuffer[T any] struct {
	items   []T
	start   int // index of the oldest item
	n       int
	dropped bool // an item was overwritten since the last drain
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	return &ringBuffer[T]{items: make([]T, capacity)}
}

// push stores v. It returns true when v displaced an item and no item had
// been displaced since the last drain, so callers log overflow once.
func (r *ringBuffer[T]) push(v T) bool {
	size := len(r.items)
	if r.n < size {
		r.items[(r.start+r.n)%size] = v
		r.n++
		return false
	}

	r.items[r.start] = v
	r.start = (r.start + 1) % size
	first := !r.dropped
	r.dropped = true
	return first
}

// drain removes and returns every item, oldest first.
func (r *ringBuffer[T]) drain() []T {
	if r.n == 0 {
		return nil
	}

	size := len(r.items)
	out := make([]T, 0, r.n)
	for i := 0; i < r.n; i++ {
		out = append(out, r.items[(r.start+i)%size])
	}

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.start, r.n, r.dropped = 0, 0, false
	return out
}

func (r *ringBuffer[T]) len() int {
	return r.n
}
