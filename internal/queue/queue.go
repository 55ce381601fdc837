// ABOUTME: Unbounded FIFO queue used as a non-blocking channel between goroutines
// ABOUTME: Reports receiver disconnection explicitly instead of blocking or panicking
package queue

import "sync"

// SendResult is the outcome of a non-blocking send
type SendResult int

const (
	// Delivered means the value was queued for the receiver
	Delivered SendResult = iota
	// ReceiverGone means the receiving side closed; the producer should stop
	ReceiverGone
)

func (r SendResult) String() string {
	switch r {
	case Delivered:
		return "delivered"
	case ReceiverGone:
		return "receiver gone"
	default:
		return "unknown"
	}
}

// RecvResult is the outcome of a non-blocking receive
type RecvResult int

const (
	// Received means a value was returned
	Received RecvResult = iota
	// Empty means nothing is queued right now
	Empty
	// Disconnected means the sender closed and the backlog is drained
	Disconnected
)

func (r RecvResult) String() string {
	switch r {
	case Received:
		return "received"
	case Empty:
		return "empty"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Sender is the producer endpoint
type Sender[T any] interface {
	Send(v T) SendResult
	CloseSend()
}

// Receiver is the consumer endpoint
type Receiver[T any] interface {
	TryRecv() (T, RecvResult)
	Drain() []T
	Len() int
	Close()
}

// Queue is an unbounded multi-producer FIFO. Sends never block and never
// report "full"; receives never block and treat an empty queue as normal.
type Queue[T any] struct {
	mu         sync.Mutex
	items      []T
	recvClosed bool
	sendClosed bool
}

// New creates an empty queue
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Send appends v unless the receiver has closed
func (q *Queue[T]) Send(v T) SendResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.recvClosed {
		return ReceiverGone
	}
	q.items = append(q.items, v)
	return Delivered
}

// TryRecv pops the oldest value without blocking
func (q *Queue[T]) TryRecv() (T, RecvResult) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		if q.sendClosed || q.recvClosed {
			return zero, Disconnected
		}
		return zero, Empty
	}

	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, Received
}

// Drain removes and returns everything currently queued, oldest first
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued values
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close drops the receiving side. Queued values are discarded and every
// later Send reports ReceiverGone.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recvClosed = true
	q.items = nil
}

// CloseSend marks the producer as finished. The receiver still drains the
// backlog before seeing Disconnected.
func (q *Queue[T]) CloseSend() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sendClosed = true
}
