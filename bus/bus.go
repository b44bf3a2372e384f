// Package bus implements the bounded message queue connecting the
// ingestor and the CLI's shutdown signal to the query service: a
// buffered channel of a tagged struct, giving blocking-write
// backpressure once the buffer fills.
package bus

import (
	"github.com/llqtool/llq/index"
	"github.com/llqtool/llq/query"
)

// Capacity is the bus's buffer size.
const Capacity = 100

// Kind tags which field of Msg is populated.
type Kind uint8

const (
	KindIndex Kind = iota
	KindQuery
	KindStop
)

// Msg is the tagged union carried over the bus: an Index partial, a
// Query, or a stop signal.
type Msg struct {
	Kind  Kind
	Index *index.Index
	Query query.Query
}

// Bus is a bounded multi-producer, single-consumer channel of Msg.
// Sends block once Capacity messages are buffered.
type Bus struct {
	ch chan Msg
}

// New returns an empty Bus with room for Capacity messages.
func New() *Bus {
	return &Bus{ch: make(chan Msg, Capacity)}
}

// SendIndex publishes a partial Index update, handing ownership of idx
// to whoever reads it off the bus.
func (b *Bus) SendIndex(idx *index.Index) {
	b.ch <- Msg{Kind: KindIndex, Index: idx}
}

// SendQuery publishes a freshly parsed Query from the UI.
func (b *Bus) SendQuery(q query.Query) {
	b.ch <- Msg{Kind: KindQuery, Query: q}
}

// SendStop publishes the cooperative shutdown signal.
func (b *Bus) SendStop() {
	b.ch <- Msg{Kind: KindStop}
}

// Recv blocks until a message is available.
func (b *Bus) Recv() Msg {
	return <-b.ch
}
