// Package transport carries simulation output to external observers
// and inbound command bytes back. The engine depends only on the
// Publisher and Subscriber interfaces; the in-memory Bus serves batch
// runs and tests, the MQTT adapter serves live broker sessions.
package transport

import "sync"

// Publisher is the sink for simulation wire messages.
type Publisher interface {
	Publish(topic string, payload any) error
}

// MessageHandler consumes one inbound raw message.
type MessageHandler func(topic string, payload []byte)

// Subscriber delivers inbound messages matching a topic filter.
type Subscriber interface {
	Subscribe(filter string, handler MessageHandler) error
}

// Message is one published record retained by the in-memory bus.
type Message struct {
	Topic   string
	Payload any
}

// Bus is an in-memory Publisher retaining every message in publish
// order. Safe for concurrent use.
type Bus struct {
	mu       sync.Mutex
	messages []Message
}

var _ Publisher = (*Bus)(nil)

// NewBus creates an empty in-memory bus.
func NewBus() *Bus {
	return &Bus{}
}

// Publish records the message.
func (b *Bus) Publish(topic string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, Message{Topic: topic, Payload: payload})
	return nil
}

// Messages returns a copy of everything published so far.
func (b *Bus) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// MessagesOn returns the messages published to one exact topic.
func (b *Bus) MessagesOn(topic string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Message
	for _, m := range b.messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the most recent message on a topic.
func (b *Bus) Last(topic string) (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.messages) - 1; i >= 0; i-- {
		if b.messages[i].Topic == topic {
			return b.messages[i], true
		}
	}
	return Message{}, false
}

// Len returns the number of retained messages.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

// Reset drops all retained messages.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = nil
}

// Discard drops every message. Useful where output volume matters
// more than observation.
type Discard struct{}

var _ Publisher = Discard{}

// Publish ignores the message.
func (Discard) Publish(string, any) error {
	return nil
}
