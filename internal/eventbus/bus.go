package eventbus

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"hyderabadinfra/server/internal/events"
)

var (
	ErrBusFull   = errors.New("event bus buffer is full")
	ErrBusClosed = errors.New("event bus is closed")
)

// Topic names shared between producers and consumers.
const (
	TopicPropertyEvents = "property-events"
	TopicUserActivity   = "user-activity"
	TopicNotifications  = "notification-events"
	TopicSearchEvents   = "search-events"
)

// Handler consumes one delivered event. Delivery is at-least-once; handler
// errors are logged and never surfaced back to the publisher.
type Handler func(topic string, data []byte) error

// Publisher is the write side of the event channel.
type Publisher interface {
	Publish(topic string, event events.Event) error
}

type topicChannel struct {
	items    chan []byte
	handlers []Handler
	mu       sync.RWMutex
}

// Bus is an in-memory, topic-partitioned event channel. Publish hands the
// serialized event to a buffered channel and returns without waiting for
// consumer acknowledgment.
type Bus struct {
	topics     map[string]*topicChannel
	done       chan struct{}
	bufferSize int
	closed     bool
	mu         sync.RWMutex
	wg         sync.WaitGroup
	logger     *logrus.Logger
}

// NewBus creates a bus whose per-topic buffers hold bufferSize serialized events.
func NewBus(bufferSize int, logger *logrus.Logger) *Bus {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Bus{
		topics:     make(map[string]*topicChannel),
		done:       make(chan struct{}),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

func (b *Bus) topic(name string) *topicChannel {
	b.mu.Lock()
	defer b.mu.Unlock()
	tc, ok := b.topics[name]
	if !ok {
		tc = &topicChannel{items: make(chan []byte, b.bufferSize)}
		b.topics[name] = tc
		b.wg.Add(1)
		go b.process(name, tc)
	}
	return tc
}

// Publish serializes the event and enqueues it on the named topic. The send
// is non-blocking so a slow consumer can never stall a command handler.
func (b *Bus) Publish(topic string, event events.Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	b.mu.RUnlock()

	data, err := events.Encode(event)
	if err != nil {
		return err
	}

	select {
	case b.topic(topic).items <- data:
		b.logger.WithFields(logrus.Fields{
			"topic":      topic,
			"event_type": event.EventType(),
			"event_id":   event.EventID(),
		}).Debug("Published event")
		return nil
	default:
		return ErrBusFull
	}
}

// Subscribe registers a handler for every event delivered on the topic.
func (b *Bus) Subscribe(topic string, handler Handler) {
	tc := b.topic(topic)
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.handlers = append(tc.handlers, handler)
}

func (b *Bus) process(name string, tc *topicChannel) {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case data := <-tc.items:
			b.dispatch(name, tc, data)
		}
	}
}

func (b *Bus) dispatch(name string, tc *topicChannel, data []byte) {
	tc.mu.RLock()
	handlers := tc.handlers
	tc.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(name, data); err != nil {
			b.logger.WithError(err).WithField("topic", name).Error("Handler failed to process event")
		}
	}
}

// Close stops delivery and rejects further publishes.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

// Len returns the number of undelivered events on a topic.
func (b *Bus) Len(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if tc, ok := b.topics[topic]; ok {
		return len(tc.items)
	}
	return 0
}

// IsClosed reports whether the bus has been closed.
func (b *Bus) IsClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
