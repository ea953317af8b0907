package events

import (
	"context"
	"errors"
	"sync"
)

// ErrEventQueueClosed 表示事件队列已关闭。
var ErrEventQueueClosed = errors.New("event queue closed")

// EventQueue 是 EQ，负责把执行事件广播给订阅者。
// 控制台输出不能丢，因此 Publish 在订阅者缓存满时阻塞，直到 ctx 结束或队列关闭。
type EventQueue struct {
	mu     sync.RWMutex
	subs   []chan Event
	buffer int
	closed bool
	done   chan struct{}
	once   sync.Once
	log    eventLogger
}

// NewEventQueue 创建事件队列，buffer 是每个订阅者的缓存大小。
func NewEventQueue(buffer int) *EventQueue {
	if buffer <= 0 {
		buffer = 256
	}
	return &EventQueue{buffer: buffer, done: make(chan struct{}), log: newEventLogger(nil)}
}

// Subscribe 订阅事件流。通道会在 Close 时关闭。
func (q *EventQueue) Subscribe() <-chan Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	ch := make(chan Event, q.buffer)
	q.subs = append(q.subs, ch)
	return ch
}

// Publish 发布事件到所有订阅者。
func (q *EventQueue) Publish(ctx context.Context, event Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrEventQueueClosed
	}
	q.log.published(event)
	for _, ch := range q.subs {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return ErrEventQueueClosed
		}
	}
	return nil
}

// Close 关闭事件队列和所有订阅通道。
func (q *EventQueue) Close() {
	q.once.Do(func() { close(q.done) })
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for _, ch := range q.subs {
		close(ch)
	}
	q.subs = nil
}

// SubscriberCount 返回当前订阅者数量。
func (q *EventQueue) SubscriberCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.subs)
}

// Drain 阻塞等待第一条事件，然后非阻塞地取走最多 max-1 条已就绪的事件。
// 通道关闭且没有事件时 ok 为 false。
func Drain(ch <-chan Event, max int) (batch []Event, ok bool) {
	first, ok := <-ch
	if !ok {
		return nil, false
	}
	if max <= 0 {
		max = 1
	}
	batch = append(batch, first)
	for len(batch) < max {
		select {
		case ev, open := <-ch:
			if !open {
				return batch, true
			}
			batch = append(batch, ev)
		default:
			return batch, true
		}
	}
	return batch, true
}
