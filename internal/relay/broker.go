package relay

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Broker fans encoded envelopes out to every relay instance, including the
// publishing one. Subscribers see messages in publish order.
type Broker interface {
	Publish(ctx context.Context, data []byte) error
	Subscribe(ctx context.Context) (<-chan []byte, error)
	Close() error
}

// RedisBroker shares one pub/sub channel between all relay instances.
type RedisBroker struct {
	client  *redis.Client
	channel string
}

func NewRedisBroker(client *redis.Client, channel string) *RedisBroker {
	return &RedisBroker{client: client, channel: channel}
}

func (rb *RedisBroker) Publish(ctx context.Context, data []byte) error {
	return rb.client.Publish(ctx, rb.channel, data).Err()
}

func (rb *RedisBroker) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := rb.client.Subscribe(ctx, rb.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	out := make(chan []byte, 256)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (rb *RedisBroker) Close() error {
	return rb.client.Close()
}

// LocalBroker is the in-process broker for a single relay instance.
type LocalBroker struct {
	mu     sync.RWMutex
	subs   []chan []byte
	closed bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

func (lb *LocalBroker) Publish(ctx context.Context, data []byte) error {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	if lb.closed {
		return context.Canceled
	}
	for _, sub := range lb.subs {
		select {
		case sub <- data:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (lb *LocalBroker) Subscribe(ctx context.Context) (<-chan []byte, error) {
	ch := make(chan []byte, 256)
	lb.mu.Lock()
	lb.subs = append(lb.subs, ch)
	lb.mu.Unlock()
	go func() {
		<-ctx.Done()
		lb.remove(ch)
	}()
	return ch, nil
}

func (lb *LocalBroker) remove(ch chan []byte) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	for i, sub := range lb.subs {
		if sub == ch {
			lb.subs = append(lb.subs[:i], lb.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (lb *LocalBroker) Close() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.closed = true
	for _, sub := range lb.subs {
		close(sub)
	}
	lb.subs = nil
	return nil
}
