// Package bus is the in-process notification fabric between the fetch
// worker, the configuration watcher and the render loop. Signals carry no
// payload; subscribers coalesce bursts (a slow consumer sees at least one
// notification, never a backlog).
package bus

import "sync"

// Topics.
const (
	// TopicAssetAvailable: a previously missing remote asset was fetched;
	// the current page should force a full redraw.
	TopicAssetAvailable = "asset.available"
	// TopicConfigChanged: the configuration file changed on disk.
	TopicConfigChanged = "config.changed"
)

// Bus is a minimal topic-based signal broadcaster.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

func New() *Bus {
	return &Bus{subs: map[string][]chan struct{}{}}
}

// Subscribe returns a channel that receives a signal per Publish burst on
// the topic.
func (b *Bus) Subscribe(topic string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()
	return ch
}

// Publish signals every subscriber of the topic without blocking.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	subs := b.subs[topic]
	b.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
