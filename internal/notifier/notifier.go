// Package notifier is the in-process observer registry used to tell
// interested views that persisted data changed. Delivery is synchronous
// and payload-less; subscribers re-read whatever they need.
package notifier

import (
	"sort"
	"sync"
)

// Topic names a kind of change.
type Topic string

const (
	// JournalUpdated is published after every journal create or delete.
	JournalUpdated  Topic = "journalUpdated"
	ReadingsUpdated Topic = "readingsUpdated"
	SessionChanged  Topic = "sessionChanged"
	// StorageChanged is published when another process wrote the profile.
	StorageChanged Topic = "storageChanged"
)

type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic]map[int]func()
}

// Default is the process-wide notifier the repositories publish to unless
// they are given another one.
var Default = New()

func New() *Notifier {
	return &Notifier{subs: make(map[Topic]map[int]func())}
}

// Subscribe registers fn for topic and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (n *Notifier) Subscribe(topic Topic, fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.subs[topic] == nil {
		n.subs[topic] = make(map[int]func())
	}
	n.subs[topic][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[topic], id)
	}
}

// Publish calls every subscriber of topic in subscription order. The
// registry lock is not held while subscribers run, so a subscriber may
// subscribe, unsubscribe or publish.
func (n *Notifier) Publish(topic Topic) {
	n.mu.Lock()
	ids := make([]int, 0, len(n.subs[topic]))
	for id := range n.subs[topic] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, n.subs[topic][id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribers reports how many callbacks are registered for topic.
func (n *Notifier) Subscribers(topic Topic) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[topic])
}

// Subscribe registers fn on Default.
func Subscribe(topic Topic, fn func()) func() {
	return Default.Subscribe(topic, fn)
}

// Publish publishes topic on Default.
func Publish(topic Topic) {
	Default.Publish(topic)
}
