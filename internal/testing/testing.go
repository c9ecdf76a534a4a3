// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/shared"
)

var _ bridge.Channel = (*RecordingChannel)(nil)

// SentMessage is one outbound message captured by [RecordingChannel].
type SentMessage struct {
	ID      bridge.MessageID
	Payload any
}

// RecordingChannel is a test double for [bridge.Channel] that counts subscriptions and records sends.
//
// Inbound messages are injected with [RecordingChannel.Deliver].
type RecordingChannel struct {
	mu           sync.Mutex
	offline      bool
	sendErr      error
	handlers     map[bridge.MessageID]bridge.Handler
	subscribes   map[bridge.MessageID]int
	unsubscribes map[bridge.MessageID]int
	sent         []SentMessage
}

// NewRecordingChannel returns a connected [RecordingChannel].
func NewRecordingChannel() *RecordingChannel {
	return &RecordingChannel{
		handlers:     make(map[bridge.MessageID]bridge.Handler),
		subscribes:   make(map[bridge.MessageID]int),
		unsubscribes: make(map[bridge.MessageID]int),
	}
}

// NewOfflineChannel returns a [RecordingChannel] that reports no backend.
func NewOfflineChannel() *RecordingChannel {
	c := NewRecordingChannel()
	c.offline = true
	return c
}

// FailSends makes every following Send return err.
func (c *RecordingChannel) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

func (c *RecordingChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.offline
}

func (c *RecordingChannel) Send(id bridge.MessageID, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, SentMessage{ID: id, Payload: payload})
	return c.sendErr
}

func (c *RecordingChannel) Subscribe(id bridge.MessageID, h bridge.Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.handlers[id]; ok {
		return fmt.Errorf("%w: %s", shared.ErrAlreadySubscribed, id)
	}
	c.handlers[id] = h
	c.subscribes[id]++
	return nil
}

func (c *RecordingChannel) UnsubscribeAll(id bridge.MessageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, id)
	c.unsubscribes[id]++
}

// Deliver encodes payload as JSON and hands it to the handler subscribed for id.
//
// Returns false when nothing is subscribed.
func (c *RecordingChannel) Deliver(id bridge.MessageID, payload any) (bool, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	return c.DeliverRaw(id, data), nil
}

// DeliverRaw hands raw bytes to the handler subscribed for id.
func (c *RecordingChannel) DeliverRaw(id bridge.MessageID, data []byte) bool {
	c.mu.Lock()
	h, ok := c.handlers[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	h(data)
	return true
}

// Subscribed reports whether a handler is currently subscribed for id.
func (c *RecordingChannel) Subscribed(id bridge.MessageID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handlers[id]
	return ok
}

// SubscribeCount returns how many times id was subscribed.
func (c *RecordingChannel) SubscribeCount(id bridge.MessageID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribes[id]
}

// UnsubscribeCount returns how many times id was unsubscribed.
func (c *RecordingChannel) UnsubscribeCount(id bridge.MessageID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribes[id]
}

// TotalCalls returns the number of subscribe and unsubscribe calls across all ids.
func (c *RecordingChannel) TotalCalls() (subscribes, unsubscribes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.subscribes {
		subscribes += n
	}
	for _, n := range c.unsubscribes {
		unsubscribes += n
	}
	return subscribes, unsubscribes
}

// Sent returns a copy of every message passed to Send.
func (c *RecordingChannel) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage(nil), c.sent...)
}

// SentIDs returns the ids of every message passed to Send, in order.
func (c *RecordingChannel) SentIDs() []bridge.MessageID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]bridge.MessageID, len(c.sent))
	for i, m := range c.sent {
		ids[i] = m.ID
	}
	return ids
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
