package mqttbridge

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// doneToken is a completed paho token.
type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *doneToken) Error() error { return t.err }

// pendingToken is a paho token that completes only once release is closed.
type pendingToken struct {
	release chan struct{}
}

func (t *pendingToken) Wait() bool {
	<-t.release
	return true
}

func (t *pendingToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.release:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *pendingToken) Done() <-chan struct{} { return t.release }
func (t *pendingToken) Error() error          { return nil }

type published struct {
	topic    string
	retained bool
	payload  string
}

// fakeClient records publishes and subscriptions in memory.
type fakeClient struct {
	mu         sync.Mutex
	published  []published
	handlers   map[string]mqtt.MessageHandler
	connected  bool
	onConnect  func(mqtt.Client)
	publishErr error
	// stall, when set, makes publishes pending until it is closed.
	stall chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: map[string]mqtt.MessageHandler{}}
}

func (c *fakeClient) IsConnected() bool      { return c.connected }
func (c *fakeClient) IsConnectionOpen() bool { return c.connected }

func (c *fakeClient) Connect() mqtt.Token {
	c.mu.Lock()
	c.connected = true
	onConnect := c.onConnect
	c.mu.Unlock()
	if onConnect != nil {
		onConnect(c)
	}
	return &doneToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	var body string
	switch p := payload.(type) {
	case []byte:
		body = string(p)
	case string:
		body = p
	}
	c.published = append(c.published, published{topic: topic, retained: retained, payload: body})
	if c.stall != nil {
		return &pendingToken{release: c.stall}
	}
	return &doneToken{err: c.publishErr}
}

func (c *fakeClient) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = callback
	return &doneToken{}
}

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	for topic := range filters {
		c.Subscribe(topic, 0, callback)
	}
	return &doneToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.handlers, t)
	}
	return &doneToken{}
}

func (c *fakeClient) AddRoute(topic string, callback mqtt.MessageHandler) {
	c.Subscribe(topic, 0, callback)
}

func (c *fakeClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

// deliver invokes the handler registered for filter with a message on topic.
func (c *fakeClient) deliver(filter, topic, payload string) bool {
	c.mu.Lock()
	h := c.handlers[filter]
	c.mu.Unlock()
	if h == nil {
		return false
	}
	h(c, &fakeMessage{topic: topic, payload: []byte(payload)})
	return true
}

func (c *fakeClient) messages() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.published...)
}

// last returns the last payload published on topic.
func (c *fakeClient) last(topic string) (published, bool) {
	msgs := c.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].topic == topic {
			return msgs[i], true
		}
	}
	return published{}, false
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}
