package mqttbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/daikin-humid/internal/config"
	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
	"github.com/muurk/daikin-humid/internal/logging"
	"github.com/muurk/daikin-humid/internal/protocol"
)

const (
	qos = 0

	// publishTimeout bounds every wait on a paho token.
	publishTimeout = 5 * time.Second

	// disconnectQuiesce is how long Disconnect lets in-flight work finish, in ms.
	disconnectQuiesce = 250

	// commandQueue is how many commands may wait for the device.
	commandQueue = 8
)

// Coordinator is the part of the coordinator the bridge uses.
// *coordinator.Coordinator satisfies it.
type Coordinator interface {
	SetControl(ctx context.Context, cmd deviceclient.ControlCommand) (protocol.Response, error)
	CurrentSnapshot() *coordinator.Snapshot
	Status() coordinator.Status
	Subscribe(o coordinator.Observer) coordinator.SubscriptionID
	Unsubscribe(id coordinator.SubscriptionID)
}

// Bridge exposes the unit to Home Assistant over MQTT.
//
// On every (re)connect it publishes discovery configs, subscribes to the
// command topics and republishes availability and state. After that it
// follows coordinator updates.
type Bridge struct {
	discoveryPrefix string
	topics          Topics
	device          Device
	coord           Coordinator
	logger          *zap.Logger

	commands chan deviceclient.ControlCommand
	updates  chan coordinator.Update

	mu     sync.Mutex
	client mqtt.Client
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge's logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		b.logger = logging.OrNop(l)
	}
}

// New creates a bridge for device. It does not connect until Run.
func New(cfg config.MQTTConfig, device Device, coord Coordinator, opts ...Option) *Bridge {
	b := &Bridge{
		discoveryPrefix: cfg.DiscoveryPrefix,
		topics:          Topics{Prefix: cfg.TopicPrefix},
		device:          device,
		coord:           coord,
		logger:          zap.NewNop(),
		commands:        make(chan deviceclient.ControlCommand, commandQueue),
		updates:         make(chan coordinator.Update, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Topics returns the bridge's topic layout.
func (b *Bridge) Topics() Topics {
	return b.topics
}

// ClientOptions returns paho options for cfg wired to this bridge: a
// retained offline will, auto-reconnect and the on-connect handler that
// (re)installs discovery and subscriptions.
func (b *Bridge) ClientOptions(cfg config.MQTTConfig) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false).
		SetBinaryWill(b.topics.Availability(), []byte(PayloadOffline), qos, true).
		SetOnConnectHandler(b.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			b.logger.Warn("MQTT connection lost", zap.Error(err))
		}).
		SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
			b.logger.Info("MQTT reconnecting")
		})
}

// Run connects client, follows coordinator updates and executes commands
// until ctx is done. It then marks the device offline and disconnects.
func (b *Bridge) Run(ctx context.Context, client mqtt.Client) error {
	b.mu.Lock()
	b.client = client
	b.mu.Unlock()

	if t := client.Connect(); !waitToken(ctx, t) {
		return fmt.Errorf("mqtt connect: %w", ctx.Err())
	} else if err := t.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	b.logger.Info("MQTT connected", zap.String("state_topic", b.topics.State()))

	id := b.coord.Subscribe(b.handleUpdate)
	defer b.coord.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			b.publish(b.topics.Availability(), true, []byte(PayloadOffline))
			client.Disconnect(disconnectQuiesce)
			b.logger.Info("MQTT bridge stopped")
			return ctx.Err()
		case u := <-b.updates:
			b.publishState(u.Snapshot, u.OK())
		case cmd := <-b.commands:
			b.execute(ctx, cmd)
		}
	}
}

// onConnect runs on every successful (re)connect.
func (b *Bridge) onConnect(client mqtt.Client) {
	b.mu.Lock()
	b.client = client
	b.mu.Unlock()

	if err := b.PublishDiscovery(); err != nil {
		b.logger.Error("Failed to publish discovery configs", zap.Error(err))
	}

	t := client.Subscribe(b.topics.CommandFilter(), qos, b.handleMessage)
	if t.WaitTimeout(publishTimeout) && t.Error() != nil {
		b.logger.Error("Failed to subscribe to command topics",
			zap.String("filter", b.topics.CommandFilter()),
			zap.Error(t.Error()),
		)
	}

	status := b.coord.Status()
	b.publishState(b.coord.CurrentSnapshot(), status.State != coordinator.StateFailed)
}

// PublishDiscovery publishes the retained discovery configs.
func (b *Bridge) PublishDiscovery() error {
	messages, err := DiscoveryMessages(b.discoveryPrefix, b.topics, b.device)
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range messages {
		if err := b.publish(m.Topic, true, m.Payload); err != nil {
			errs = append(errs, err)
		}
	}
	b.logger.Debug("Published discovery configs", zap.Int("count", len(messages)))
	return errors.Join(errs...)
}

// handleUpdate follows coordinator cycles. A failed cycle marks the device
// unavailable but leaves the last state in place.
//
// It runs on the refreshing goroutine, so it only hands the update to Run.
// Only the latest update is kept; an older unpublished one is replaced.
func (b *Bridge) handleUpdate(u coordinator.Update) {
	for {
		select {
		case b.updates <- u:
			return
		default:
		}
		select {
		case <-b.updates:
		default:
		}
	}
}

func (b *Bridge) publishState(snap *coordinator.Snapshot, available bool) {
	if snap == nil {
		// Nothing to show yet; entities stay unavailable until the first poll.
		available = false
	} else if available {
		payload, err := json.Marshal(NewStatePayload(snap))
		if err != nil {
			b.logger.Error("Failed to encode state", zap.Error(err))
			return
		}
		if err := b.publish(b.topics.State(), true, payload); err != nil {
			b.logger.Warn("Failed to publish state", zap.Error(err))
		}
	}

	availability := PayloadOffline
	if available {
		availability = PayloadOnline
	}
	if err := b.publish(b.topics.Availability(), true, []byte(availability)); err != nil {
		b.logger.Warn("Failed to publish availability", zap.Error(err))
	}
}

// handleMessage runs on paho's goroutine. It only queues: the device call
// and the follow-up refresh publish, and must not block paho's router.
func (b *Bridge) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	cmd, err := ParseCommand(b.topics, msg.Topic(), msg.Payload())
	if err != nil {
		b.logger.Warn("Ignoring MQTT command", zap.Error(err))
		return
	}

	select {
	case b.commands <- cmd:
	default:
		b.logger.Warn("Command queue full, dropping command",
			zap.String("topic", msg.Topic()),
			zap.String("command", cmd.String()),
		)
	}
}

func (b *Bridge) execute(ctx context.Context, cmd deviceclient.ControlCommand) {
	b.logger.Info("Control command via MQTT", zap.String("command", cmd.String()))

	resp, err := b.coord.SetControl(ctx, cmd)
	if err != nil {
		b.logger.Warn("Control command failed",
			zap.String("command", cmd.String()),
			zap.String("reason", deviceclient.ShortMessage(err)),
			zap.Error(err),
		)
		return
	}
	if ret := resp.Value(protocol.KeyReturn); ret != protocol.ReturnOK {
		b.logger.Warn("Device rejected control command",
			zap.String("command", cmd.String()),
			zap.String("ret", ret),
		)
	}
}

func (b *Bridge) publish(topic string, retained bool, payload []byte) error {
	b.mu.Lock()
	client := b.client
	b.mu.Unlock()
	if client == nil {
		return errors.New("mqtt client not attached")
	}

	t := client.Publish(topic, qos, retained, payload)
	if !t.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// waitToken waits for t or ctx. It reports false if ctx ended first.
func waitToken(ctx context.Context, t mqtt.Token) bool {
	select {
	case <-t.Done():
		return true
	case <-ctx.Done():
		return false
	}
}
