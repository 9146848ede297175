package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"media-slideshow/internal/database"
	"media-slideshow/internal/logging"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopic is the topic prefix when none is configured.
const DefaultTopic = "slideshow"

const (
	stateOnline  = "online"
	stateOffline = "offline"
)

// DefaultBacklog is how many plays may wait for the broker before new ones
// are dropped.
const DefaultBacklog = 64

var (
	errNotConnected = errors.New("mqtt not connected")
	errBacklogFull  = errors.New("mqtt publish backlog full")
	errClosed       = errors.New("mqtt publisher closed")
)

// Config configures a Publisher.
type Config struct {
	// Broker is a URL such as tcp://broker:1883.
	Broker   string
	Topic    string
	ClientID string
	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout time.Duration
	// PublishTimeout bounds a single publish.
	PublishTimeout time.Duration
	// Backlog is the number of plays queued for the publish worker.
	Backlog int
	// DrainTimeout bounds how long Close waits for queued plays.
	DrainTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 2 * time.Second
	}
	if c.Backlog <= 0 {
		c.Backlog = DefaultBacklog
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 2 * time.Second
	}
	return c
}

// Publisher sends play events to MQTT from a background worker, so callers
// never wait on the broker.
type Publisher struct {
	config Config
	client mqtt.Client
	plays  chan PlayEvent
	done   chan struct{}

	mu        sync.Mutex
	closed    bool
	published uint64
	failed    uint64
}

// PlayEvent is the JSON payload of a play.
type PlayEvent struct {
	Session      string    `json:"session"`
	Path         string    `json:"path"`
	Kind         string    `json:"kind"`
	Announcement bool      `json:"announcement"`
	StartedAt    time.Time `json:"startedAt"`
	DurationMs   int64     `json:"durationMs"`
	Outcome      string    `json:"outcome"`
}

// Connect dials the broker. Reconnection after the first connection is
// handled by the client.
func Connect(config Config) (*Publisher, error) {
	config = config.withDefaults()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetConnectTimeout(config.ConnectTimeout)
	opts.SetWill(stateTopic(config.Topic), stateOffline, 1, true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logging.Info("MQTT connected to %s", config.Broker)
		c.Publish(stateTopic(config.Topic), 1, true, stateOnline)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logging.Warn("MQTT connection lost, reconnecting: %v", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(config.ConnectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connection to %s timed out", config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection to %s failed: %w", config.Broker, err)
	}

	return newPublisher(config, client), nil
}

func newPublisher(config Config, client mqtt.Client) *Publisher {
	config = config.withDefaults()
	p := &Publisher{
		config: config,
		client: client,
		plays:  make(chan PlayEvent, config.Backlog),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// RecordPlay queues play for <topic>/plays and returns without waiting for
// the broker. It fails only when the client is offline or the backlog is
// full.
func (p *Publisher) RecordPlay(_ context.Context, play database.Play) error {
	if !p.client.IsConnected() {
		p.countFailure()
		return errNotConnected
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errClosed
	}
	select {
	case p.plays <- newPlayEvent(play):
		return nil
	default:
		p.failed++
		return errBacklogFull
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.plays {
		if err := p.publish(event); err != nil {
			p.countFailure()
			logging.Warn("MQTT play event for %s not delivered: %v", event.Path, err)
			continue
		}
		p.mu.Lock()
		p.published++
		p.mu.Unlock()
	}
}

func (p *Publisher) publish(event PlayEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode play: %w", err)
	}

	token := p.client.Publish(playsTopic(p.config.Topic), 1, false, payload)
	if !token.WaitTimeout(p.config.PublishTimeout) {
		return fmt.Errorf("publish to %s timed out", playsTopic(p.config.Topic))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	logging.Debug("Published play of %s (%d bytes)", event.Path, len(payload))
	return nil
}

// Stats returns the published and failed counts.
func (p *Publisher) Stats() (published, failed uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published, p.failed
}

// Close stops accepting plays, waits up to DrainTimeout for the backlog,
// then marks the player offline and disconnects.
func (p *Publisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.plays)
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.config.DrainTimeout)
	select {
	case <-p.done:
	case <-timer.C:
		logging.Warn("MQTT backlog not drained, %d plays dropped", len(p.plays))
	}
	timer.Stop()

	if p.client.IsConnected() {
		token := p.client.Publish(stateTopic(p.config.Topic), 1, true, stateOffline)
		token.WaitTimeout(p.config.PublishTimeout)
	}
	p.client.Disconnect(250)
}

func (p *Publisher) countFailure() {
	p.mu.Lock()
	p.failed++
	p.mu.Unlock()
}

func newPlayEvent(play database.Play) PlayEvent {
	return PlayEvent{
		Session:      play.Session,
		Path:         play.Path,
		Kind:         play.Kind,
		Announcement: play.Announcement,
		StartedAt:    play.StartedAt.UTC(),
		DurationMs:   play.Duration.Milliseconds(),
		Outcome:      play.Outcome,
	}
}

func playsTopic(prefix string) string { return prefix + "/plays" }
func stateTopic(prefix string) string { return prefix + "/state" }
