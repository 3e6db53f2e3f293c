/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus relays in-process events to NATS so external displays
// and integrations can follow the jukebox without polling it.
package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/skald_jukebox/internal/events"
)

// relayedTypes is the set of local events forwarded to NATS.
var relayedTypes = []events.EventType{
	events.EventNowPlaying,
	events.EventTrackEnded,
	events.EventPlaybackPaused,
	events.EventQueueUpdated,
	events.EventCatalogSynced,
}

// Relay forwards local bus events to NATS subjects skald.events.<type>.
type Relay struct {
	conn   *nats.Conn
	bus    *events.Bus
	log    zerolog.Logger
	nodeID string
	subs   map[events.EventType]events.Subscriber
	done   chan struct{}
}

// message is the wire form of a relayed event.
type message struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"`
}

// NewRelay connects to NATS and starts forwarding bus events. The relay
// reconnects indefinitely; publishes during an outage are buffered by the
// client and flushed on reconnect.
func NewRelay(natsURL string, bus *events.Bus, log zerolog.Logger) (*Relay, error) {
	conn, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	r := &Relay{
		conn:   conn,
		bus:    bus,
		log:    log.With().Str("component", "eventbus").Logger(),
		nodeID: nodeID(),
		subs:   make(map[events.EventType]events.Subscriber, len(relayedTypes)),
		done:   make(chan struct{}),
	}

	for _, et := range relayedTypes {
		sub := bus.Subscribe(et)
		r.subs[et] = sub
		go r.forward(et, sub)
	}

	r.log.Info().Str("url", natsURL).Msg("event relay connected")
	return r, nil
}

func (r *Relay) forward(et events.EventType, sub events.Subscriber) {
	subject := "skald.events." + string(et)
	for {
		select {
		case <-r.done:
			return
		case payload, ok := <-sub:
			if !ok {
				return
			}
			data, err := json.Marshal(message{
				EventType: et,
				Payload:   payload,
				Timestamp: time.Now(),
				NodeID:    r.nodeID,
				MessageID: uuid.NewString(),
			})
			if err != nil {
				r.log.Error().Err(err).Str("subject", subject).Msg("marshal event failed")
				continue
			}
			if err := r.conn.Publish(subject, data); err != nil {
				r.log.Warn().Err(err).Str("subject", subject).Msg("publish failed")
			}
		}
	}
}

// Close detaches from the local bus and drains the NATS connection.
func (r *Relay) Close() {
	close(r.done)
	for et, sub := range r.subs {
		r.bus.Unsubscribe(et, sub)
	}
	if err := r.conn.Drain(); err != nil {
		r.log.Warn().Err(err).Msg("drain failed")
	}
}

func nodeID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "skald"
	}
	return host + "-" + uuid.NewString()[:8]
}
