// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/metrics"
)

// DefaultChannel is used when Config.Channel is empty.
const DefaultChannel = "projector:playback"

const metricSource = "redis"

// Config holds Redis connection settings.
type Config struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
	Channel  string // pub/sub channel carrying Message payloads
}

// Source applies messages published on a Redis channel to a Sink.
type Source struct {
	client  *redis.Client
	channel string
	sink    Sink
	logger  zerolog.Logger
	ready   chan struct{}
}

// NewSource connects to Redis and verifies the connection.
func NewSource(cfg Config, sink Sink) (*Source, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	src := NewSourceFromClient(client, cfg.Channel, sink)
	src.logger.Info().
		Str("addr", cfg.Addr).
		Str("channel", src.channel).
		Msg("connected to Redis playback bus")
	return src, nil
}

// NewSourceFromClient wraps an existing client.
func NewSourceFromClient(client *redis.Client, channel string, sink Sink) *Source {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Source{
		client:  client,
		channel: channel,
		sink:    sink,
		logger:  xglog.WithComponent("playbus"),
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the subscription is confirmed by the server.
func (s *Source) Ready() <-chan struct{} { return s.ready }

// Run subscribes to the channel and applies messages until ctx is done.
// Malformed messages are logged and counted, never fatal.
func (s *Source) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer func() { _ = pubsub.Close() }()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	close(s.ready)

	s.logger.Info().
		Str(xglog.FieldEvent, "playbus.subscribed").
		Str("channel", s.channel).
		Msg("listening for playback messages")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("playback subscription closed")
			}
			s.handle(msg.Payload)
		}
	}
}

func (s *Source) handle(payload string) {
	msg, err := Decode([]byte(payload))
	if err == nil {
		err = Apply(s.sink, msg)
	}
	if err != nil {
		metrics.IncPlaybackMessage(metricSource, KindLabel(msg.Type), "rejected")
		s.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "playbus.message_rejected").
			Int("bytes", len(payload)).
			Msg("dropping playback message")
		return
	}
	metrics.IncPlaybackMessage(metricSource, KindLabel(msg.Type), "applied")
}

// Close releases the Redis client.
func (s *Source) Close() error {
	return s.client.Close()
}

// Publish sends msg on channel. Producers use it to drive remote projectors.
func Publish(ctx context.Context, client *redis.Client, channel string, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if channel == "" {
		channel = DefaultChannel
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal playback message: %w", err)
	}
	if err := client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
