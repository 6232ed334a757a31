// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/storefront/internal/config"
)

// Transport drivers.
const (
	DriverMemory = "memory"
	DriverNATS   = "nats"
)

// Transport is a publisher and subscriber pair for one message bus.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	driver     string
	closers    []func() error
}

// Driver returns the transport driver name.
func (t *Transport) Driver() string {
	return t.driver
}

// Close closes the publisher and subscriber.
func (t *Transport) Close() error {
	var errs []error
	for _, closeFn := range t.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewTransport creates the transport selected by cfg.Driver. natsURL
// overrides cfg.NATSURL when non-empty, for the embedded server.
func NewTransport(cfg *config.EventsConfig, natsURL string, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryTransport(logger), nil
	case DriverNATS:
		if natsURL == "" {
			natsURL = cfg.NATSURL
		}
		return NewNATSTransport(cfg, natsURL, logger)
	default:
		return nil, fmt.Errorf("unknown events driver %q: %w", cfg.Driver, ErrInvalidConfig)
	}
}

// NewMemoryTransport creates an in-process transport. Messages published
// while no subscriber is attached are dropped.
func NewMemoryTransport(logger watermill.LoggerAdapter) *Transport {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
	return &Transport{
		Publisher:  ch,
		Subscriber: ch,
		driver:     DriverMemory,
		closers:    []func() error{ch.Close},
	}
}

// NewNATSTransport creates a JetStream transport. Streams are provisioned on
// first use of each topic.
func NewNATSTransport(cfg *config.EventsConfig, url string, logger watermill.LoggerAdapter) (*Transport, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	subscribers := cfg.SubscribersCount
	if subscribers <= 0 {
		subscribers = 1
	}
	closeTimeout := cfg.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = 30 * time.Second
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: subscribers,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     closeTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(5),
				natsgo.AckWait(30 * time.Second),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.DurableName,
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Transport{
		Publisher:  pub,
		Subscriber: sub,
		driver:     DriverNATS,
		closers:    []func() error{pub.Close, sub.Close},
	}, nil
}
