package config

import (
	"errors"
	"time"

	queue "github.com/babylonlabs-io/staking-queue-client/config"
)

const (
	defaultQueueName              = "nft_staking_events"
	defaultQueuePublishTimeout    = 5 * time.Second
	defaultQueueMaxConnectRetries = 5
)

// QueueConfig configures the RabbitMQ publisher of staking events. The broker
// settings are the ones of the staking queue client.
type QueueConfig struct {
	queue.QueueConfig `mapstructure:",squash"`

	Enabled           bool          `mapstructure:"enabled"`
	QueueName         string        `mapstructure:"queue-name"`
	PublishTimeout    time.Duration `mapstructure:"publish-timeout"`
	MaxConnectRetries uint          `mapstructure:"max-connect-retries"`
}

func (cfg *QueueConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Url == "" {
		return errors.New("queue url must be set")
	}

	defaults := queue.DefaultQueueConfig()
	if cfg.QueueType == "" {
		cfg.QueueType = defaults.QueueType
	}
	if cfg.QueueProcessingTimeout <= 0 {
		cfg.QueueProcessingTimeout = defaults.QueueProcessingTimeout
	}
	if cfg.MsgMaxRetryAttempts <= 0 {
		cfg.MsgMaxRetryAttempts = defaults.MsgMaxRetryAttempts
	}
	if cfg.ReQueueDelayTime <= 0 {
		cfg.ReQueueDelayTime = defaults.ReQueueDelayTime
	}

	if cfg.QueueName == "" {
		cfg.QueueName = defaultQueueName
	}

	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultQueuePublishTimeout
	}

	if cfg.MaxConnectRetries == 0 {
		cfg.MaxConnectRetries = defaultQueueMaxConnectRetries
	}

	return cfg.QueueConfig.Validate()
}
