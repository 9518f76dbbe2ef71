package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	defaultMaxConnectRetries    = 5
	defaultConnectRetryInterval = 2 * time.Second
)

type DbConfig struct {
	// InMemory keeps the whole ledger in process memory, nothing is persisted.
	// Only start-server and simulate accept it.
	InMemory             bool          `mapstructure:"in-memory"`
	Username             string        `mapstructure:"username"`
	Password             string        `mapstructure:"password"`
	DbName               string        `mapstructure:"db-name"`
	Address              string        `mapstructure:"address"`
	MaxConnectRetries    uint          `mapstructure:"max-connect-retries"`
	ConnectRetryInterval time.Duration `mapstructure:"connect-retry-interval"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.MaxConnectRetries == 0 {
		cfg.MaxConnectRetries = defaultMaxConnectRetries
	}
	if cfg.ConnectRetryInterval <= 0 {
		cfg.ConnectRetryInterval = defaultConnectRetryInterval
	}

	if cfg.InMemory {
		return nil
	}

	if cfg.DbName == "" {
		return errors.New("db-name must be set")
	}

	if cfg.Address == "" {
		return errors.New("address must be set")
	}

	addr, err := url.Parse(cfg.Address)
	if err != nil {
		return fmt.Errorf("invalid db address: %w", err)
	}
	if addr.Scheme != "mongodb" && addr.Scheme != "mongodb+srv" {
		return fmt.Errorf("invalid db address scheme %q: expected mongodb or mongodb+srv", addr.Scheme)
	}

	// credentials are optional but must come in pairs
	if (cfg.Username == "") != (cfg.Password == "") {
		return errors.New("username and password must be set together")
	}

	return nil
}
