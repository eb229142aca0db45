package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// IngestPolicy bounds the timestamps the ingestion path accepts. Field
// devices carry drifting clocks; readings outside these bounds are rejected
// instead of polluting history.
type IngestPolicy struct {
	// MaxFutureSkew rejects readings reported further than this ahead of
	// server time. Zero disables the check.
	MaxFutureSkew time.Duration `mapstructure:"maxFutureSkew"`
	// MaxPastAge rejects readings older than this. Zero disables the check.
	MaxPastAge time.Duration `mapstructure:"maxPastAge"`
}

func DefaultIngestPolicy() IngestPolicy {
	return IngestPolicy{
		MaxFutureSkew: time.Hour,
		MaxPastAge:    0,
	}
}

// IngestPolicyHolder hot-reloads the policy from voltgrid.yml so skew limits
// can be tuned without a restart.
type IngestPolicyHolder struct {
	current atomic.Value // holds IngestPolicy
}

func NewIngestPolicyHolder() (*IngestPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("voltgrid")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/voltgrid/config")
	v.AddConfigPath("/etc/voltgrid")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VOLTGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultIngestPolicy()
		v.SetDefault("ingest.maxFutureSkew", defaults.MaxFutureSkew)
		v.SetDefault("ingest.maxPastAge", defaults.MaxPastAge)
	}

	var policy IngestPolicy
	if err := v.UnmarshalKey("ingest", &policy); err != nil {
		return nil, err
	}
	if err := validateIngestPolicy(policy); err != nil {
		return nil, err
	}

	holder := &IngestPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated IngestPolicy
		if err := v.UnmarshalKey("ingest", &updated); err != nil {
			log.Printf("[ingest-policy] reload failed: %v", err)
			return
		}
		if err := validateIngestPolicy(updated); err != nil {
			log.Printf("[ingest-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[ingest-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticIngestPolicyHolder wraps a fixed policy, bypassing file loading.
func NewStaticIngestPolicyHolder(policy IngestPolicy) *IngestPolicyHolder {
	holder := &IngestPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *IngestPolicyHolder) Get() IngestPolicy {
	return h.current.Load().(IngestPolicy)
}

func validateIngestPolicy(policy IngestPolicy) error {
	if policy.MaxFutureSkew < 0 {
		return errors.New("ingest.maxFutureSkew cannot be negative")
	}
	if policy.MaxPastAge < 0 {
		return errors.New("ingest.maxPastAge cannot be negative")
	}
	return nil
}
