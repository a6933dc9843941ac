// Package config holds the small set of knobs the transport layer needs.
// It lifts fenrir's hardcoded constants (defaultNWorkers, MAX_RECV_SIZE,
// defaultConnTimeout) into named, overridable fields.
package config

import "time"

const (
	DefaultAddress        = "0.0.0.0"
	DefaultPort           = 9001
	DefaultWorkerPoolSize = 10
	DefaultMaxMessageSize = 4 * 1024
	DefaultConnTimeout    = time.Second
)

// Config configures a transport.Server.
type Config struct {
	Address        string
	Port           int
	WorkerPoolSize int
	MaxMessageSize int
	ConnTimeout    time.Duration
}

// Default returns a Config populated with fenrir-derived defaults.
func Default() Config {
	return Config{
		Address:        DefaultAddress,
		Port:           DefaultPort,
		WorkerPoolSize: DefaultWorkerPoolSize,
		MaxMessageSize: DefaultMaxMessageSize,
		ConnTimeout:    DefaultConnTimeout,
	}
}
