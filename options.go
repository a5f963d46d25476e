package usbtmc

import (
	"log/slog"
	"time"
)

// Config holds session construction parameters.
type Config struct {
	// Serial, when non-empty, restricts Open to the device whose serial
	// number descriptor matches it verbatim.
	Serial string

	// ShortTimeout bounds control transfers and small bulk transfers.
	ShortTimeout time.Duration

	// MinBulkSpeed is the assumed sustained bulk transfer floor, in
	// bytes per second. Bulk transfer timeouts are computed as
	// ShortTimeout + size/MinBulkSpeed.
	MinBulkSpeed float64

	// Behavior overrides the profile resolved from the vendor and
	// product IDs.
	Behavior *Behavior

	// Transport supplies the USB transport; defaults to usbfs.
	Transport Transport

	// Logger receives debug records for transfers; defaults to discard.
	Logger *slog.Logger
}

func defaultConfig() Config {
	return Config{
		ShortTimeout: 500 * time.Millisecond,
		MinBulkSpeed: 500_000,
		Transport:    NewUsbfsTransport(),
		Logger:       slog.New(slog.DiscardHandler),
	}
}

// Option is a functional option for configuring a session at Open.
type Option func(*Config)

// WithSerial requires the opened device to carry the given serial number.
func WithSerial(serial string) Option {
	return func(c *Config) {
		c.Serial = serial
	}
}

// WithShortTimeout sets the timeout for control transfers and the
// fixed part of bulk transfer timeouts.
func WithShortTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ShortTimeout = d
	}
}

// WithMinBulkSpeed sets the assumed minimum bulk transfer speed, in
// bytes per second, used to size bulk transfer timeouts.
func WithMinBulkSpeed(bytesPerSecond float64) Option {
	return func(c *Config) {
		c.MinBulkSpeed = bytesPerSecond
	}
}

// WithBehavior replaces the behavior profile that would otherwise be
// resolved from the device's vendor and product IDs.
func WithBehavior(b Behavior) Option {
	return func(c *Config) {
		c.Behavior = &b
	}
}

// WithTransport substitutes the USB transport implementation.
func WithTransport(t Transport) Option {
	return func(c *Config) {
		c.Transport = t
	}
}

// WithLogger sets a logger for debug records of the session's transfers.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
