// Package config exposes typed, read-only access to runtime settings.
//
// Keys are dotted paths ("database.pool.max_conns"). Durations are stored as
// plain integers and converted by the unit-specific getters, so a YAML file
// reads `ttl_minutes: 10` rather than a Go duration string.
package config

import (
	"io"
	"time"
)

// Config is the read side used by the application wiring and the modules.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond and GetMinute read an integer and scale it to a duration.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetBinary reads a base64 value and returns the decoded bytes, or nil.
	GetBinary(key string) []byte

	// GetArray reads "a,b,c" (or a YAML list) as a slice of trimmed,
	// non-empty strings.
	GetArray(key string) []string
}
