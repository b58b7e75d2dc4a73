// Package uid generates identifiers: UUIDv7 strings for correlation IDs and
// snowflake integers for primary keys.
package uid

// StringID produces string identifiers.
type StringID interface {
	Generate() string
}

// NumberID produces int64 identifiers.
type NumberID interface {
	Generate() int64
}
