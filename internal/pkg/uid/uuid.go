package uid

import "github.com/google/uuid"

// UUID generates time-ordered RFC 9562 UUIDs.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a UUIDv7, or a UUIDv4 when the v7 source fails.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
