package uid

import (
	"errors"
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// ErrNodeOutOfRange is returned for node numbers outside 0..1023.
var ErrNodeOutOfRange = errors.New("uid: snowflake node must be between 0 and 1023")

// Snowflake generates roughly time-ordered int64 IDs.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake derives the node number from the hostname. Use
// NewSnowflakeNode when replicas share a hostname.
func NewSnowflake() (*Snowflake, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(host))

	return NewSnowflakeNode(int64(h.Sum32() % 1024))
}

func NewSnowflakeNode(node int64) (*Snowflake, error) {
	if node < 0 || node > 1023 {
		return nil, ErrNodeOutOfRange
	}

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
