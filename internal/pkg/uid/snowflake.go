package uid

import (
	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 IDs using a per-node snowflake
// generator. IDs are safe to use as database primary keys and sort roughly
// by creation time.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake returns a Snowflake generator for the given node number.
// nodeID must be unique per running instance (0-1023).
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique int64 ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
