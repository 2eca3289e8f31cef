package invoice

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// IDGenerator hands out identifiers for new line items and discounts.
type IDGenerator interface {
	NextID() string
}

// SnowflakeIDs generates ids from a snowflake node. Ids combine a millisecond
// timestamp with a per-millisecond sequence, so rapid successive additions
// never share an id.
type SnowflakeIDs struct {
	node *snowflake.Node
}

// NewSnowflakeIDs creates a generator for the given node number (0-1023).
func NewSnowflakeIDs(nodeID int64) (*SnowflakeIDs, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("NewSnowflakeIDs: failed to create node %d: %w", nodeID, err)
	}
	return &SnowflakeIDs{node: node}, nil
}

// NextID implements IDGenerator.
func (s *SnowflakeIDs) NextID() string {
	return s.node.Generate().String()
}

// freshID draws ids until one is not already taken in the owning sequence.
func freshID(ids IDGenerator, taken func(string) bool) string {
	id := ids.NextID()
	for taken(id) {
		id = ids.NextID()
	}
	return id
}
