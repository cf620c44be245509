package driver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexQueries(t *testing.T) {
	queries := IndexQueries()

	assert.Equal(t, "CREATE INDEX ON :World(uuid);", queries[0])
	assert.Contains(t, queries, "CREATE INDEX ON :Campaign(world_id);")
	assert.Contains(t, queries, "CREATE INDEX ON :Location(parent_location_id);")
	// one uuid index per label plus one per containment property
	assert.Len(t, queries, len(EntityLabels)+8)
}

func TestTemplatesTakeLabel(t *testing.T) {
	assert.Contains(t, fmt.Sprintf(GetEntityQueryTemplate, "Item"), "MATCH (n:Item {uuid: $uuid})")
	assert.Contains(t, fmt.Sprintf(SaveRelationshipQueryTemplate, "OWNS"), "MERGE (source)-[r:OWNS]->(target)")
}
