package driver

import "fmt"

// Entity labels, in the order indices are created.
var EntityLabels = []string{
	"World", "Campaign", "Session", "Character", "Location", "Item", "Event", "Power",
}

// Properties that hold a containment parent id.
var ContainmentProperties = map[string][]string{
	"Campaign":  {"world_id"},
	"Session":   {"campaign_id"},
	"Character": {"campaign_id"},
	"Location":  {"campaign_id", "parent_location_id"},
	"Item":      {"campaign_id"},
	"Event":     {"campaign_id"},
	"Power":     {"campaign_id"},
}

func IndexQueries() []string {
	var queries []string
	for _, label := range EntityLabels {
		queries = append(queries, fmt.Sprintf("CREATE INDEX ON :%s(uuid);", label))
		for _, prop := range ContainmentProperties[label] {
			queries = append(queries, fmt.Sprintf("CREATE INDEX ON :%s(%s);", label, prop))
		}
	}
	return queries
}

// Templates take the entity label through %s; callers only pass labels from
// EntityLabels.
const (
	GetEntityQueryTemplate = `
		MATCH (n:%s {uuid: $uuid})
		RETURN n.uuid AS uuid, n.name AS name, n.image_url AS image, properties(n) AS props
		LIMIT 1
	`

	// Both directions; containment is modelled with properties, not edges.
	GetRelationshipsQuery = `
		MATCH (n {uuid: $uuid})-[r]-(m)
		WITH r, startNode(r) AS s, endNode(r) AS t
		RETURN s.uuid AS source, labels(s) AS source_labels,
			t.uuid AS target, labels(t) AS target_labels,
			type(r) AS relation, properties(r) AS props
		ORDER BY relation, source, target
	`

	GetChildrenQueryTemplate = `
		MATCH (n:%s)
		WHERE n.%s = $parent_id %s
		RETURN n.uuid AS uuid, n.name AS name, n.image_url AS image, properties(n) AS props
		ORDER BY n.name, n.uuid
	`

	ListWorldsQuery = `
		MATCH (n:World)
		RETURN n.uuid AS uuid, n.name AS name, n.image_url AS image, properties(n) AS props
		ORDER BY n.name, n.uuid
	`

	SaveEntityQueryTemplate = `
		MERGE (n:%s {uuid: $uuid})
		SET n += $props
		RETURN n.uuid AS uuid
	`

	SaveRelationshipQueryTemplate = `
		MATCH (source {uuid: $source_uuid})
		MATCH (target {uuid: $target_uuid})
		MERGE (source)-[r:%s]->(target)
		SET r += $props
		RETURN type(r) AS relation
	`
)
