package model

import (
	"fmt"
	"strings"
)

type EdgeType string

const (
	EdgePartOf         EdgeType = "PART_OF"
	EdgeLocatedIn      EdgeType = "LOCATED_IN"
	EdgeParticipatesIn EdgeType = "PARTICIPATES_IN"
	EdgeOwns           EdgeType = "OWNS"
	EdgeHasPower       EdgeType = "HAS_POWER"
	EdgeKnows          EdgeType = "KNOWS"
	EdgeRelatedTo      EdgeType = "RELATED_TO"

	// EdgeAssociated is the catch-all for relations with no dedicated type.
	EdgeAssociated EdgeType = "ASSOCIATED_WITH"
)

var EdgeTypes = []EdgeType{
	EdgePartOf,
	EdgeLocatedIn,
	EdgeParticipatesIn,
	EdgeOwns,
	EdgeHasPower,
	EdgeKnows,
	EdgeRelatedTo,
	EdgeAssociated,
}

var relationAliases = map[string]EdgeType{
	"BELONGS_TO":   EdgePartOf,
	"MEMBER_OF":    EdgePartOf,
	"CONTAINED_IN": EdgePartOf,
	"LIVES_IN":     EdgeLocatedIn,
	"FOUND_IN":     EdgeLocatedIn,
	"OCCURRED_AT":  EdgeLocatedIn,
	"ATTENDED":     EdgeParticipatesIn,
	"APPEARS_IN":   EdgeParticipatesIn,
	"INVOLVED_IN":  EdgeParticipatesIn,
	"CARRIES":      EdgeOwns,
	"POSSESSES":    EdgeOwns,
	"WIELDS":       EdgeHasPower,
	"ALLY_OF":      EdgeKnows,
	"ENEMY_OF":     EdgeKnows,
}

func normalizeToken(token string) string {
	t := strings.ToUpper(strings.TrimSpace(token))
	return strings.NewReplacer("-", "_", " ", "_").Replace(t)
}

// ParseEdgeType accepts only the canonical edge type tokens (any letter case).
// Aliases are a store concern and are not accepted as filter tokens.
func ParseEdgeType(token string) (EdgeType, error) {
	t := normalizeToken(token)
	for _, et := range EdgeTypes {
		if string(et) == t {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown edge type %q", token)
}

// EdgeTypeForRelation maps a stored relation label onto an edge type.
// The second return value is false when the label fell through to the
// catch-all type.
func EdgeTypeForRelation(relation string) (EdgeType, bool) {
	if et, err := ParseEdgeType(relation); err == nil {
		return et, true
	}
	if et, ok := relationAliases[normalizeToken(relation)]; ok {
		return et, true
	}
	return EdgeAssociated, false
}

// EdgeTypeSet is an allow-list of edge types. A nil set allows everything.
type EdgeTypeSet map[EdgeType]struct{}

func NewEdgeTypeSet(types ...EdgeType) EdgeTypeSet {
	s := make(EdgeTypeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

func (s EdgeTypeSet) Allows(t EdgeType) bool {
	if s == nil {
		return true
	}
	_, ok := s[t]
	return ok
}

// Relationship is a directed edge as held by an entity store.
type Relationship struct {
	Source     EntityRef              `json:"source" yaml:"source"`
	Target     EntityRef              `json:"target" yaml:"target"`
	Relation   string                 `json:"relation" yaml:"relation"`
	Attributes map[string]interface{} `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Other returns the endpoint that is not id. For a self-loop it returns the
// source.
func (r Relationship) Other(id string) EntityRef {
	if r.Source.ID == id {
		return r.Target
	}
	return r.Source
}

type Edge struct {
	Source   string                 `json:"source"`
	Target   string                 `json:"target"`
	Type     EdgeType               `json:"type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// EdgeFromRelationship types a stored relationship. Labels that map to the
// catch-all keep the raw label in metadata under "relation".
func EdgeFromRelationship(r Relationship) Edge {
	et, known := EdgeTypeForRelation(r.Relation)
	e := Edge{
		Source: r.Source.ID,
		Target: r.Target.ID,
		Type:   et,
	}
	if len(r.Attributes) > 0 || !known {
		e.Metadata = make(map[string]interface{}, len(r.Attributes)+1)
		for k, v := range r.Attributes {
			e.Metadata[k] = v
		}
		if !known {
			e.Metadata["relation"] = r.Relation
		}
	}
	return e
}

// EdgeKey is the uniqueness key of an edge within one graph.
type EdgeKey struct {
	Source string
	Target string
	Type   EdgeType
}

func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Type: e.Type}
}
