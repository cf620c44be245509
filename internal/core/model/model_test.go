package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeType(t *testing.T) {
	nt, err := ParseNodeType("campaign")
	require.NoError(t, err)
	assert.Equal(t, NodeCampaign, nt)

	nt, err = ParseNodeType(" POWER ")
	require.NoError(t, err)
	assert.Equal(t, NodePower, nt)

	_, err = ParseNodeType("dragon")
	assert.Error(t, err)
	assert.False(t, NodeType("world").Valid())
	assert.True(t, NodeWorld.Valid())
}

func TestParseEdgeType(t *testing.T) {
	et, err := ParseEdgeType("located-in")
	require.NoError(t, err)
	assert.Equal(t, EdgeLocatedIn, et)

	// aliases are store labels, not filter tokens
	_, err = ParseEdgeType("LIVES_IN")
	assert.Error(t, err)
}

func TestEdgeFromRelationship(t *testing.T) {
	rel := Relationship{
		Source:   EntityRef{Type: NodeCharacter, ID: "ch1"},
		Target:   EntityRef{Type: NodeLocation, ID: "l1"},
		Relation: "lives_in",
	}
	e := EdgeFromRelationship(rel)
	assert.Equal(t, EdgeLocatedIn, e.Type)
	assert.Nil(t, e.Metadata)

	rel.Relation = "HAUNTS"
	rel.Attributes = map[string]interface{}{"since": "age 3"}
	e = EdgeFromRelationship(rel)
	assert.Equal(t, EdgeAssociated, e.Type)
	assert.Equal(t, "HAUNTS", e.Metadata["relation"])
	assert.Equal(t, "age 3", e.Metadata["since"])
}

func TestRelationshipOther(t *testing.T) {
	rel := Relationship{
		Source: EntityRef{Type: NodeCharacter, ID: "a"},
		Target: EntityRef{Type: NodeItem, ID: "b"},
	}
	assert.Equal(t, "b", rel.Other("a").ID)
	assert.Equal(t, "a", rel.Other("b").ID)
}

func TestResolveScope(t *testing.T) {
	scope, ignored := ResolveScope(map[string]string{
		"sessionId":  "s1",
		"campaignId": "c1",
		"powerId":    "p1",
	})
	assert.Equal(t, Scope{Kind: ScopeCampaign, ID: "c1"}, scope)
	assert.Equal(t, []string{"sessionId", "powerId"}, ignored)
	assert.Equal(t, "campaignId", scope.Param())

	ref, ok := scope.Ref()
	require.True(t, ok)
	assert.Equal(t, EntityRef{Type: NodeCampaign, ID: "c1"}, ref)

	scope, ignored = ResolveScope(nil)
	assert.True(t, scope.IsGlobal())
	assert.Empty(t, ignored)
	_, ok = scope.Ref()
	assert.False(t, ok)
}

func TestEntityLabelFallback(t *testing.T) {
	assert.Equal(t, "Eldoria", Entity{ID: "w1", Name: "Eldoria"}.Label())
	assert.Equal(t, "Session 4", Entity{ID: "s4", Attributes: map[string]interface{}{"title": "Session 4"}}.Label())
	assert.Equal(t, "x9", Entity{ID: "x9"}.Label())
}

func TestNodeFromEntity(t *testing.T) {
	e := Entity{ID: "c1", Type: NodeCharacter, Name: "Lyra", Image: "https://img/lyra.png",
		Attributes: map[string]interface{}{"campaign_id": "cp1"}}

	n := NodeFromEntity(e, false)
	assert.Empty(t, n.Image)
	assert.Equal(t, "cp1", n.Metadata["campaign_id"])

	n = NodeFromEntity(e, true)
	assert.Equal(t, "https://img/lyra.png", n.Image)

	// metadata is a copy
	n.Metadata["campaign_id"] = "other"
	assert.Equal(t, "cp1", e.Attributes["campaign_id"])
}

func TestContainmentLinks(t *testing.T) {
	links := ChildLinks(NodeCampaign)
	require.Len(t, links, 6)
	assert.Equal(t, NodeSession, links[0].Child)

	loc := ChildLinks(NodeCampaign)[2]
	top := Entity{ID: "l1", Type: NodeLocation, Attributes: map[string]interface{}{"campaign_id": "c1"}}
	nested := Entity{ID: "l2", Type: NodeLocation, Attributes: map[string]interface{}{"campaign_id": "c1", "parent_location_id": "l1"}}
	assert.True(t, loc.IsChildOf(top, "c1"))
	assert.False(t, loc.IsChildOf(nested, "c1"))
	assert.True(t, ChildLinks(NodeLocation)[0].IsChildOf(nested, "l1"))
	assert.Empty(t, ChildLinks(NodeItem))
}

func TestHierarchyTreeHeight(t *testing.T) {
	tree := &HierarchyTree{
		Root: Node{ID: "w"},
		Children: []*HierarchyTree{
			{Root: Node{ID: "c"}, Children: []*HierarchyTree{{Root: Node{ID: "s"}}}},
			{Root: Node{ID: "c2"}},
		},
	}
	assert.Equal(t, 2, tree.Height())
	assert.Equal(t, 4, tree.Size())
}
