package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/loregraph/internal/core/model"
	apperrors "github.com/agenthands/loregraph/internal/errors"
)

func TestMemgraphStore_GetByID(t *testing.T) {
	mockDriver := &MockDriver{
		ResultQueue: []neo4j.EagerResult{{
			Records: []*neo4j.Record{
				entityRecord("c1", "The Drowned Crown", "https://cdn/c1.png", map[string]interface{}{
					"uuid": "c1", "name": "The Drowned Crown", "image_url": "https://cdn/c1.png", "world_id": "w1",
				}),
			},
		}},
	}
	s := NewMemgraphStore(mockDriver, time.Second)

	e, err := s.GetByID(context.Background(), model.NodeCampaign, "c1")
	require.NoError(t, err)
	assert.Equal(t, model.Entity{
		ID:         "c1",
		Type:       model.NodeCampaign,
		Name:       "The Drowned Crown",
		Image:      "https://cdn/c1.png",
		Attributes: map[string]interface{}{"world_id": "w1"},
	}, *e)

	assert.Contains(t, mockDriver.Queries[0], "MATCH (n:Campaign {uuid: $uuid})")
	assert.Equal(t, "c1", mockDriver.Params[0]["uuid"])
}

func TestMemgraphStore_GetByID_NotFound(t *testing.T) {
	s := NewMemgraphStore(&MockDriver{}, 0)
	_, err := s.GetByID(context.Background(), model.NodeWorld, "does-not-exist")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemgraphStore_GetByID_RejectsUnknownLabel(t *testing.T) {
	mockDriver := &MockDriver{}
	s := NewMemgraphStore(mockDriver, 0)
	_, err := s.GetByID(context.Background(), model.NodeType("World) DETACH DELETE (n"), "x")
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, mockDriver.Queries)
}

func TestMemgraphStore_DriverErrorIsUpstream(t *testing.T) {
	s := NewMemgraphStore(&MockDriver{Err: errors.New("connection refused")}, 0)

	_, err := s.GetRelationships(context.Background(), model.EntityRef{Type: model.NodeWorld, ID: "w1"})
	assert.True(t, apperrors.IsUpstream(err))
	assert.Contains(t, err.Error(), "connection refused")

	_, err = s.ListWorlds(context.Background())
	assert.True(t, apperrors.IsUpstream(err))
}

func TestMemgraphStore_GetRelationships(t *testing.T) {
	mockDriver := &MockDriver{
		ResultQueue: []neo4j.EagerResult{{
			Records: []*neo4j.Record{
				relationshipRecord("ch1", "Character", "ch2", "Character", "KNOWS", map[string]interface{}{"since": "s1"}),
				relationshipRecord("ch1", "Character", "x", "Note", "MENTIONS", nil),
				relationshipRecord("ch1", "Character", "l1", "Location", "LIVES_IN", map[string]interface{}{}),
			},
		}},
	}
	s := NewMemgraphStore(mockDriver, 0)

	rels, err := s.GetRelationships(context.Background(), model.EntityRef{Type: model.NodeCharacter, ID: "ch1"})
	require.NoError(t, err)
	require.Len(t, rels, 2, "non-entity endpoints are skipped")
	assert.Equal(t, model.EntityRef{Type: model.NodeCharacter, ID: "ch2"}, rels[0].Target)
	assert.Equal(t, "s1", rels[0].Attributes["since"])
	assert.Equal(t, "LIVES_IN", rels[1].Relation)
	assert.Nil(t, rels[1].Attributes)
}

func TestMemgraphStore_GetRelationships_BadRecord(t *testing.T) {
	mockDriver := &MockDriver{
		ResultQueue: []neo4j.EagerResult{{
			Records: []*neo4j.Record{{Keys: []string{"source"}, Values: []interface{}{"ch1"}}},
		}},
	}
	s := NewMemgraphStore(mockDriver, 0)
	_, err := s.GetRelationships(context.Background(), model.EntityRef{Type: model.NodeCharacter, ID: "ch1"})
	assert.True(t, apperrors.IsUpstream(err))
}

func TestMemgraphStore_GetChildren(t *testing.T) {
	mockDriver := &MockDriver{
		ResultQueue: []neo4j.EagerResult{
			{Records: []*neo4j.Record{entityRecord("s1", "Arrival", nil, nil)}}, // sessions
			{}, // characters
			{Records: []*neo4j.Record{entityRecord("l1", "Silverport", nil, nil)}}, // locations
		},
	}
	s := NewMemgraphStore(mockDriver, 0)

	children, err := s.GetChildren(context.Background(), model.NodeCampaign, "c1")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, model.NodeSession, children[0].Type)
	assert.Equal(t, model.NodeLocation, children[1].Type)

	require.Len(t, mockDriver.Queries, 6, "one query per containment link")
	assert.Contains(t, mockDriver.Queries[0], "MATCH (n:Session)")
	assert.Contains(t, mockDriver.Queries[2], "AND n.parent_location_id IS NULL")
	assert.Equal(t, "c1", mockDriver.Params[2]["parent_id"])
}

func TestMemgraphStore_ListWorlds(t *testing.T) {
	mockDriver := &MockDriver{
		ResultQueue: []neo4j.EagerResult{{
			Records: []*neo4j.Record{
				entityRecord("w1", "Eldoria", nil, nil),
				entityRecord("w2", "", nil, map[string]interface{}{"title": "Frosthold"}),
			},
		}},
	}
	s := NewMemgraphStore(mockDriver, 0)

	worlds, err := s.ListWorlds(context.Background())
	require.NoError(t, err)
	require.Len(t, worlds, 2)
	assert.Equal(t, "Frosthold", worlds[1].Label())
}
