package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agenthands/loregraph/internal/core/model"
	apperrors "github.com/agenthands/loregraph/internal/errors"
)

// Fixture is the YAML document loaded by MemoryStore and by `graphctl seed`.
type Fixture struct {
	Entities      []model.Entity        `yaml:"entities"`
	Relationships []FixtureRelationship `yaml:"relationships"`
}

// FixtureRelationship references entities by id. The endpoint types are
// looked up from the entities; SourceType/TargetType are only needed for
// endpoints that are not part of the fixture.
type FixtureRelationship struct {
	Source     string                 `yaml:"source"`
	Target     string                 `yaml:"target"`
	Relation   string                 `yaml:"relation"`
	SourceType model.NodeType         `yaml:"source_type,omitempty"`
	TargetType model.NodeType         `yaml:"target_type,omitempty"`
	Attributes map[string]interface{} `yaml:"attributes,omitempty"`
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture '%s': %w", path, err)
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture YAML: %w", err)
	}
	return &f, nil
}

// MemoryStore serves a fixture from memory. Results keep fixture order.
type MemoryStore struct {
	entities []model.Entity
	byID     map[string]int
	rels     []model.Relationship
	relsByID map[string][]int
}

func NewMemoryStore(f Fixture) (*MemoryStore, error) {
	s := &MemoryStore{
		byID:     make(map[string]int, len(f.Entities)),
		relsByID: make(map[string][]int),
	}

	for _, e := range f.Entities {
		if e.ID == "" {
			return nil, fmt.Errorf("fixture entity %q has no id", e.Name)
		}
		if !e.Type.Valid() {
			nt, err := model.ParseNodeType(string(e.Type))
			if err != nil {
				return nil, fmt.Errorf("fixture entity %s: %w", e.ID, err)
			}
			e.Type = nt
		}
		if _, dup := s.byID[e.ID]; dup {
			return nil, fmt.Errorf("fixture entity %s is defined twice", e.ID)
		}
		s.byID[e.ID] = len(s.entities)
		s.entities = append(s.entities, e)
	}

	for i, fr := range f.Relationships {
		src, err := s.endpoint(fr.Source, fr.SourceType)
		if err != nil {
			return nil, fmt.Errorf("fixture relationship %d source: %w", i, err)
		}
		dst, err := s.endpoint(fr.Target, fr.TargetType)
		if err != nil {
			return nil, fmt.Errorf("fixture relationship %d target: %w", i, err)
		}
		if fr.Relation == "" {
			return nil, fmt.Errorf("fixture relationship %d has no relation", i)
		}

		idx := len(s.rels)
		s.rels = append(s.rels, model.Relationship{
			Source:     src,
			Target:     dst,
			Relation:   fr.Relation,
			Attributes: fr.Attributes,
		})
		s.relsByID[src.ID] = append(s.relsByID[src.ID], idx)
		if dst.ID != src.ID {
			s.relsByID[dst.ID] = append(s.relsByID[dst.ID], idx)
		}
	}

	return s, nil
}

func (s *MemoryStore) endpoint(id string, declared model.NodeType) (model.EntityRef, error) {
	if id == "" {
		return model.EntityRef{}, fmt.Errorf("missing id")
	}
	if i, ok := s.byID[id]; ok {
		return s.entities[i].Ref(), nil
	}
	if declared == "" {
		return model.EntityRef{}, fmt.Errorf("unknown entity %s needs an explicit type", id)
	}
	nt, err := model.ParseNodeType(string(declared))
	if err != nil {
		return model.EntityRef{}, err
	}
	return model.EntityRef{Type: nt, ID: id}, nil
}

// Entities returns the fixture entities in order.
func (s *MemoryStore) Entities() []model.Entity {
	return append([]model.Entity(nil), s.entities...)
}

// Relationships returns the fixture relationships in order.
func (s *MemoryStore) Relationships() []model.Relationship {
	return append([]model.Relationship(nil), s.rels...)
}

func (s *MemoryStore) GetByID(ctx context.Context, t model.NodeType, id string) (*model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewUpstreamError("GetByID", err)
	}
	i, ok := s.byID[id]
	if !ok || s.entities[i].Type != t {
		return nil, apperrors.NewEntityNotFoundError(string(t), id)
	}
	e := s.entities[i]
	return &e, nil
}

func (s *MemoryStore) GetRelationships(ctx context.Context, ref model.EntityRef) ([]model.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewUpstreamError("GetRelationships", err)
	}
	idxs := s.relsByID[ref.ID]
	out := make([]model.Relationship, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.rels[i])
	}
	return out, nil
}

func (s *MemoryStore) GetChildren(ctx context.Context, parentType model.NodeType, parentID string) ([]model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewUpstreamError("GetChildren", err)
	}
	var out []model.Entity
	for _, link := range model.ChildLinks(parentType) {
		for _, e := range s.entities {
			if link.IsChildOf(e, parentID) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) ListWorlds(ctx context.Context) ([]model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewUpstreamError("ListWorlds", err)
	}
	var out []model.Entity
	for _, e := range s.entities {
		if e.Type == model.NodeWorld {
			out = append(out, e)
		}
	}
	return out, nil
}
