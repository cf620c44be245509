package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/loregraph/internal/core/model"
	"github.com/agenthands/loregraph/internal/driver"
	apperrors "github.com/agenthands/loregraph/internal/errors"
)

// reserved properties are mapped onto Entity fields, not attributes.
var reservedProps = map[string]bool{"uuid": true, "name": true, "image_url": true}

// MemgraphStore reads entities from Memgraph. Entities are nodes labelled
// with their NodeType and keyed by the uuid property; containment parents are
// properties; every other relationship is a graph edge.
type MemgraphStore struct {
	Driver  driver.GraphDriver
	Timeout time.Duration
}

func NewMemgraphStore(d driver.GraphDriver, timeout time.Duration) *MemgraphStore {
	return &MemgraphStore{Driver: d, Timeout: timeout}
}

func (s *MemgraphStore) query(ctx context.Context, op, cypher string, params map[string]interface{}) (neo4j.EagerResult, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	res, err := s.Driver.ExecuteQuery(ctx, cypher, params)
	if err != nil {
		return neo4j.EagerResult{}, apperrors.NewUpstreamError(op, err)
	}
	return res, nil
}

func (s *MemgraphStore) GetByID(ctx context.Context, t model.NodeType, id string) (*model.Entity, error) {
	if !t.Valid() {
		return nil, apperrors.NewValidationError("type", fmt.Sprintf("unknown node type %q", t))
	}
	res, err := s.query(ctx, "GetByID", fmt.Sprintf(driver.GetEntityQueryTemplate, t), map[string]interface{}{"uuid": id})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, apperrors.NewEntityNotFoundError(string(t), id)
	}
	e, err := entityFromRecord(res.Records[0], t)
	if err != nil {
		return nil, apperrors.NewUpstreamError("GetByID", err)
	}
	return &e, nil
}

func (s *MemgraphStore) GetRelationships(ctx context.Context, ref model.EntityRef) ([]model.Relationship, error) {
	res, err := s.query(ctx, "GetRelationships", driver.GetRelationshipsQuery, map[string]interface{}{"uuid": ref.ID})
	if err != nil {
		return nil, err
	}

	rels := make([]model.Relationship, 0, len(res.Records))
	for _, rec := range res.Records {
		rel, ok, err := relationshipFromRecord(rec)
		if err != nil {
			return nil, apperrors.NewUpstreamError("GetRelationships", err)
		}
		if ok {
			rels = append(rels, rel)
		}
	}
	return rels, nil
}

func (s *MemgraphStore) GetChildren(ctx context.Context, parentType model.NodeType, parentID string) ([]model.Entity, error) {
	var out []model.Entity
	for _, link := range model.ChildLinks(parentType) {
		exclude := ""
		if link.ExcludeField != "" {
			exclude = fmt.Sprintf("AND n.%s IS NULL", link.ExcludeField)
		}
		cypher := fmt.Sprintf(driver.GetChildrenQueryTemplate, link.Child, link.Field, exclude)

		res, err := s.query(ctx, "GetChildren", cypher, map[string]interface{}{"parent_id": parentID})
		if err != nil {
			return nil, err
		}
		for _, rec := range res.Records {
			e, err := entityFromRecord(rec, link.Child)
			if err != nil {
				return nil, apperrors.NewUpstreamError("GetChildren", err)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemgraphStore) ListWorlds(ctx context.Context) ([]model.Entity, error) {
	res, err := s.query(ctx, "ListWorlds", driver.ListWorldsQuery, nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.Entity, 0, len(res.Records))
	for _, rec := range res.Records {
		e, err := entityFromRecord(rec, model.NodeWorld)
		if err != nil {
			return nil, apperrors.NewUpstreamError("ListWorlds", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func entityFromRecord(rec *neo4j.Record, t model.NodeType) (model.Entity, error) {
	id, _ := rec.Get("uuid")
	uuid, ok := id.(string)
	if !ok || uuid == "" {
		return model.Entity{}, fmt.Errorf("record without uuid: %v", rec.Values)
	}
	e := model.Entity{ID: uuid, Type: t}
	if name, ok := recordString(rec, "name"); ok {
		e.Name = name
	}
	if image, ok := recordString(rec, "image"); ok {
		e.Image = image
	}
	if raw, _ := rec.Get("props"); raw != nil {
		props, ok := raw.(map[string]interface{})
		if !ok {
			return model.Entity{}, fmt.Errorf("entity %s: props is %T", uuid, raw)
		}
		for k, v := range props {
			if reservedProps[k] {
				continue
			}
			if e.Attributes == nil {
				e.Attributes = make(map[string]interface{}, len(props))
			}
			e.Attributes[k] = v
		}
	}
	return e, nil
}

// relationshipFromRecord returns ok=false for edges whose endpoints are not
// entity nodes.
func relationshipFromRecord(rec *neo4j.Record) (model.Relationship, bool, error) {
	source, _ := recordString(rec, "source")
	target, _ := recordString(rec, "target")
	relation, _ := recordString(rec, "relation")
	if source == "" || target == "" || relation == "" {
		return model.Relationship{}, false, fmt.Errorf("incomplete relationship record: %v", rec.Values)
	}

	sourceLabels, _ := rec.Get("source_labels")
	targetLabels, _ := rec.Get("target_labels")
	st, sok := nodeTypeFromLabels(sourceLabels)
	tt, tok := nodeTypeFromLabels(targetLabels)
	if !sok || !tok {
		return model.Relationship{}, false, nil
	}

	rel := model.Relationship{
		Source:   model.EntityRef{Type: st, ID: source},
		Target:   model.EntityRef{Type: tt, ID: target},
		Relation: relation,
	}
	if raw, _ := rec.Get("props"); raw != nil {
		if props, ok := raw.(map[string]interface{}); ok && len(props) > 0 {
			rel.Attributes = props
		}
	}
	return rel, true, nil
}

func recordString(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func nodeTypeFromLabels(raw interface{}) (model.NodeType, bool) {
	labels, ok := raw.([]interface{})
	if !ok {
		return "", false
	}
	for _, l := range labels {
		s, _ := l.(string)
		if t := model.NodeType(s); t.Valid() {
			return t, true
		}
	}
	return "", false
}
