package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/agenthands/loregraph/internal/core/model"
	"github.com/agenthands/loregraph/internal/driver"
)

var relationPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Entities      int
	Relationships int
	// GeneratedIDs maps fixture positions of entities without an id to the
	// uuid they received.
	GeneratedIDs map[int]string
}

// Seed writes a fixture into Memgraph with MERGE semantics, so seeding twice
// is idempotent for entities that carry ids.
func Seed(ctx context.Context, d driver.GraphDriver, f *Fixture) (*SeedResult, error) {
	result := &SeedResult{GeneratedIDs: make(map[int]string)}
	types := make(map[string]model.NodeType, len(f.Entities))

	for i, e := range f.Entities {
		nt, err := model.ParseNodeType(string(e.Type))
		if err != nil {
			return result, fmt.Errorf("entity %d: %w", i, err)
		}
		id := e.ID
		if id == "" {
			id = uuid.New().String()
			result.GeneratedIDs[i] = id
		}
		types[id] = nt

		props := make(map[string]interface{}, len(e.Attributes)+2)
		for k, v := range e.Attributes {
			props[k] = v
		}
		props["name"] = e.Name
		if e.Image != "" {
			props["image_url"] = e.Image
		}

		params := map[string]interface{}{"uuid": id, "props": props}
		if _, err := d.ExecuteQuery(ctx, fmt.Sprintf(driver.SaveEntityQueryTemplate, nt), params); err != nil {
			return result, fmt.Errorf("failed to save %s %s: %w", nt, id, err)
		}
		result.Entities++
	}

	for i, r := range f.Relationships {
		relation := strings.ToUpper(strings.TrimSpace(r.Relation))
		if !relationPattern.MatchString(relation) {
			return result, fmt.Errorf("relationship %d: invalid relation %q", i, r.Relation)
		}
		if _, ok := types[r.Source]; !ok {
			return result, fmt.Errorf("relationship %d: unknown source %s", i, r.Source)
		}
		if _, ok := types[r.Target]; !ok {
			return result, fmt.Errorf("relationship %d: unknown target %s", i, r.Target)
		}

		props := r.Attributes
		if props == nil {
			props = map[string]interface{}{}
		}
		params := map[string]interface{}{
			"source_uuid": r.Source,
			"target_uuid": r.Target,
			"props":       props,
		}
		if _, err := d.ExecuteQuery(ctx, fmt.Sprintf(driver.SaveRelationshipQueryTemplate, relation), params); err != nil {
			return result, fmt.Errorf("failed to save relationship %s-%s->%s: %w", r.Source, relation, r.Target, err)
		}
		result.Relationships++
	}

	return result, nil
}
