package store

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type MockDriver struct {
	Queries     []string
	Params      []map[string]interface{}
	ResultQueue []neo4j.EagerResult
	Err         error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if len(m.ResultQueue) > 0 {
		res := m.ResultQueue[0]
		m.ResultQueue = m.ResultQueue[1:]
		return res, nil
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func entityRecord(uuid, name string, image interface{}, props map[string]interface{}) *neo4j.Record {
	return &neo4j.Record{
		Keys:   []string{"uuid", "name", "image", "props"},
		Values: []interface{}{uuid, name, image, props},
	}
}

func relationshipRecord(source, sourceLabel, target, targetLabel, relation string, props map[string]interface{}) *neo4j.Record {
	return &neo4j.Record{
		Keys: []string{"source", "source_labels", "target", "target_labels", "relation", "props"},
		Values: []interface{}{
			source, []interface{}{sourceLabel},
			target, []interface{}{targetLabel},
			relation, props,
		},
	}
}
