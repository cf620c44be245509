// Package format turns graphs and trees into the JSON payloads served to
// clients.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/agenthands/loregraph/internal/core/community"
	"github.com/agenthands/loregraph/internal/core/model"
)

// Layout is a rendering hint passed through to the client untouched.
type Layout string

const (
	LayoutForce     Layout = "force"
	LayoutHierarchy Layout = "hierarchy"
	LayoutRadial    Layout = "radial"
)

var Layouts = []Layout{LayoutForce, LayoutHierarchy, LayoutRadial}

func ParseLayout(token string) (Layout, error) {
	t := Layout(strings.ToLower(strings.TrimSpace(token)))
	for _, l := range Layouts {
		if l == t {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown layout %q", token)
}

type GraphStats struct {
	NodeCount  int `json:"nodeCount"`
	EdgeCount  int `json:"edgeCount"`
	Components int `json:"components"`
}

type GraphPayload struct {
	Layout Layout       `json:"layout"`
	Nodes  []model.Node `json:"nodes"`
	Edges  []model.Edge `json:"edges"`
	Stats  GraphStats   `json:"stats"`
}

type TreeStats struct {
	NodeCount int `json:"nodeCount"`
	Depth     int `json:"depth"`
}

type TreePayload struct {
	Layout   Layout                 `json:"layout"`
	Root     model.Node             `json:"root"`
	Children []*model.HierarchyTree `json:"children"`
	Stats    TreeStats              `json:"stats"`
}

// FormatGraph copies g into a payload. The input is not modified.
func FormatGraph(g *model.Graph, includeImages bool, layout Layout) GraphPayload {
	p := GraphPayload{
		Layout: layout,
		Nodes:  []model.Node{},
		Edges:  []model.Edge{},
	}
	if g == nil {
		return p
	}
	for _, n := range g.Nodes {
		p.Nodes = append(p.Nodes, formatNode(n, includeImages))
	}
	for _, e := range g.Edges {
		e.Metadata = NormalizeMetadata(e.Metadata)
		p.Edges = append(p.Edges, e)
	}
	p.Stats = GraphStats{
		NodeCount:  len(p.Nodes),
		EdgeCount:  len(p.Edges),
		Components: community.Count(g),
	}
	return p
}

// FormatTree copies t into a payload. The input is not modified.
func FormatTree(t *model.HierarchyTree, includeImages bool, layout Layout) TreePayload {
	p := TreePayload{Layout: layout, Children: []*model.HierarchyTree{}}
	if t == nil {
		return p
	}
	formatted := formatTree(t, includeImages)
	p.Root = formatted.Root
	p.Children = formatted.Children
	p.Stats = TreeStats{NodeCount: formatted.Size(), Depth: formatted.Height()}
	return p
}

func formatTree(t *model.HierarchyTree, includeImages bool) *model.HierarchyTree {
	out := &model.HierarchyTree{
		Root:     formatNode(t.Root, includeImages),
		Children: make([]*model.HierarchyTree, 0, len(t.Children)),
	}
	for _, c := range t.Children {
		out.Children = append(out.Children, formatTree(c, includeImages))
	}
	return out
}

func formatNode(n model.Node, includeImages bool) model.Node {
	if !includeImages {
		n.Image = ""
	}
	n.Metadata = NormalizeMetadata(n.Metadata)
	return n
}

// NormalizeMetadata keeps scalar values only. Integers become int64 and
// times RFC 3339 strings in UTC. It returns nil when nothing is left.
func NormalizeMetadata(md map[string]interface{}) map[string]interface{} {
	if len(md) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(md))
	for k, v := range md {
		if nv, ok := normalizeValue(v); ok {
			out[k] = nv
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeValue(v interface{}) (interface{}, bool) {
	switch x := v.(type) {
	case string, bool:
		return x, true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return uintValue(x)
	case float32:
		return floatValue(float64(x))
	case float64:
		return floatValue(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), true
	case interface{ Time() time.Time }:
		// neo4j temporal values
		return x.Time().UTC().Format(time.RFC3339Nano), true
	}
	return nil, false
}

func uintValue(x uint64) (interface{}, bool) {
	if x > math.MaxInt64 {
		return nil, false
	}
	return int64(x), true
}

// floatValue drops values encoding/json cannot represent.
func floatValue(x float64) (interface{}, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, false
	}
	return x, true
}
