package community

import (
	"github.com/agenthands/loregraph/internal/core/model"
)

// ComponentDetector groups graph nodes into connected clusters.
type ComponentDetector interface {
	Detect(nodes []model.Node, edges []model.Edge) [][]model.Node
}

// ConnectedComponents treats edges as undirected. Isolated nodes form their
// own component. Components are ordered by their first node in input order.
type ConnectedComponents struct{}

func NewConnectedComponents() ComponentDetector {
	return &ConnectedComponents{}
}

func (d *ConnectedComponents) Detect(nodes []model.Node, edges []model.Edge) [][]model.Node {
	nodeMap := make(map[string]model.Node, len(nodes))
	adj := make(map[string][]string)

	for _, n := range nodes {
		nodeMap[n.ID] = n
	}

	for _, e := range edges {
		// Edges to nodes outside the input are ignored.
		if _, ok := nodeMap[e.Source]; !ok {
			continue
		}
		if _, ok := nodeMap[e.Target]; !ok {
			continue
		}

		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	visited := make(map[string]bool, len(nodes))
	var components [][]model.Node

	for _, n := range nodes {
		if visited[n.ID] {
			continue
		}
		var ids []string
		d.dfs(n.ID, adj, visited, &ids)

		component := make([]model.Node, 0, len(ids))
		for _, id := range ids {
			component = append(component, nodeMap[id])
		}
		components = append(components, component)
	}

	return components
}

func (d *ConnectedComponents) dfs(u string, adj map[string][]string, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for _, v := range adj[u] {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}

// Count returns the number of connected components of g.
func Count(g *model.Graph) int {
	if g == nil {
		return 0
	}
	return len(NewConnectedComponents().Detect(g.Nodes, g.Edges))
}
