package model

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// HierarchyTree is a containment tree. Every entity appears at most once.
type HierarchyTree struct {
	Root     Node             `json:"root"`
	Children []*HierarchyTree `json:"children"`
}

// Walk visits the tree depth-first, parents before children.
func (t *HierarchyTree) Walk(fn func(node *HierarchyTree, depth int)) {
	t.walk(fn, 0)
}

func (t *HierarchyTree) walk(fn func(node *HierarchyTree, depth int), depth int) {
	fn(t, depth)
	for _, c := range t.Children {
		c.walk(fn, depth+1)
	}
}

// Height is the number of levels below the root.
func (t *HierarchyTree) Height() int {
	h := 0
	t.Walk(func(_ *HierarchyTree, depth int) {
		if depth > h {
			h = depth
		}
	})
	return h
}

func (t *HierarchyTree) Size() int {
	n := 0
	t.Walk(func(*HierarchyTree, int) { n++ })
	return n
}
