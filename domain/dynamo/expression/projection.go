package expression

import (
	"sort"

	"localaws/domain/dynamo"
)

// ApplyProjection builds a new item containing only the requested paths.
// Single-element paths copy the top-level attribute; multi-element paths
// reconstruct the minimal nested sub-structure, deep-merging paths that
// share a prefix. Paths that do not resolve are skipped.
func (c *EvalContext) ApplyProjection(paths []AttributePath) dynamo.Item {
	tree := newProjectionTree()
	for _, path := range paths {
		value, ok := c.ResolvePath(path)
		if !ok {
			continue
		}
		resolved, err := c.ResolvePathNames(path)
		if err != nil {
			continue
		}
		tree.insert(resolved.Elements, value.Clone())
	}
	return tree.materializeItem()
}

// projectionNode is one node of the reconstruction tree. A node is either a
// leaf carrying a projected value, or an interior node with attribute or
// index children.
type projectionNode struct {
	leaf     *dynamo.AttributeValue
	byName   map[string]*projectionNode
	byIndex  map[int]*projectionNode
}

func newProjectionTree() *projectionNode {
	return &projectionNode{}
}

func (n *projectionNode) insert(elems []PathElement, value dynamo.AttributeValue) {
	if len(elems) == 0 {
		n.leaf = &value
		return
	}
	child := n.child(elems[0])
	// A leaf already covers this subtree; the deeper path is subsumed.
	if child.leaf != nil {
		return
	}
	child.insert(elems[1:], value)
}

func (n *projectionNode) child(e PathElement) *projectionNode {
	if e.Kind == ElementIndex {
		if n.byIndex == nil {
			n.byIndex = map[int]*projectionNode{}
		}
		c, ok := n.byIndex[e.Index]
		if !ok {
			c = &projectionNode{}
			n.byIndex[e.Index] = c
		}
		return c
	}
	if n.byName == nil {
		n.byName = map[string]*projectionNode{}
	}
	c, ok := n.byName[e.Name]
	if !ok {
		c = &projectionNode{}
		n.byName[e.Name] = c
	}
	return c
}

// materializeItem renders the root's attribute children as an item.
func (n *projectionNode) materializeItem() dynamo.Item {
	out := dynamo.Item{}
	for name, child := range n.byName {
		out[name] = child.materialize()
	}
	return out
}

// materialize renders a node: a leaf yields its value; attribute children
// yield an M; index children yield an L compacted in ascending index order.
func (n *projectionNode) materialize() dynamo.AttributeValue {
	if n.leaf != nil {
		return *n.leaf
	}
	if n.byIndex != nil {
		indices := make([]int, 0, len(n.byIndex))
		for i := range n.byIndex {
			indices = append(indices, i)
		}
		sort.Ints(indices)
		list := make([]dynamo.AttributeValue, 0, len(indices))
		for _, i := range indices {
			list = append(list, n.byIndex[i].materialize())
		}
		return dynamo.List(list)
	}
	m := map[string]dynamo.AttributeValue{}
	for name, child := range n.byName {
		m[name] = child.materialize()
	}
	return dynamo.Map(m)
}
