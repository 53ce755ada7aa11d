package phylo

import "sort"

// selfBranch is the conditions/accessions payload attached to a node itself,
// as opposed to its children.
type selfBranch struct {
	conditions []string
	accessions []string
}

// rawNode is one entry in the tree arena. Children are stored as indexes
// into the arena rather than pointers, so depth-indexed path walks are a
// loop over indexes.
type rawNode struct {
	name     string
	children map[string]int
	self     *selfBranch
}

// Tree is the raw accumulated classification tree. Index 0 is the root,
// which never carries a self branch.
type Tree struct {
	nodes []rawNode
}

func newTree() *Tree {
	return &Tree{nodes: []rawNode{{}}}
}

// child returns the index of the named child of parent, creating it if
// absent.
func (t *Tree) child(parent int, name string) int {
	if idx, ok := t.nodes[parent].children[name]; ok {
		return idx
	}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, rawNode{name: name})
	if t.nodes[parent].children == nil {
		t.nodes[parent].children = make(map[string]int)
	}
	t.nodes[parent].children[name] = idx
	return idx
}

// grow records the row's name at its depth in the queue, walks or creates
// the path given by queue[0..depth], and attaches the row's payload as that
// path's self branch. A later row at the same exact path overwrites the
// earlier payload; subtrees already created under a replaced queue entry
// stay where they were inserted.
func (t *Tree) grow(queue map[int]string, row *interpretedRow) {
	queue[row.depth] = row.haplogroup
	idx := 0
	for d := 0; d <= row.depth; d++ {
		idx = t.child(idx, queue[d])
	}
	t.nodes[idx].self = &selfBranch{
		conditions: row.conditions,
		accessions: row.accessions,
	}
}

// Node is the exported, normalized tree shape. All fields are optional: the
// root has no conditions or accessions, and leaves have no descendants.
type Node struct {
	Conditions        []string         `json:"conditions,omitempty"`
	ExampleAccessions []string         `json:"example_accessions,omitempty"`
	Descendants       map[string]*Node `json:"descendants,omitempty"`
}

// Prettify converts the raw accumulated tree into its exported shape:
// self-branch payloads hoisted into the node, children collected under
// Descendants.
func (t *Tree) Prettify() *Node {
	return t.prettify(0)
}

func (t *Tree) prettify(idx int) *Node {
	raw := t.nodes[idx]
	node := &Node{}
	if raw.self != nil {
		node.Conditions = raw.self.conditions
		node.ExampleAccessions = raw.self.accessions
	}
	if len(raw.children) > 0 {
		node.Descendants = make(map[string]*Node, len(raw.children))
		for name, ci := range raw.children {
			node.Descendants[name] = t.prettify(ci)
		}
	}
	return node
}

// PathStep is one edge of a flattened path: a haplogroup name and the
// conditions defining its branch.
type PathStep struct {
	Name       string   `json:"name"`
	Conditions []string `json:"conditions,omitempty"`
}

// Flatten renders a normalized tree as an ordered list of root-to-node
// paths, one entry per haplogroup, descendant names in sorted order. It
// never mutates its input and returns freshly allocated paths on every
// call.
func Flatten(root *Node) [][]PathStep {
	return flatten(root, nil)
}

func flatten(node *Node, ancestors []PathStep) [][]PathStep {
	names := make([]string, 0, len(node.Descendants))
	for name := range node.Descendants {
		names = append(names, name)
	}
	sort.Strings(names)

	var paths [][]PathStep
	for _, name := range names {
		child := node.Descendants[name]
		current := make([]PathStep, len(ancestors), len(ancestors)+1)
		copy(current, ancestors)
		current = append(current, PathStep{Name: name, Conditions: child.Conditions})
		paths = append(paths, current)
		if len(child.Descendants) > 0 {
			paths = append(paths, flatten(child, current)...)
		}
	}
	return paths
}
