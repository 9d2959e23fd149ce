package domain

// HeadingNode is one heading in a document's heading tree.
// Parent and Children are arena indices into HeadingTree.Nodes;
// Parent is -1 for top-level nodes.
type HeadingNode struct {
	Level    int
	Text     string
	Slug     string
	Line     int
	Parent   int
	Children []int
}

// HeadingTree is the resolved heading structure of a single document.
// Nodes are stored in document order in a flat arena so child→parent
// navigation needs no pointers.
type HeadingTree struct {
	Nodes []HeadingNode

	// Roots are indices of nodes with no open ancestor.
	Roots []int

	bySlug map[string]int
}

// NewHeadingTree creates an empty tree.
func NewHeadingTree() *HeadingTree {
	return &HeadingTree{bySlug: make(map[string]int)}
}

// Add appends a node and registers its slug. It returns the node's
// arena index. Slug uniqueness is the resolver's responsibility;
// Add records the first index for a slug and ignores repeats.
func (t *HeadingTree) Add(node HeadingNode) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, node)
	if node.Parent >= 0 {
		t.Nodes[node.Parent].Children = append(t.Nodes[node.Parent].Children, idx)
	} else {
		t.Roots = append(t.Roots, idx)
	}
	if t.bySlug == nil {
		t.bySlug = make(map[string]int)
	}
	if _, exists := t.bySlug[node.Slug]; !exists {
		t.bySlug[node.Slug] = idx
	}
	return idx
}

// HasSlug reports whether any heading in the tree carries the slug.
func (t *HeadingTree) HasSlug(slug string) bool {
	_, ok := t.bySlug[slug]
	return ok
}

// Lookup returns the arena index for a slug, or -1.
func (t *HeadingTree) Lookup(slug string) int {
	if idx, ok := t.bySlug[slug]; ok {
		return idx
	}
	return -1
}

// Slugs returns all slugs in document order.
func (t *HeadingTree) Slugs() []string {
	slugs := make([]string, len(t.Nodes))
	for i, n := range t.Nodes {
		slugs[i] = n.Slug
	}
	return slugs
}

// Path returns the heading texts from the outermost ancestor down to
// the node at idx. Returns nil for an out-of-range index.
func (t *HeadingTree) Path(idx int) []string {
	if idx < 0 || idx >= len(t.Nodes) {
		return nil
	}
	var rev []string
	for i := idx; i >= 0; i = t.Nodes[i].Parent {
		rev = append(rev, t.Nodes[i].Text)
	}
	path := make([]string, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// Len returns the number of headings in the tree.
func (t *HeadingTree) Len() int {
	return len(t.Nodes)
}

// Reindex rebuilds the slug lookup from Nodes. Needed after
// deserialising a tree, since the lookup map is not persisted.
func (t *HeadingTree) Reindex() {
	t.bySlug = make(map[string]int, len(t.Nodes))
	for i, n := range t.Nodes {
		if _, exists := t.bySlug[n.Slug]; !exists {
			t.bySlug[n.Slug] = i
		}
	}
}
