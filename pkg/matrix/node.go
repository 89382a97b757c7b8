package matrix

// Node is an electrical point of the matrix. It is either a Leaf or a Bus;
// no other implementations exist.
type Node interface {
	Name() string
	node()
}

// Leaf is a path endpoint: a port, a shunt, a supply rail.
type Leaf string

// Bus is an internal junction. It may only appear between the endpoints of
// a path.
type Bus string

func (l Leaf) Name() string { return string(l) }
func (Leaf) node() {}

func (b Bus) Name() string { return string(b) }
func (Bus) node() {}

func isLeaf(n Node) bool {
	_, ok := n.(Leaf)
	return ok
}

func isBus(n Node) bool {
	_, ok := n.(Bus)
	return ok
}
