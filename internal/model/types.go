package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Record versions stamped on newly built programs and lineage.
const (
	SchemaVersion = 1
	CodecVersion  = 1
)

// CurrentVersion returns the record version new data is written with.
func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: SchemaVersion, CodecVersion: CodecVersion}
}

// NodeID addresses a node inside a program arena.
type NodeID int32

// NoNode marks an unused child slot or a missing parent.
const NoNode NodeID = -1

// Kind distinguishes exclusively-owned trees from programs with shared
// sub-expressions.
type Kind string

const (
	KindTree  Kind = "tree"
	KindGraph Kind = "graph"
)

// Side records which child slot of a parent a node occupies.
type Side byte

const (
	SideLeft  Side = 'l'
	SideRight Side = 'r'
	SideRoot  Side = 'n'
)

func (s Side) String() string {
	return string(rune(s))
}

// Node is one arena slot. Leaves carry either Value (Constant) or Feature;
// operator nodes carry Op and Degree children.
type Node struct {
	Degree   int     `json:"degree"`
	Constant bool    `json:"constant,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Feature  int     `json:"feature,omitempty"`
	Op       int     `json:"op,omitempty"`
	Left     NodeID  `json:"left"`
	Right    NodeID  `json:"right"`
}

func ConstantLeaf(value float64) Node {
	return Node{Constant: true, Value: value, Left: NoNode, Right: NoNode}
}

func FeatureLeaf(feature int) Node {
	return Node{Feature: feature, Left: NoNode, Right: NoNode}
}

func UnaryNode(op int, child NodeID) Node {
	return Node{Degree: 1, Op: op, Left: child, Right: NoNode}
}

func BinaryNode(op int, left, right NodeID) Node {
	return Node{Degree: 2, Op: op, Left: left, Right: right}
}

// Children returns the child references in slot order; its length equals Degree.
func (n Node) Children() []NodeID {
	switch n.Degree {
	case 1:
		return []NodeID{n.Left}
	case 2:
		return []NodeID{n.Left, n.Right}
	default:
		return nil
	}
}

func (n Node) IsLeaf() bool {
	return n.Degree == 0
}

// Child returns the reference held in the given slot.
func (n Node) Child(side Side) NodeID {
	if side == SideRight {
		return n.Right
	}
	return n.Left
}

// SetChild installs id into the given slot.
func (n *Node) SetChild(side Side, id NodeID) {
	if side == SideRight {
		n.Right = id
		return
	}
	n.Left = id
}

// Program is an expression stored as an arena of nodes reachable from Root.
// Unreachable slots are garbage until the arena is compacted.
type Program struct {
	VersionedRecord
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Root  NodeID `json:"root"`
	Nodes []Node `json:"nodes"`
}

// NewProgram returns a program whose root is the given node.
func NewProgram(kind Kind, root Node) *Program {
	if kind == "" {
		kind = KindTree
	}
	p := &Program{VersionedRecord: CurrentVersion(), Kind: kind, Root: NoNode}
	p.Root = p.Add(root)
	return p
}

// Add appends a node to the arena and returns its identifier.
func (p *Program) Add(n Node) NodeID {
	p.Nodes = append(p.Nodes, n)
	return NodeID(len(p.Nodes) - 1)
}

// Node returns a pointer to the arena slot for id. The pointer is invalidated
// by the next Add.
func (p *Program) Node(id NodeID) *Node {
	return &p.Nodes[id]
}

// Valid reports whether id addresses an arena slot.
func (p *Program) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(p.Nodes)
}

func (p *Program) IsGraph() bool {
	return p.Kind == KindGraph
}

// LineageRecord links a program to the operation and parents that produced it.
type LineageRecord struct {
	VersionedRecord
	ProgramID   string   `json:"program_id"`
	ParentIDs   []string `json:"parent_ids"`
	Operation   string   `json:"operation"`
	NodeCount   int      `json:"node_count"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}
