package neat

// InnovationTracker is the historical ledger of a population. It maps
// structural events, keyed by global node ids, to stable ids so that genomes
// which independently make the same mutation end up with identical genes.
// Both maps only ever grow.
type InnovationTracker struct {
	splits         map[ConnectionKey]int // (from, to) -> global id of the inserted node
	edges          map[ConnectionKey]int // (from, to) -> innovation number
	nextNode       int
	nextInnovation int
}

// NewInnovationTracker creates a ledger for genomes with the given shape.
// The fully connected input/bias -> output edges created by ConnectEnds are
// registered up front with their deterministic innovation numbers.
func NewInnovationTracker(inputs, outputs int) *InnovationTracker {
	t := &InnovationTracker{
		splits:         make(map[ConnectionKey]int),
		edges:          make(map[ConnectionKey]int),
		nextNode:       inputs + outputs + 1,
		nextInnovation: (inputs + 1) * outputs,
	}
	for i := 0; i <= inputs; i++ {
		for j := 0; j < outputs; j++ {
			t.edges[ConnectionKey{InNodeID: i, OutNodeID: inputs + 1 + j}] = i*outputs + j
		}
	}
	return t
}

// SplitNode returns the global id of the node inserted when the edge
// (from, to) is split, allocating it on first use.
func (t *InnovationTracker) SplitNode(from, to int) int {
	key := ConnectionKey{InNodeID: from, OutNodeID: to}
	id, ok := t.splits[key]
	if !ok {
		id = t.nextNode
		t.nextNode++
		t.splits[key] = id
	}
	return id
}

// EdgeInnovation returns the innovation number of the edge (from, to),
// allocating it on first use.
func (t *InnovationTracker) EdgeInnovation(from, to int) int {
	key := ConnectionKey{InNodeID: from, OutNodeID: to}
	inno, ok := t.edges[key]
	if !ok {
		inno = t.nextInnovation
		t.nextInnovation++
		t.edges[key] = inno
	}
	return inno
}

// NodeCount returns the next global node id to be handed out.
func (t *InnovationTracker) NodeCount() int { return t.nextNode }

// InnovationCount returns the next innovation number to be handed out.
func (t *InnovationTracker) InnovationCount() int { return t.nextInnovation }
