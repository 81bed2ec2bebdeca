package leaderboard

import (
	"math/rand"
	"sync"
)

// Skip list with span counts for O(log n) rank and range queries, the same
// layout Redis uses for sorted sets (Pugh 1990).
const (
	maxLevel         = 32
	levelProbability = 0.25
)

type skipNode struct {
	entry Entry
	seq   uint64      // Insertion order; earlier rows win ties
	next  []*skipNode // Forward pointers, one per level
	span  []int       // Rank distance to next[i]
}

// before reports whether a ranks ahead of b: higher score first, then
// earlier insertion.
func before(aScore int, aSeq uint64, bScore int, bSeq uint64) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aSeq < bSeq
}

// SkipList keeps entries ranked by score descending.
type SkipList struct {
	mu     sync.RWMutex
	head   *skipNode
	level  int
	length int
	seq    uint64
	index  map[string]*skipNode // ID -> node
	rng    *rand.Rand
}

// NewSkipList creates an empty list. seed fixes node heights for tests.
func NewSkipList(seed int64) *SkipList {
	return &SkipList{
		head: &skipNode{
			next: make([]*skipNode, maxLevel),
			span: make([]int, maxLevel),
		},
		level: 1,
		index: make(map[string]*skipNode),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (sl *SkipList) randomLevel() int {
	level := 1
	for level < maxLevel && sl.rng.Float64() < levelProbability {
		level++
	}
	return level
}

// Insert adds an entry. The entry's ID must be unique; inserting an existing
// ID replaces the old row.
func (sl *SkipList) Insert(e Entry) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if old, ok := sl.index[e.ID]; ok {
		sl.remove(old)
	}

	sl.seq++
	seq := sl.seq

	update := make([]*skipNode, maxLevel)
	rank := make([]int, maxLevel)

	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		if i < sl.level-1 {
			rank[i] = rank[i+1]
		}
		for x.next[i] != nil && before(x.next[i].entry.Score, x.next[i].seq, e.Score, seq) {
			rank[i] += x.span[i]
			x = x.next[i]
		}
		update[i] = x
	}

	level := sl.randomLevel()
	if level > sl.level {
		for i := sl.level; i < level; i++ {
			rank[i] = 0
			update[i] = sl.head
			update[i].span[i] = sl.length
		}
		sl.level = level
	}

	node := &skipNode{
		entry: e,
		seq:   seq,
		next:  make([]*skipNode, level),
		span:  make([]int, level),
	}
	for i := 0; i < level; i++ {
		node.next[i] = update[i].next[i]
		update[i].next[i] = node
		node.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = rank[0] - rank[i] + 1
	}
	for i := level; i < sl.level; i++ {
		update[i].span[i]++
	}

	sl.index[e.ID] = node
	sl.length++
}

// Remove deletes the entry with the given ID.
func (sl *SkipList) Remove(id string) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	node, ok := sl.index[id]
	if !ok {
		return false
	}
	sl.remove(node)
	return true
}

// remove unlinks a node. Caller holds the write lock.
func (sl *SkipList) remove(node *skipNode) {
	update := make([]*skipNode, maxLevel)
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && x.next[i] != node &&
			before(x.next[i].entry.Score, x.next[i].seq, node.entry.Score, node.seq) {
			x = x.next[i]
		}
		update[i] = x
	}

	for i := 0; i < sl.level; i++ {
		if update[i].next[i] == node {
			update[i].span[i] += node.span[i] - 1
			update[i].next[i] = node.next[i]
		} else {
			update[i].span[i]--
		}
	}
	for sl.level > 1 && sl.head.next[sl.level-1] == nil {
		sl.level--
	}

	delete(sl.index, node.entry.ID)
	sl.length--
}

// Rank returns the 1-indexed rank of an ID, or 0 if absent.
func (sl *SkipList) Rank(id string) int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	node, ok := sl.index[id]
	if !ok {
		return 0
	}

	rank := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil &&
			(x.next[i] == node || before(x.next[i].entry.Score, x.next[i].seq, node.entry.Score, node.seq)) {
			rank += x.span[i]
			x = x.next[i]
			if x == node {
				return rank
			}
		}
	}
	return 0
}

// Range returns entries ranked [start, end], 1-indexed and inclusive.
func (sl *SkipList) Range(start, end int) []Entry {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	if start <= 0 {
		start = 1
	}
	if end > sl.length {
		end = sl.length
	}
	if start > end {
		return nil
	}

	traversed := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && traversed+x.span[i] < start {
			traversed += x.span[i]
			x = x.next[i]
		}
	}

	out := make([]Entry, 0, end-start+1)
	for x = x.next[0]; x != nil && traversed < end; x = x.next[0] {
		traversed++
		out = append(out, x.entry)
	}
	return out
}

// Len returns the number of entries.
func (sl *SkipList) Len() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.length
}

// ForEach visits entries best-first until fn returns false.
func (sl *SkipList) ForEach(fn func(rank int, e Entry) bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	rank := 0
	for x := sl.head.next[0]; x != nil; x = x.next[0] {
		rank++
		if !fn(rank, x.entry) {
			return
		}
	}
}
