package engine

import "fmt"

type color uint8

const (
	red color = iota
	black
)

// nilNode is the arena slot of the shared black sentinel. Every leaf and the
// root's parent point at it.
const nilNode int32 = 0

type indexNode struct {
	user   int
	seat   int
	color  color
	left   int32
	right  int32
	parent int32
}

// UserIndex is a red-black tree mapping user IDs to seat IDs. Nodes live in
// an arena and reference each other by slot index; slots released by Delete
// are reused by later inserts.
type UserIndex struct {
	nodes []indexNode
	free  []int32
	root  int32
	size  int
}

// NewUserIndex returns an empty index.
func NewUserIndex() *UserIndex {
	return &UserIndex{
		nodes: []indexNode{{color: black}},
		root:  nilNode,
	}
}

// Len returns the number of users in the index.
func (t *UserIndex) Len() int { return t.size }

// Insert adds user -> seat. Inserting a user that is already present
// overwrites its seat.
func (t *UserIndex) Insert(user, seat int) {
	parent := nilNode
	cur := t.root
	for cur != nilNode {
		parent = cur
		switch {
		case user < t.nodes[cur].user:
			cur = t.nodes[cur].left
		case user > t.nodes[cur].user:
			cur = t.nodes[cur].right
		default:
			t.nodes[cur].seat = seat
			return
		}
	}

	z := t.alloc(user, seat)
	t.nodes[z].parent = parent
	switch {
	case parent == nilNode:
		t.root = z
	case user < t.nodes[parent].user:
		t.nodes[parent].left = z
	default:
		t.nodes[parent].right = z
	}
	t.size++
	t.insertFixup(z)
}

// Search returns the seat held by user.
func (t *UserIndex) Search(user int) (int, bool) {
	n := t.find(user)
	if n == nilNode {
		return 0, false
	}
	return t.nodes[n].seat, true
}

// Delete removes user from the index and reports whether it was present.
func (t *UserIndex) Delete(user int) bool {
	z := t.find(user)
	if z == nilNode {
		return false
	}

	y := z
	removedColor := t.nodes[y].color
	var x int32
	switch {
	case t.nodes[z].left == nilNode:
		x = t.nodes[z].right
		t.transplant(z, x)
	case t.nodes[z].right == nilNode:
		x = t.nodes[z].left
		t.transplant(z, x)
	default:
		y = t.minimum(t.nodes[z].right)
		removedColor = t.nodes[y].color
		x = t.nodes[y].right
		if t.nodes[y].parent == z {
			t.nodes[x].parent = y
		} else {
			t.transplant(y, x)
			t.nodes[y].right = t.nodes[z].right
			t.nodes[t.nodes[y].right].parent = y
		}
		t.transplant(z, y)
		t.nodes[y].left = t.nodes[z].left
		t.nodes[t.nodes[y].left].parent = y
		t.nodes[y].color = t.nodes[z].color
	}

	if removedColor == black {
		t.deleteFixup(x)
	}
	// the sentinel's parent is scratch space during removal
	t.nodes[nilNode] = indexNode{color: black}
	t.release(z)
	t.size--
	return true
}

// InOrder returns every (user, seat) pair sorted by user ID.
func (t *UserIndex) InOrder() []Reservation {
	out := make([]Reservation, 0, t.size)
	t.AscendRange(minInt, maxInt, func(user, seat int) bool {
		out = append(out, Reservation{UserID: user, SeatID: seat})
		return true
	})
	return out
}

// AscendRange calls fn for every user in [lo, hi] in ascending order until fn
// returns false.
func (t *UserIndex) AscendRange(lo, hi int, fn func(user, seat int) bool) {
	t.ascend(t.root, lo, hi, fn)
}

func (t *UserIndex) ascend(n int32, lo, hi int, fn func(user, seat int) bool) bool {
	if n == nilNode {
		return true
	}
	node := t.nodes[n]
	if lo < node.user {
		if !t.ascend(node.left, lo, hi, fn) {
			return false
		}
	}
	if lo <= node.user && node.user <= hi {
		if !fn(node.user, node.seat) {
			return false
		}
	}
	if node.user < hi {
		return t.ascend(node.right, lo, hi, fn)
	}
	return true
}

func (t *UserIndex) find(user int) int32 {
	n := t.root
	for n != nilNode {
		switch {
		case user < t.nodes[n].user:
			n = t.nodes[n].left
		case user > t.nodes[n].user:
			n = t.nodes[n].right
		default:
			return n
		}
	}
	return nilNode
}

func (t *UserIndex) minimum(n int32) int32 {
	for t.nodes[n].left != nilNode {
		n = t.nodes[n].left
	}
	return n
}

func (t *UserIndex) alloc(user, seat int) int32 {
	node := indexNode{user: user, seat: seat, color: red}
	if k := len(t.free); k > 0 {
		slot := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[slot] = node
		return slot
	}
	t.nodes = append(t.nodes, node)
	return int32(len(t.nodes) - 1)
}

func (t *UserIndex) release(slot int32) {
	t.nodes[slot] = indexNode{}
	t.free = append(t.free, slot)
}

func (t *UserIndex) rotateLeft(x int32) {
	y := t.nodes[x].right
	t.nodes[x].right = t.nodes[y].left
	if t.nodes[y].left != nilNode {
		t.nodes[t.nodes[y].left].parent = x
	}
	xp := t.nodes[x].parent
	t.nodes[y].parent = xp
	switch {
	case xp == nilNode:
		t.root = y
	case x == t.nodes[xp].left:
		t.nodes[xp].left = y
	default:
		t.nodes[xp].right = y
	}
	t.nodes[y].left = x
	t.nodes[x].parent = y
}

func (t *UserIndex) rotateRight(x int32) {
	y := t.nodes[x].left
	t.nodes[x].left = t.nodes[y].right
	if t.nodes[y].right != nilNode {
		t.nodes[t.nodes[y].right].parent = x
	}
	xp := t.nodes[x].parent
	t.nodes[y].parent = xp
	switch {
	case xp == nilNode:
		t.root = y
	case x == t.nodes[xp].right:
		t.nodes[xp].right = y
	default:
		t.nodes[xp].left = y
	}
	t.nodes[y].right = x
	t.nodes[x].parent = y
}

func (t *UserIndex) insertFixup(z int32) {
	for t.nodes[t.nodes[z].parent].color == red {
		p := t.nodes[z].parent
		g := t.nodes[p].parent
		if p == t.nodes[g].left {
			uncle := t.nodes[g].right
			if t.nodes[uncle].color == red {
				t.nodes[p].color = black
				t.nodes[uncle].color = black
				t.nodes[g].color = red
				z = g
				continue
			}
			if z == t.nodes[p].right {
				z = p
				t.rotateLeft(z)
				p = t.nodes[z].parent
			}
			t.nodes[p].color = black
			t.nodes[g].color = red
			t.rotateRight(g)
		} else {
			uncle := t.nodes[g].left
			if t.nodes[uncle].color == red {
				t.nodes[p].color = black
				t.nodes[uncle].color = black
				t.nodes[g].color = red
				z = g
				continue
			}
			if z == t.nodes[p].left {
				z = p
				t.rotateRight(z)
				p = t.nodes[z].parent
			}
			t.nodes[p].color = black
			t.nodes[g].color = red
			t.rotateLeft(g)
		}
	}
	t.nodes[t.root].color = black
}

// transplant replaces the subtree rooted at u with the one rooted at v.
func (t *UserIndex) transplant(u, v int32) {
	up := t.nodes[u].parent
	switch {
	case up == nilNode:
		t.root = v
	case u == t.nodes[up].left:
		t.nodes[up].left = v
	default:
		t.nodes[up].right = v
	}
	t.nodes[v].parent = up
}

func (t *UserIndex) deleteFixup(x int32) {
	for x != t.root && t.nodes[x].color == black {
		p := t.nodes[x].parent
		if x == t.nodes[p].left {
			w := t.nodes[p].right
			if t.nodes[w].color == red {
				t.nodes[w].color = black
				t.nodes[p].color = red
				t.rotateLeft(p)
				w = t.nodes[p].right
			}
			if t.nodes[t.nodes[w].left].color == black && t.nodes[t.nodes[w].right].color == black {
				t.nodes[w].color = red
				x = p
				continue
			}
			if t.nodes[t.nodes[w].right].color == black {
				t.nodes[t.nodes[w].left].color = black
				t.nodes[w].color = red
				t.rotateRight(w)
				w = t.nodes[p].right
			}
			t.nodes[w].color = t.nodes[p].color
			t.nodes[p].color = black
			t.nodes[t.nodes[w].right].color = black
			t.rotateLeft(p)
			x = t.root
		} else {
			w := t.nodes[p].left
			if t.nodes[w].color == red {
				t.nodes[w].color = black
				t.nodes[p].color = red
				t.rotateRight(p)
				w = t.nodes[p].left
			}
			if t.nodes[t.nodes[w].right].color == black && t.nodes[t.nodes[w].left].color == black {
				t.nodes[w].color = red
				x = p
				continue
			}
			if t.nodes[t.nodes[w].left].color == black {
				t.nodes[t.nodes[w].right].color = black
				t.nodes[w].color = red
				t.rotateLeft(w)
				w = t.nodes[p].left
			}
			t.nodes[w].color = t.nodes[p].color
			t.nodes[p].color = black
			t.nodes[t.nodes[w].left].color = black
			t.rotateRight(p)
			x = t.root
		}
	}
	t.nodes[x].color = black
}

// verify checks the binary-search and red-black properties and returns the
// first violation found.
func (t *UserIndex) verify() error {
	if t.nodes[nilNode].color != black {
		return fmt.Errorf("sentinel is not black")
	}
	if t.root != nilNode {
		if t.nodes[t.root].color != black {
			return fmt.Errorf("root %d is red", t.nodes[t.root].user)
		}
		if t.nodes[t.root].parent != nilNode {
			return fmt.Errorf("root %d has a parent", t.nodes[t.root].user)
		}
	}
	count := 0
	if _, err := t.verifyNode(t.root, minInt, maxInt, &count); err != nil {
		return err
	}
	if count != t.size {
		return fmt.Errorf("size %d, counted %d nodes", t.size, count)
	}
	return nil
}

func (t *UserIndex) verifyNode(n int32, lo, hi int, count *int) (int, error) {
	if n == nilNode {
		return 1, nil
	}
	*count++
	node := t.nodes[n]
	if node.user < lo || node.user > hi {
		return 0, fmt.Errorf("user %d outside [%d, %d]", node.user, lo, hi)
	}
	for _, c := range []int32{node.left, node.right} {
		if c == nilNode {
			continue
		}
		if t.nodes[c].parent != n {
			return 0, fmt.Errorf("child %d of %d has wrong parent", t.nodes[c].user, node.user)
		}
		if node.color == red && t.nodes[c].color == red {
			return 0, fmt.Errorf("red node %d has red child %d", node.user, t.nodes[c].user)
		}
	}
	lh, err := t.verifyNode(node.left, lo, node.user-1, count)
	if err != nil {
		return 0, err
	}
	rh, err := t.verifyNode(node.right, node.user+1, hi, count)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, fmt.Errorf("black height mismatch under %d: %d vs %d", node.user, lh, rh)
	}
	if node.color == black {
		lh++
	}
	return lh, nil
}
