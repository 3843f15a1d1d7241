package engine

import (
	"math/rand"
	"slices"
	"testing"
)

func TestUserIndexInsertSearch(t *testing.T) {
	idx := NewUserIndex()
	for i, u := range []int{50, 20, 70, 10, 30, 60, 80, 25, 27, 26} {
		idx.Insert(u, i+1)
		if err := idx.verify(); err != nil {
			t.Fatalf("after insert %d: %v", u, err)
		}
	}
	if idx.Len() != 10 {
		t.Errorf("Len() = %d, want 10", idx.Len())
	}
	if seat, ok := idx.Search(30); !ok || seat != 5 {
		t.Errorf("Search(30) = %d, %v, want 5, true", seat, ok)
	}
	if _, ok := idx.Search(99); ok {
		t.Errorf("Search(99) found a seat, want none")
	}
}

func TestUserIndexInsertExistingOverwrites(t *testing.T) {
	idx := NewUserIndex()
	idx.Insert(1, 1)
	idx.Insert(1, 9)
	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1", idx.Len())
	}
	if seat, _ := idx.Search(1); seat != 9 {
		t.Errorf("Search(1) = %d, want 9", seat)
	}
}

func TestUserIndexDelete(t *testing.T) {
	tests := []struct {
		name    string
		insert  []int
		remove  []int
		wantIn  []int
		missing int
	}{
		{name: "leaf", insert: []int{2, 1, 3}, remove: []int{3}, wantIn: []int{1, 2}, missing: 3},
		{name: "root with two children", insert: []int{2, 1, 3}, remove: []int{2}, wantIn: []int{1, 3}, missing: 2},
		{name: "only node", insert: []int{7}, remove: []int{7}, wantIn: []int{}, missing: 7},
		{name: "absent is no-op", insert: []int{1, 2}, remove: []int{5}, wantIn: []int{1, 2}, missing: 5},
		{
			name:    "ascending run",
			insert:  []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			remove:  []int{4, 1, 8, 10, 2},
			wantIn:  []int{3, 5, 6, 7, 9},
			missing: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewUserIndex()
			for _, u := range tt.insert {
				idx.Insert(u, u*10)
			}
			for _, u := range tt.remove {
				idx.Delete(u)
				if err := idx.verify(); err != nil {
					t.Fatalf("after delete %d: %v", u, err)
				}
			}
			var got []int
			for _, r := range idx.InOrder() {
				got = append(got, r.UserID)
			}
			if !slices.Equal(got, tt.wantIn) {
				t.Errorf("InOrder users = %v, want %v", got, tt.wantIn)
			}
			if _, ok := idx.Search(tt.missing); ok {
				t.Errorf("Search(%d) found deleted user", tt.missing)
			}
		})
	}
}

func TestUserIndexRandomAgainstMap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	idx := NewUserIndex()
	want := map[int]int{}
	for i := 0; i < 5000; i++ {
		u := rng.Intn(300)
		if rng.Intn(3) == 0 {
			_, had := want[u]
			if got := idx.Delete(u); got != had {
				t.Fatalf("Delete(%d) = %v, want %v", u, got, had)
			}
			delete(want, u)
		} else {
			idx.Insert(u, i)
			want[u] = i
		}
		if i%97 == 0 {
			if err := idx.verify(); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
		}
	}
	if err := idx.verify(); err != nil {
		t.Fatal(err)
	}
	if idx.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", idx.Len(), len(want))
	}
	prev := minInt
	for _, r := range idx.InOrder() {
		if r.UserID <= prev {
			t.Fatalf("InOrder not ascending at user %d", r.UserID)
		}
		prev = r.UserID
		if want[r.UserID] != r.SeatID {
			t.Errorf("user %d seat = %d, want %d", r.UserID, r.SeatID, want[r.UserID])
		}
	}
}

func TestUserIndexReusesSlots(t *testing.T) {
	idx := NewUserIndex()
	for u := 1; u <= 8; u++ {
		idx.Insert(u, u)
	}
	arena := len(idx.nodes)
	for u := 1; u <= 8; u++ {
		idx.Delete(u)
	}
	for u := 11; u <= 18; u++ {
		idx.Insert(u, u)
	}
	if len(idx.nodes) != arena {
		t.Errorf("arena grew to %d slots, want %d", len(idx.nodes), arena)
	}
	if err := idx.verify(); err != nil {
		t.Fatal(err)
	}
}

func TestUserIndexAscendRange(t *testing.T) {
	idx := NewUserIndex()
	for _, u := range []int{9, 3, 7, 1, 5, 11, 13} {
		idx.Insert(u, u+100)
	}
	tests := []struct {
		lo, hi int
		want   []int
	}{
		{lo: 3, hi: 9, want: []int{3, 5, 7, 9}},
		{lo: 4, hi: 4, want: nil},
		{lo: 0, hi: 100, want: []int{1, 3, 5, 7, 9, 11, 13}},
		{lo: 12, hi: 13, want: []int{13}},
	}
	for _, tt := range tests {
		var got []int
		idx.AscendRange(tt.lo, tt.hi, func(user, seat int) bool {
			if seat != user+100 {
				t.Errorf("user %d seat = %d, want %d", user, seat, user+100)
			}
			got = append(got, user)
			return true
		})
		if !slices.Equal(got, tt.want) {
			t.Errorf("AscendRange(%d, %d) = %v, want %v", tt.lo, tt.hi, got, tt.want)
		}
	}

	var first []int
	idx.AscendRange(0, 100, func(user, _ int) bool {
		first = append(first, user)
		return len(first) < 2
	})
	if !slices.Equal(first, []int{1, 3}) {
		t.Errorf("early stop visited %v, want [1 3]", first)
	}
}
