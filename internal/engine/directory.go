package engine

// Directory is the authoritative user -> seat record of active reservations.
type Directory struct {
	seats map[int]int
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{seats: make(map[int]int)}
}

// Get returns the seat held by user.
func (d *Directory) Get(user int) (int, bool) {
	seat, ok := d.seats[user]
	return seat, ok
}

// Holds reports whether user holds exactly seat.
func (d *Directory) Holds(user, seat int) bool {
	s, ok := d.seats[user]
	return ok && s == seat
}

// Put records user -> seat, replacing any previous seat for user.
func (d *Directory) Put(user, seat int) { d.seats[user] = seat }

// Delete removes user.
func (d *Directory) Delete(user int) { delete(d.seats, user) }

// Len returns the number of active reservations.
func (d *Directory) Len() int { return len(d.seats) }
