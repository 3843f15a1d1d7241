// Package engine implements the single-venue seat reservation authority.
//
// An Engine owns four structures and keeps them mutually consistent across
// every operation:
//
//   - UserIndex, a red-black tree keyed by user ID holding each active
//     reservation's seat;
//   - Directory, the authoritative user -> seat mapping, always mutated in
//     lockstep with the UserIndex;
//   - SeatPool, a min-heap of free seat numbers so the lowest free seat is
//     always handed out first;
//   - Waitlist, a max-heap ordered by priority and then by arrival.
//
// After any operation completes, free seats plus reservations equal the
// capacity, and the waitlist is empty whenever a free seat exists.
//
// An Engine is not safe for concurrent use. Wrap it in a Guarded when more
// than one goroutine needs access.
package engine
