// Package registrar implements the enrollment consistency engine.
//
// The engine is the heart of the registrar - it is the only writer of
// course and student records and the only place enrollment rules are
// enforced: seat capacity, the per-student course limit, and schedule
// conflicts.
//
// ARCHITECTURE:
//
// Keyed Critical Sections:
// Every mutating operation runs inside an exclusive critical section
// keyed by the records it touches (course:NAME, student:USERNAME).
// Register and Withdraw touch one course and one student, so they
// acquire both keys, in sorted order to avoid deadlock. Two operations
// over disjoint records proceed concurrently; two operations sharing a
// record are strictly ordered, so no caller can observe a half-applied
// enrollment or win a seat that was already taken.
//
// The full read-check-write sequence happens under the lock. Checking
// availability in one critical section and applying the update in
// another would let two students both observe the last open seat and
// both take it; that split is exactly what this package exists to rule
// out.
//
// The store commits the course row and student row of an enrollment in
// a single transaction, so a caller dying between the two writes
// leaves both or neither.
//
// Failures surface as *OpError values carrying a stable code; they are
// results, never panics, and never cross the connection boundary as
// anything but an error envelope.
package registrar
