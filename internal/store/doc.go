// Package store provides SQLite-backed durable storage for registrar
// records.
//
// The store holds three record kinds:
//   - Courses: capacity, schedule tag, and enrolled-student roster
//   - Students: credential hash and registered-course list
//   - Admins: credential hash only
//
// The store knows nothing about enrollment rules. It offers per-record
// reads and writes plus one composed write, ApplyEnrollment, which
// commits a course row and a student row in a single transaction so
// the two views of an enrollment can never diverge on disk. All
// business-rule enforcement lives in the registrar engine, which is
// the only writer of course and student records.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Opening a store bootstraps a default admin account if the admins
// table is empty, so at least one admin exists for the store's
// lifetime.
package store
