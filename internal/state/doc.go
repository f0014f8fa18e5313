// Package state tracks installed skills and commands in lock files.
//
// Two stores share one implementation and differ only in [Policy]:
//
//   - the global store, <state dir>/skills.lock, shaped
//     {"lastUpdate": ..., "skills": {...}}. It is created on first use,
//     replaced with an empty file when corrupt, and kept when empty.
//   - the local store, <project>/skills.lock, shaped
//     {"version": "1.0.0", "skills": {...}}. A missing or corrupt file
//     means "no store", and the file is deleted when its last entry goes.
//
// Entries are keyed by "<kind>:<name>" (see [Key]). [Clean] drops entries
// whose item is no longer installed in any agent directory.
//
// Stores assume a single writer; concurrent processes may lose updates.
package state
