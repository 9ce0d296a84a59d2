// Package mutate performs single-byte mutations of a file through a
// draft-construction, integrity-verification, atomic-swap protocol.
//
// Three operations are supported: replace a byte in place, remove a byte
// (frame-shifting everything after it back by one), and add a byte
// (frame-shifting everything after it forward by one). All three share one
// pipeline:
//
//  1. Validate: the path exists, is a regular file, and the position is in
//     bounds for the operation.
//  2. Backup: copy the original to a sibling <name>.backup.
//  3. Build: stream the original through a small fixed-size buffer into a
//     sibling <name>.draft, applying the operation at the target offset.
//     The original is never written to.
//  4. Verify: re-open original and draft and prove, in four ordered phases,
//     that the draft differs from the original in exactly the intended way.
//  5. Swap: rename the draft over the original.
//  6. Cleanup: delete the backup.
//
// CRITICAL PATTERNS:
//
// Original-Is-Never-Touched:
// Every byte of the result is written to the draft; the original file's
// bytes are only ever read until the final rename replaces the whole file
// at once. A failure at any step before the swap leaves the original
// byte-for-byte intact.
//
// Bounded Memory:
// All IO goes through 64-byte windows. Memory use is O(1) in file size, so
// arbitrarily large files are processed without ever being materialized.
//
// Recovery By Artifact:
// A leftover .draft signals an incomplete build or a failed verification
// (the draft is kept only long enough to inspect, then deleted). A leftover
// .backup signals a failed swap; together with the untouched original and
// the verified draft it is the manual-recovery kit for the one state that
// needs operator intervention.
//
// The pipeline is single-threaded and fully synchronous. No lock is taken
// on the target path; racing two invocations on the same file is caller
// error.
package mutate
