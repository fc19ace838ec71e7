// Package idgen allocates record ids per record kind and tracks the id
// watermarks the stores rely on after out-of-band writes.
//
// Every [Generator] keeps two numbers:
//   - high id: the next id [Generator.NextID] hands out. Writes at or above it
//     (reported through [Generator.MarkUsed]) push it past the written id.
//   - highest written: the largest id known to be written at a reconciliation
//     point. [Generator.MarkHighestWrittenAtHighID] moves it to high id - 1.
//
// A [Factory] owns one generator per kind. File-backed factories persist each
// generator as "<kind>.id" JSON, replaced atomically on [Factory.Checkpoint].
package idgen
