// Package journal keeps record access commands in a SQLite database until
// they are replayed into the stores.
//
// A [Journal] is a [recordaccess.CommandSink]: a buffered record access set
// committing into it appends one batch holding the before and after image of
// every changed record. [Replay] applies the after images of pending batches,
// in append order, through direct record access sets and marks each batch
// applied once its set committed.
//
// Replaying a batch twice writes the same images twice, so a crash between a
// commit and marking the batch applied leaves the stores correct.
package journal
