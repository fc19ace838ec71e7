package graphstore

import "errors"

// ErrBusy indicates another [Stores] holds the directory lock.
//
// Recovery: close the other instance, or wait for the process holding it to
// exit. Open never waits for the lock.
var ErrBusy = errors.New("graphstore: directory in use")
