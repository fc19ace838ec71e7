// Package recordstore implements id-addressed stores of fixed-size records.
//
// A store holds the records of one [record.Kind]. Record id n lives in slot n;
// stores never relocate records. Two implementations exist:
//   - [File]: slots in a single file behind a checksummed header
//   - [Memory]: slots in a map, for tests and tools
//
// Both encode with the kind's [record.Format], so records that do not fit the
// layout fail the same way in either store.
//
// # Errors
//
// Load reports [ErrNotFound] for slots that were never written or hold a
// record that is not in use, [ErrCorrupt] for checksum or layout failures, and
// [ErrInvalidID] for ids outside [0, capacity). Update reports [ErrInvalidID]
// and wraps encoding failures ([record.ErrInvalid]) and I/O errors.
package recordstore
