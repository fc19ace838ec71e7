// Package recordaccess tracks changes to graph records and commits them to
// the record stores as one unit.
//
// A [RecordAccessSet] owns one [Tracker] per record kind. Kernel code asks a
// tracker for a [Proxy] by id, either loading the stored record
// ([Tracker.GetOrLoad]) or starting from a blank one ([Tracker.Create]),
// mutates the proxy's working copy through [Proxy.ForChanging], and finally
// calls Commit on the set.
//
//	set := recordaccess.NewDirect(stores, idGenerators)
//
//	node := set.NodeRecords().Create(5)
//	node.ForChanging().AddLabel(3)
//
//	err := set.Commit() // writes node 5, then reconciles id watermarks
//
// Nothing reaches a store before Commit, so dropping a set without
// committing leaves every store untouched.
//
// # Variants
//
// [Direct] writes changed records to the stores and then moves every id
// generator's highest written id up to its high id. [Buffered] tracks the same
// way but hands the changes to a [CommandSink] as [Command] values instead of
// writing them.
//
// # Concurrency
//
// Sets, trackers and proxies are NOT safe for concurrent use. Use one set per
// unit of work, and do not let sets with overlapping ids commit concurrently.
package recordaccess
