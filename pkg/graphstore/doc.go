// Package graphstore opens the record stores of a graph database directory.
//
// A directory holds one store file per record kind (<kind>.store), one id
// watermark file per kind (<kind>.id) and the lock file graphrec.lock. Only
// one [Stores] may have a directory open at a time, across processes:
//
//	stores, err := graphstore.Open(graphstore.Options{Dir: "graph.db", Capacity: 1 << 20})
//	if err != nil {
//		return err
//	}
//	defer stores.Close()
//
//	set := stores.NewDirect()
//	set.NodeRecords().Create(0).ForChanging().AddLabel(1)
//	err = set.Commit()
package graphstore
