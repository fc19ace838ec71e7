package graphstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/graphrec/pkg/fs"
	"github.com/calvinalkan/graphrec/pkg/graphstore"
	"github.com/calvinalkan/graphrec/pkg/idgen"
	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
	"github.com/calvinalkan/graphrec/pkg/recordstore"
)

const testCapacity = 128

func openTestStores(t *testing.T, dir string) *graphstore.Stores {
	t.Helper()

	stores, err := graphstore.Open(graphstore.Options{Dir: dir, Capacity: testCapacity, SyncOnClose: true})
	require.NoError(t, err, "open stores")

	t.Cleanup(func() { _ = stores.Close() })

	return stores
}

func Test_Open_Creates_Store_And_Lock_Files_When_Dir_Missing(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "graph.db")
	stores := openTestStores(t, dir)

	require.NoError(t, stores.Close())

	fsys := fs.NewReal()

	for _, k := range record.Kinds() {
		exists, err := fsys.Exists(filepath.Join(dir, k.String()+graphstore.StoreFileSuffix))
		require.NoError(t, err)
		assert.True(t, exists, "%s store file should exist", k)

		exists, err = fsys.Exists(filepath.Join(dir, k.String()+idgen.FileSuffix))
		require.NoError(t, err)
		assert.True(t, exists, "%s id file should be written on close", k)
	}

	exists, err := fsys.Exists(filepath.Join(dir, graphstore.LockFileName))
	require.NoError(t, err)
	assert.True(t, exists)
}

func Test_Open_Returns_ErrBusy_When_Dir_Already_Open(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := openTestStores(t, dir)

	_, err := graphstore.Open(graphstore.Options{Dir: dir, Capacity: testCapacity})
	require.ErrorIs(t, err, graphstore.ErrBusy)

	require.NoError(t, first.Close())

	second, err := graphstore.Open(graphstore.Options{Dir: dir, Capacity: testCapacity})
	require.NoError(t, err, "lock should be released by close")
	require.NoError(t, second.Close())
}

func Test_Open_Returns_ErrIncompatible_When_Capacity_Differs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, openTestStores(t, dir).Close())

	_, err := graphstore.Open(graphstore.Options{Dir: dir, Capacity: testCapacity * 2})
	require.ErrorIs(t, err, recordstore.ErrIncompatible)

	again, err := graphstore.Open(graphstore.Options{Dir: dir, Capacity: testCapacity})
	require.NoError(t, err, "failed open should release the lock")
	require.NoError(t, again.Close())
}

func Test_Open_Keeps_Store_ID_When_Reopened(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := openTestStores(t, dir)
	id := first.StoreID()
	require.NoError(t, first.Close())

	assert.NotEqual(t, uuid.Nil, id)

	for _, f := range []interface{ StoreID() uuid.UUID }{first.Nodes(), first.LabelTokens()} {
		assert.Equal(t, id, f.StoreID())
	}

	assert.Equal(t, id, openTestStores(t, dir).StoreID())
}

func Test_Open_Returns_ErrIncompatible_When_Store_File_From_Other_Dir(t *testing.T) {
	t.Parallel()

	dir, other := t.TempDir(), t.TempDir()
	require.NoError(t, openTestStores(t, dir).Close())
	require.NoError(t, openTestStores(t, other).Close())

	name := record.KindLabelToken.String() + graphstore.StoreFileSuffix

	data, err := os.ReadFile(filepath.Join(other, name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))

	_, err = graphstore.Open(graphstore.Options{Dir: dir, Capacity: testCapacity})
	require.ErrorIs(t, err, recordstore.ErrIncompatible)
	assert.Contains(t, err.Error(), "label_token")
}

func Test_Open_Returns_Error_When_Options_Invalid(t *testing.T) {
	t.Parallel()

	_, err := graphstore.Open(graphstore.Options{Capacity: testCapacity})
	require.Error(t, err)

	_, err = graphstore.Open(graphstore.Options{Dir: t.TempDir(), Capacity: 0})
	require.Error(t, err)
}

func Test_Stores_Persist_Records_And_Watermarks_When_Reopened(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stores := openTestStores(t, dir)

	set := stores.NewDirect()

	label := set.LabelTokenRecords().Create(0).ForChanging()
	label.Name = "Person"

	node := set.NodeRecords().Create(5).ForChanging()
	node.AddLabel(0)

	rel := set.RelationshipRecords().Create(12).ForChanging()
	rel.Link(3, 5, 5)

	require.NoError(t, set.Commit())
	require.NoError(t, stores.Close())

	reopened := openTestStores(t, dir)

	gotNode, err := reopened.Nodes().Load(5)
	require.NoError(t, err)

	wantNode := record.NewNode(5)
	wantNode.AddLabel(0)

	diff := cmp.Diff(wantNode, gotNode, cmpopts.EquateEmpty())
	assert.Empty(t, diff, "node mismatch after reopen")

	gotRel, err := reopened.Relationships().Load(12)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), gotRel.Type)

	relIDs := reopened.IDs().Get(record.KindRelationship)
	assert.Equal(t, int64(13), relIDs.HighID())
	assert.Equal(t, int64(12), relIDs.HighestWritten())

	next, err := reopened.IDs().Get(record.KindNode).NextID()
	require.NoError(t, err)
	assert.Equal(t, int64(6), next, "allocation should continue past written ids")
}

func Test_HighIDs_Reports_Every_Kind_In_Order_When_Called(t *testing.T) {
	t.Parallel()

	stores := openTestStores(t, t.TempDir())

	set := stores.NewDirect()
	set.PropertyRecords().Create(2)
	require.NoError(t, set.Commit())

	want := make([]idgen.State, 0, record.KindCount)
	for _, k := range record.Kinds() {
		want = append(want, idgen.State{Kind: k.String(), HighID: 0, HighestWritten: record.NoID})
	}

	want[record.KindProperty.Index()] = idgen.State{Kind: "property", HighID: 3, HighestWritten: 2}

	diff := cmp.Diff(want, stores.HighIDs())
	assert.Empty(t, diff)
}

func Test_Direct_Commit_Returns_Injected_Error_When_Store_Write_Fails(t *testing.T) {
	t.Parallel()

	faulty := fs.NewFaulty(fs.NewReal(), fs.FaultyConfig{PathSuffix: "relationship" + graphstore.StoreFileSuffix})

	stores, err := graphstore.Open(graphstore.Options{Dir: t.TempDir(), Capacity: testCapacity, FS: faulty})
	require.NoError(t, err)

	t.Cleanup(func() { _ = stores.Close() })

	faulty.SetConfig(fs.FaultyConfig{PathSuffix: "relationship" + graphstore.StoreFileSuffix, FailWrites: true})

	set := stores.NewDirect()
	set.NodeRecords().Create(1)
	set.RelationshipRecords().Create(1)

	err = set.Commit()
	require.Error(t, err)
	assert.True(t, fs.IsInjected(err), "error should carry the injected fault: %v", err)

	_, err = stores.Nodes().Load(1)
	require.NoError(t, err, "earlier kinds stay written")

	_, err = stores.Relationships().Load(1)
	require.ErrorIs(t, err, recordstore.ErrNotFound)

	assert.Equal(t, record.NoID, stores.IDs().Get(record.KindNode).HighestWritten(), "failed commit does not reconcile")
}

func Test_Buffered_Commit_Leaves_Stores_Untouched_When_Sink_Accepts(t *testing.T) {
	t.Parallel()

	stores := openTestStores(t, t.TempDir())

	var applied int

	set := stores.NewBuffered(recordaccess.CommandSinkFunc(func(cmds []recordaccess.Command) error {
		applied = len(cmds)

		return nil
	}))
	set.NodeRecords().Create(0)

	require.NoError(t, set.Commit())
	assert.Equal(t, 1, applied)

	_, err := stores.Nodes().Load(0)
	require.ErrorIs(t, err, recordstore.ErrNotFound)
}

func Test_Close_Is_Idempotent_When_Called_Twice(t *testing.T) {
	t.Parallel()

	stores := openTestStores(t, t.TempDir())

	require.NoError(t, stores.Close())
	require.NoError(t, stores.Close())

	_, err := stores.Nodes().Load(0)
	require.ErrorIs(t, err, recordstore.ErrClosed)
}
