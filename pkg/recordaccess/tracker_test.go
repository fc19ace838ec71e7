package recordaccess_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordstore"
)

func Test_GetOrLoad_Returns_Same_Proxy_When_Called_Twice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.nodes.Put(nodeWithLabels(5, 1))

	set := f.direct()

	first, err := set.NodeRecords().GetOrLoad(5)
	require.NoError(t, err)

	second, err := set.NodeRecords().GetOrLoad(5)
	require.NoError(t, err)

	assert.Same(t, first, second, "tracked id should resolve to one proxy")
	assert.Equal(t, []int64{5}, f.nodes.Loads(), "store should be read once")
	assert.Equal(t, 1, set.NodeRecords().Len())
}

func Test_GetOrLoad_Shares_Changes_Between_Handles_When_Id_Tracked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.nodes.Put(record.NewNode(3))

	set := f.direct()

	a, err := set.NodeRecords().GetOrLoad(3)
	require.NoError(t, err)

	a.ForChanging().AddLabel(9)

	b, err := set.NodeRecords().GetOrLoad(3)
	require.NoError(t, err)

	assert.True(t, b.ForReading().HasLabel(9), "change through one handle should be visible through the other")
}

func Test_GetOrLoad_Keeps_Baseline_When_Working_Copy_Changes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.nodes.Put(nodeWithLabels(5, 2, 4))

	set := f.direct()

	p, err := set.NodeRecords().GetOrLoad(5)
	require.NoError(t, err)

	p.ForChanging().AddLabel(3)
	p.ForChanging().RemoveLabel(4)

	assert.Equal(t, []uint32{2, 4}, p.Before().Labels, "baseline should not alias the working copy")
	assert.Equal(t, []uint32{2, 3}, p.ForReading().Labels)
}

func Test_GetOrLoad_Returns_Error_And_Leaves_Id_Untracked_When_Record_Missing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	set := f.direct()

	_, err := set.NodeRecords().GetOrLoad(7)
	require.ErrorIs(t, err, recordstore.ErrNotFound)

	_, tracked := set.NodeRecords().GetIfLoaded(7)
	assert.False(t, tracked, "failed load should not track the id")
	assert.Equal(t, 0, set.ChangeSize())

	f.nodes.Put(record.NewNode(7))

	p, err := set.NodeRecords().GetOrLoad(7)
	require.NoError(t, err, "load should be retryable")
	assert.Equal(t, int64(7), p.ID())
}

func Test_GetOrLoad_Returns_Error_When_Id_Out_Of_Range(t *testing.T) {
	t.Parallel()

	set := newFixture(t).direct()

	_, err := set.RelationshipRecords().GetOrLoad(testCapacity)
	require.ErrorIs(t, err, recordstore.ErrInvalidID)

	_, err = set.RelationshipRecords().GetOrLoad(-1)
	require.ErrorIs(t, err, recordstore.ErrInvalidID)
}

func Test_Create_Does_Not_Read_Store_When_Called(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	set := f.direct()

	p := set.RelationshipRecords().Create(12)

	assert.Empty(t, f.relationships.Loads(), "create should do no I/O")
	assert.True(t, p.IsCreated())
	assert.True(t, p.IsChanged(), "created proxies are always written")
	assert.Equal(t, 1, set.ChangeSize())

	diff := cmp.Diff(record.NewRelationship(12), p.Before())
	assert.Empty(t, diff, "baseline of a created proxy should be the blank record")
}

func Test_Create_Ignores_Stored_Record_When_Id_Not_Tracked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.nodes.Put(nodeWithLabels(4, 1, 2))

	set := f.direct()

	p := set.NodeRecords().Create(4)

	assert.Empty(t, f.nodes.Loads(), "create should not read the in-use record")
	assert.True(t, p.IsCreated())

	diff := cmp.Diff(record.NewNode(4), p.Before(), cmpopts.EquateEmpty())
	assert.Empty(t, diff, "baseline should be the blank record, not the stored one")

	diff = cmp.Diff(record.NewNode(4), p.ForReading(), cmpopts.EquateEmpty())
	assert.Empty(t, diff)
}

func Test_Create_Resets_Proxy_When_Id_Already_Tracked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.nodes.Put(nodeWithLabels(4, 1, 2))

	set := f.direct()

	loaded, err := set.NodeRecords().GetOrLoad(4)
	require.NoError(t, err)
	require.False(t, loaded.IsCreated())

	created := set.NodeRecords().Create(4)

	assert.Same(t, loaded, created, "re-create should reuse the tracked proxy")
	assert.True(t, loaded.IsCreated())
	assert.Empty(t, loaded.ForReading().Labels, "earlier handles should observe the reset")
	assert.Equal(t, 1, set.NodeRecords().Len())
}

func Test_GetIfLoaded_Does_Not_Read_Store_When_Id_Untracked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.labelTokens.Put(record.NewLabelToken(1))

	set := f.direct()

	p, ok := set.LabelTokenRecords().GetIfLoaded(1)
	assert.False(t, ok)
	assert.Nil(t, p)
	assert.Empty(t, f.labelTokens.Loads())
}

func Test_ForReading_Does_Not_Mark_Changed_When_Called(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.properties.Put(record.NewProperty(2))

	set := f.direct()

	p, err := set.PropertyRecords().GetOrLoad(2)
	require.NoError(t, err)

	_ = p.ForReading()

	assert.False(t, p.IsChanged())
	assert.False(t, set.HasChanges())
	assert.Equal(t, 0, set.ChangeSize())
}

func Test_ForChanging_Marks_Changed_When_Values_Restored(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	prop := record.NewProperty(2)
	prop.Value = record.IntValue(10)
	f.properties.Put(prop)

	set := f.direct()

	p, err := set.PropertyRecords().GetOrLoad(2)
	require.NoError(t, err)

	p.ForChanging().Value = record.IntValue(11)
	p.ForChanging().Value = record.IntValue(10)

	assert.True(t, p.IsChanged(), "changes are not diffed")
	assert.Equal(t, 1, set.ChangeSize())

	diff := cmp.Diff(p.Before(), p.ForReading(), cmpopts.EquateEmpty())
	assert.Empty(t, diff)
}

func Test_Changed_Returns_Proxies_In_Id_Order_When_Tracked_Out_Of_Order(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.nodes.Put(record.NewNode(1))

	set := f.direct()
	nodes := set.NodeRecords()

	nodes.Create(9)
	nodes.Create(3)

	_, err := nodes.GetOrLoad(1)
	require.NoError(t, err)

	nodes.Create(6)

	var ids []int64
	for _, p := range nodes.Changed() {
		ids = append(ids, p.ID())
	}

	assert.Equal(t, []int64{3, 6, 9}, ids, "unchanged proxies are skipped")
	assert.Equal(t, 4, nodes.Len())
	assert.Equal(t, 3, nodes.ChangeSize())
}
