package recordaccess_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
)

var discardSink = recordaccess.CommandSinkFunc(func([]recordaccess.Command) error { return nil })

func Test_Buffered_Commit_Hands_Commands_To_Sink_When_Changes_Exist(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.nodes.Put(nodeWithLabels(2, 1))

	var got []recordaccess.Command

	set := recordaccess.NewBuffered(f.stores(), recordaccess.CommandSinkFunc(func(cmds []recordaccess.Command) error {
		got = cmds

		return nil
	}))

	set.RelationshipTypeTokenRecords().Create(0).ForChanging().Name = "KNOWS"

	p, err := set.NodeRecords().GetOrLoad(2)
	require.NoError(t, err)
	p.ForChanging().AddLabel(7)

	require.NoError(t, set.Commit())

	wantType := record.NewRelationshipTypeToken(0)
	wantType.Name = "KNOWS"

	want := []recordaccess.Command{
		{
			Kind:   record.KindNode,
			ID:     2,
			Before: nodeWithLabels(2, 1),
			After:  nodeWithLabels(2, 1, 7),
		},
		{
			Kind:    record.KindRelationshipTypeToken,
			ID:      0,
			Before:  record.NewRelationshipTypeToken(0),
			After:   wantType,
			Created: true,
		},
	}

	diff := cmp.Diff(want, got, cmpopts.EquateEmpty())
	assert.Empty(t, diff, "commands should be ordered by kind and carry both images")

	assert.Empty(t, f.nodes.Updates(), "buffered sets never write")
	assert.Empty(t, f.relationshipTypeTokens.Updates(), "buffered sets never write")
	assert.Equal(t, int64(0), f.ids.Get(record.KindRelationshipTypeToken).HighID(), "ids are not touched")
}

func Test_Buffered_Commit_Skips_Sink_When_No_Changes(t *testing.T) {
	t.Parallel()

	called := false

	set := recordaccess.NewBuffered(newFixture(t).stores(), recordaccess.CommandSinkFunc(func([]recordaccess.Command) error {
		called = true

		return nil
	}))

	require.NoError(t, set.Commit())
	assert.False(t, called)
}

func Test_Buffered_Commit_Wraps_Error_When_Sink_Fails(t *testing.T) {
	t.Parallel()

	set := recordaccess.NewBuffered(newFixture(t).stores(), recordaccess.CommandSinkFunc(func([]recordaccess.Command) error {
		return errDiskFull
	}))

	set.NodeRecords().Create(1)

	err := set.Commit()
	require.ErrorIs(t, err, errDiskFull)
	require.ErrorIs(t, set.Commit(), recordaccess.ErrCommitted)
}

func Test_NewBuffered_Panics_When_Sink_Nil(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { recordaccess.NewBuffered(newFixture(t).stores(), nil) })
}

func Test_Buffered_Commit_Skips_Sink_When_Changed_Record_Exceeds_Layout(t *testing.T) {
	t.Parallel()

	called := false

	set := recordaccess.NewBuffered(newFixture(t).stores(), recordaccess.CommandSinkFunc(func([]recordaccess.Command) error {
		called = true

		return nil
	}))

	set.NodeRecords().Create(0)
	set.LabelTokenRecords().Create(1).ForChanging().Name = strings.Repeat("x", record.MaxTokenNameBytes+1)

	require.ErrorIs(t, set.Commit(), record.ErrInvalid)
	assert.False(t, called, "invalid records should not reach the sink")
}
