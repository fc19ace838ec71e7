package idgen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/graphrec/pkg/fs"
	"github.com/calvinalkan/graphrec/pkg/idgen"
	"github.com/calvinalkan/graphrec/pkg/record"
)

func Test_Factory_Visits_Generators_In_Kind_Order(t *testing.T) {
	t.Parallel()

	f := idgen.NewFactory(10)

	var got []record.Kind

	f.Visit(func(r idgen.Reconciler) { got = append(got, r.Kind()) })

	assert.Equal(t, record.Kinds(), got)
	assert.Same(t, f.Get(record.KindLabelToken), f.Get(record.KindLabelToken))
}

func Test_Factory_Restores_Watermarks_When_Reopened(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	f, err := idgen.OpenFactory(fs.NewReal(), dir, 64)
	require.NoError(t, err)

	f.Get(record.KindNode).MarkUsed(5)
	f.Get(record.KindRelationship).MarkUsed(12)
	f.Visit(func(r idgen.Reconciler) { r.MarkHighestWrittenAtHighID() })
	f.Get(record.KindRelationship).MarkUsed(20)

	require.NoError(t, f.Checkpoint())

	data, err := os.ReadFile(filepath.Join(dir, "node"+idgen.FileSuffix))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"node","high_id":6,"highest_written":5}`, string(data))

	reopened, err := idgen.OpenFactory(fs.NewReal(), dir, 64)
	require.NoError(t, err)

	if diff := cmp.Diff(f.States(), reopened.States()); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}

	rel := reopened.Get(record.KindRelationship)
	assert.Equal(t, int64(21), rel.HighID())
	assert.Equal(t, int64(12), rel.HighestWritten())
}

func Test_Factory_Checkpoint_Keeps_Previous_Watermark_When_Write_Fails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	faulty := fs.NewFaulty(fs.NewReal(), fs.FaultyConfig{
		PathSuffix:          "node" + idgen.FileSuffix,
		FailWrites:          true,
		WritesBeforeFailure: 1,
	})

	f, err := idgen.OpenFactory(faulty, dir, 64)
	require.NoError(t, err)

	f.Get(record.KindNode).MarkUsed(2)
	require.NoError(t, f.Checkpoint())

	f.Get(record.KindNode).MarkUsed(9)
	f.Get(record.KindRelationship).MarkUsed(4)

	err = f.Checkpoint()
	require.Error(t, err)
	assert.True(t, fs.IsInjected(err))
	assert.Contains(t, err.Error(), "node watermark")

	reopened, err := idgen.OpenFactory(fs.NewReal(), dir, 64)
	require.NoError(t, err)
	assert.Equal(t, int64(3), reopened.Get(record.KindNode).HighID(), "failed write should keep the old file")
	assert.Equal(t, int64(5), reopened.Get(record.KindRelationship).HighID(), "other kinds are still written")
}

func Test_Factory_Checkpoint_Writes_Nothing_When_In_Memory(t *testing.T) {
	t.Parallel()

	f := idgen.NewFactory(8)
	f.Get(record.KindNode).MarkUsed(1)

	require.NoError(t, f.Checkpoint())
}

func Test_OpenFactory_Starts_Empty_When_No_Watermarks(t *testing.T) {
	t.Parallel()

	f, err := idgen.OpenFactory(fs.NewReal(), t.TempDir(), 8)
	require.NoError(t, err)

	for _, s := range f.States() {
		assert.Equal(t, int64(0), s.HighID, s.Kind)
		assert.Equal(t, record.NoID, s.HighestWritten, s.Kind)
	}
}

func Test_OpenFactory_Returns_ErrCorrupt_When_Watermark_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{high_id: 3"},
		{name: "wrong kind", content: `{"kind":"label_token","high_id":1,"highest_written":0}`},
		{name: "high id above capacity", content: `{"kind":"node","high_id":9,"highest_written":0}`},
		{name: "negative high id", content: `{"kind":"node","high_id":-1,"highest_written":-1}`},
		{name: "highest written at high id", content: `{"kind":"node","high_id":3,"highest_written":3}`},
		{name: "highest written below none", content: `{"kind":"node","high_id":3,"highest_written":-2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "node"+idgen.FileSuffix)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := idgen.OpenFactory(fs.NewReal(), dir, 8)
			require.ErrorIs(t, err, idgen.ErrCorrupt)
			assert.Contains(t, err.Error(), path)
		})
	}
}
