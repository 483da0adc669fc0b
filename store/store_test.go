package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sq, err := Open("sqlite", filepath.Join(dir, "sqlite", "ledger.db"))
	require.NoError(t, err)
	lv, err := Open("leveldb", filepath.Join(dir, "leveldb"))
	require.NoError(t, err)
	mem, err := Open("memory", "")
	require.NoError(t, err)

	stores := map[string]Store{"sqlite": sq, "leveldb": lv, "memory": mem}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestPrograms(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			p := intcode.MustParse("104,1125899906842624,99")

			hash, err := s.PutProgram("big", p)
			require.NoError(t, err)
			assert.Equal(t, p.Hash(), hash)

			again, err := s.PutProgram("renamed", p.Clone())
			require.NoError(t, err)
			assert.Equal(t, hash, again)

			rec, err := s.GetProgram(hash)
			require.NoError(t, err)
			assert.Equal(t, "big", rec.Name, "first name wins")
			assert.Equal(t, p.String(), rec.Program.String())
			assert.WithinDuration(t, time.Now(), rec.CreatedAt, time.Minute)

			_, err = s.GetProgram("deadbeef")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRuns(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := intcode.MustParse("3,0,4,0,99").Hash()
			b := intcode.MustParse("99").Hash()

			first := &Run{Program: a, Kind: KindRun, Inputs: []string{"7"}, Output: []string{"7"}, State: "halted"}
			require.NoError(t, s.RecordRun(first))
			assert.NotEmpty(t, first.ID)
			assert.False(t, first.CreatedAt.IsZero())

			second := &Run{Program: a, Kind: KindAmplify, Phases: []int64{9, 8, 7, 6, 5}, Signal: "139629729"}
			require.NoError(t, s.RecordRun(second))
			other := &Run{Program: b, Kind: KindRun, Error: "intcode: unknown opcode at ip=0"}
			require.NoError(t, s.RecordRun(other))

			got, err := s.GetRun(second.ID)
			require.NoError(t, err)
			assert.Equal(t, second.Phases, got.Phases)
			assert.Equal(t, "139629729", got.Signal)
			assert.Equal(t, KindAmplify, got.Kind)
			assert.True(t, second.CreatedAt.Equal(got.CreatedAt))

			runs, err := s.Runs(a)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, first.ID, runs[0].ID, "oldest first")
			assert.Equal(t, second.ID, runs[1].ID)
			assert.Equal(t, []string{"7"}, runs[0].Output)

			runs, err = s.Runs(b)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, other.Error, runs[0].Error)

			runs, err = s.Runs("unknown")
			require.NoError(t, err)
			assert.Empty(t, runs)

			_, err = s.GetRun("00000000-0000-0000-0000-000000000000")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRecordRunNeedsProgram(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.RecordRun(&Run{Kind: KindRun}))
		})
	}
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"sqlite", "leveldb"} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(dir, backend)
			s, err := Open(backend, path)
			require.NoError(t, err)
			hash, err := s.PutProgram("persisted", intcode.MustParse("1,0,0,0,99"))
			require.NoError(t, err)
			require.NoError(t, s.RecordRun(&Run{Program: hash, Kind: KindRun}))
			require.NoError(t, s.Close())

			s, err = Open(backend, path)
			require.NoError(t, err)
			defer s.Close()

			rec, err := s.GetProgram(hash)
			require.NoError(t, err)
			assert.Equal(t, "persisted", rec.Name)
			runs, err := s.Runs(hash)
			require.NoError(t, err)
			assert.Len(t, runs, 1)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("postgres", "")
	assert.Error(t, err)
}
