package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/existflow/deadlines/internal/clock"
	"github.com/existflow/deadlines/internal/countdown"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

func newStoreForTests(t *testing.T, opts ...Option) (*Store, *storage.Memory, *clock.Manual) {
	t.Helper()
	kv := storage.NewMemory()
	clk := clock.NewManual(start)
	s := New(kv, append([]Option{WithClock(clk)}, opts...)...)
	return s, kv, clk
}

func stored(t *testing.T, kv storage.KV) []model.Deadline {
	t.Helper()
	data, err := kv.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	items, err := model.DecodeCollection(data)
	require.NoError(t, err)
	return items
}

func TestLoad_SeedsAndPersistsWhenAbsent(t *testing.T) {
	s, kv, _ := newStoreForTests(t)

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, []string{"Maria", "Carlos", "Ana", "Pedro"}, names(items))
	assert.Equal(t, 1, kv.Writes())
	assert.Equal(t, names(items), names(stored(t, kv)))
}

func TestExampleSeed_CoversEveryTier(t *testing.T) {
	states := countdown.DeriveAll(ExampleSeed(start), start)
	counts := countdown.CountByTier(states)
	assert.Equal(t, 1, counts[countdown.Safe])
	assert.Equal(t, 1, counts[countdown.Warning])
	assert.Equal(t, 2, counts[countdown.Critical])
	assert.True(t, states[3].TimeLeft.Overdue)

	fresh := countdown.Derive(ExampleSeed(start)[0], start.Add(-4*day))
	assert.Equal(t, countdown.Safe, fresh.Tier)
}

func TestLoad_CorruptFallsBackToSeed(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	require.NoError(t, kv.Set(context.Background(), DefaultKey, []byte(`{"broken":`)))

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Len(t, stored(t, kv), 4)
}

func TestLoad_ExistingOrderPreserved(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	saved := []model.Deadline{
		{ID: "b", Name: "Second", Task: "t", CreatedAt: start, DueDate: start.Add(time.Hour)},
		{ID: "a", Name: "First", Task: "t", CreatedAt: start, DueDate: start.Add(time.Hour)},
	}
	data, err := model.EncodeCollection(saved)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), DefaultKey, data))

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(items))
	assert.Equal(t, 1, kv.Writes(), "loading existing data writes nothing")
}

type failingKV struct{ storage.KV }

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestLoad_BackendErrorIsReturned(t *testing.T) {
	s := New(failingKV{storage.NewMemory()})
	_, err := s.Load(context.Background())
	assert.Error(t, err)
	assert.False(t, s.Loaded())
}

func TestMutationsBeforeLoad(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "Ana", "Call", start.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, _, err = s.Update(ctx, "1", Patch{})
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.Remove(ctx, "1")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestAdd(t *testing.T) {
	s, kv, _ := newStoreForTests(t, NoSeed())
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, kv.Writes(), "empty seed is not persisted")

	d, err := s.Add(ctx, "  Ana ", " Call the supplier ", start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "1770454800000", d.ID)
	assert.Equal(t, "Ana", d.Name)
	assert.Equal(t, "Call the supplier", d.Task)
	assert.Equal(t, start, d.CreatedAt)

	assert.Equal(t, 1, kv.Writes())
	assert.Equal(t, []model.Deadline{d}, stored(t, kv))
}

func TestAdd_SameMillisecondGetsUniqueID(t *testing.T) {
	s, _, _ := newStoreForTests(t, NoSeed())
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	a, err := s.Add(ctx, "A", "t", start.Add(time.Hour))
	require.NoError(t, err)
	b, err := s.Add(ctx, "B", "t", start.Add(time.Hour))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, strings.HasPrefix(b.ID, a.ID+"-"))
}

func TestAdd_Invalid(t *testing.T) {
	s, kv, _ := newStoreForTests(t, NoSeed())
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	_, err = s.Add(ctx, "", "task", start.Add(time.Hour))
	assert.ErrorIs(t, err, model.ErrInvalidDeadline)
	_, err = s.Add(ctx, "Ana", "   ", start.Add(time.Hour))
	assert.ErrorIs(t, err, model.ErrInvalidDeadline)
	_, err = s.Add(ctx, "Ana", "task", time.Time{})
	assert.ErrorIs(t, err, model.ErrInvalidDeadline)

	assert.Empty(t, s.List())
	assert.Equal(t, 0, kv.Writes())
}

func TestAddThenUpdateDueDate_PreservesIdentity(t *testing.T) {
	s, kv, clk := newStoreForTests(t, NoSeed())
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	d, err := s.Add(ctx, "Maria", "Report", start.Add(48*time.Hour))
	require.NoError(t, err)

	clk.Advance(3 * time.Hour)
	newDue := start.Add(72 * time.Hour)
	updated, found, err := s.Update(ctx, d.ID, Patch{DueDate: &newDue})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, d.ID, updated.ID)
	assert.Equal(t, d.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Maria", updated.Name)
	assert.Equal(t, newDue, updated.DueDate)
	assert.Equal(t, 2, kv.Writes())

	got, ok := s.Get(d.ID)
	require.True(t, ok)
	assert.Equal(t, updated, got)
}

func TestUpdate_AllFieldsInPlace(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	name, task := "Carla", "Review the release notes"
	due := start.Add(10 * time.Hour)
	_, found, err := s.Update(ctx, "2", Patch{Name: &name, Task: &task, DueDate: &due})
	require.NoError(t, err)
	require.True(t, found)

	items := s.List()
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(items), "order is stable")
	assert.Equal(t, "Carla", items[1].Name)
	assert.Equal(t, start.Add(-2*day), items[1].CreatedAt)
}

func TestUpdate_UnknownIsNoop(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	name := "Ghost"
	_, found, err := s.Update(ctx, "missing", Patch{Name: &name})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, kv.Writes())
}

func TestUpdate_InvalidLeavesRecord(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	blank := " "
	_, found, err := s.Update(ctx, "1", Patch{Name: &blank})
	assert.True(t, found)
	assert.ErrorIs(t, err, model.ErrInvalidDeadline)

	got, _ := s.Get("1")
	assert.Equal(t, "Maria", got.Name)
	assert.Equal(t, 1, kv.Writes())
}

func TestRemove(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	removed, err := s.Remove(ctx, "2")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"1", "3", "4"}, ids(s.List()))
	assert.Equal(t, []string{"1", "3", "4"}, ids(stored(t, kv)))

	removed, err = s.Remove(ctx, "2")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, kv.Writes())
}

func TestRemoveAll_EmptyNotPersistedByDefault(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	for _, id := range []string{"1", "2", "3", "4"} {
		_, err := s.Remove(ctx, id)
		require.NoError(t, err)
	}
	assert.Empty(t, s.List())
	assert.Len(t, stored(t, kv), 1, "last non-empty state stays on disk")

	reloaded := New(kv, WithClock(clock.NewManual(start)))
	items, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(items))
}

func TestRemoveAll_PersistEmpty(t *testing.T) {
	s, kv, _ := newStoreForTests(t, WithPersistEmpty(true))
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	for _, id := range []string{"1", "2", "3", "4"} {
		_, err := s.Remove(ctx, id)
		require.NoError(t, err)
	}
	assert.Empty(t, stored(t, kv))

	reloaded := New(kv)
	items, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "an emptied collection stays empty")
}

func TestList_ReturnsCopy(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	items := s.List()
	items[0].Name = "mutated"
	got, _ := s.Get("1")
	assert.Equal(t, "Maria", got.Name)
}

func TestWithKey(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, WithKey("team"), NoSeed(), WithPersistEmpty(true))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	_, err = kv.Get(context.Background(), "team")
	assert.NoError(t, err)
	_, err = kv.Get(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func names(items []model.Deadline) []string {
	out := make([]string, len(items))
	for i, d := range items {
		out[i] = d.Name
	}
	return out
}

func ids(items []model.Deadline) []string {
	out := make([]string, len(items))
	for i, d := range items {
		out[i] = d.ID
	}
	return out
}
