package daily

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/ycdle/internal/apperr"
	"github.com/robalobadob/ycdle/internal/catalog"
	"github.com/robalobadob/ycdle/internal/db"
)

func TestSelectIndex_KnownVectors(t *testing.T) {
	// First 8 hex chars of SHA-256("<seed>:<day>"), reduced mod n.
	cases := []struct {
		seed string
		day  int64
		n    int
		want int
	}{
		{"x", 100, 7, 3}, // 4318979f
		{"x", 100, 12, 11},
		{"local_dev_seed", 20000, 7, 5}, // df109062
		{"local_dev_seed", 20000, 12, 10},
		{"secret", -3, 7, 2}, // c06c2f0f
		{"s", 0, 12, 0},      // 21d07250
	}
	for _, c := range cases {
		got, err := SelectIndex(c.seed, c.day, c.n)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "SelectIndex(%q, %d, %d)", c.seed, c.day, c.n)
	}
}

func TestSelectIndex_StableAndInRange(t *testing.T) {
	for n := 1; n <= 50; n++ {
		for day := int64(19000); day < 19030; day++ {
			seed := fmt.Sprintf("seed-%d", n)
			a, err := SelectIndex(seed, day, n)
			require.NoError(t, err)
			b, _ := SelectIndex(seed, day, n)
			assert.Equal(t, a, b)
			assert.GreaterOrEqual(t, a, 0)
			assert.Less(t, a, n)
		}
	}
}

func TestSelectIndex_EmptyPool(t *testing.T) {
	_, err := SelectIndex("x", 1, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNoCandidates)
}

func TestDayNumber_UTCCalendarDay(t *testing.T) {
	assert.Equal(t, int64(0), DayNumber(time.Date(1970, 1, 1, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, int64(20394), DayNumber(time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(20394), DayNumber(time.Date(2025, 11, 2, 23, 59, 59, 999, time.UTC)))

	// 2025-11-02 20:00 in New York is already 2025-11-03 in UTC.
	ny := time.FixedZone("EST", -5*3600)
	assert.Equal(t, int64(20395), DayNumber(time.Date(2025, 11, 2, 20, 0, 0, 0, ny)))

	assert.Equal(t, int64(-1), DayNumber(time.Date(1969, 12, 31, 12, 0, 0, 0, time.UTC)))
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2025, 11, 2, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), NextMidnight(now))
	assert.Equal(t, "2025-11-02", DateKey(DayStart(20394)))
}

func TestParseDateKey(t *testing.T) {
	got, err := ParseDateKey("2025-11-02")
	require.NoError(t, err)
	assert.Equal(t, int64(20394), DayNumber(got))

	for _, bad := range []string{"", "2025-1-02", "2025/11/02", "2025-11-02T00:00", "2025-13-40", " 2025-11-02"} {
		_, err := ParseDateKey(bad)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput), bad)
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "ae4aafb3", Fingerprint("secret"))
	assert.NotEqual(t, Fingerprint("a"), Fingerprint("b"))
}

func testPool(t *testing.T, n int) *catalog.Catalog {
	t.Helper()
	es := make([]catalog.Entity, n)
	for i := range es {
		es[i] = catalog.Entity{ID: fmt.Sprint(100 + i), Slug: fmt.Sprintf("co-%d", i)}
	}
	c, err := catalog.New("v1", es)
	require.NoError(t, err)
	return c
}

func fixedNow(t time.Time) Option { return WithNow(func() time.Time { return t }) }

func TestSelector_Today(t *testing.T) {
	pool := testPool(t, 7)
	now := time.Date(1970, 4, 11, 9, 0, 0, 0, time.UTC) // day 100
	s := NewSelector("x", func() *catalog.Catalog { return pool }, fixedNow(now))

	sel, err := s.Today()
	require.NoError(t, err)
	assert.Equal(t, int64(100), sel.Day)
	assert.Equal(t, 3, sel.Index)
	assert.Equal(t, "103", sel.TargetID)
	assert.Equal(t, 7, sel.PoolSize)
	assert.Equal(t, "1970-04-11", sel.DateKey)
	assert.Equal(t, "v1", sel.Version)
	assert.Equal(t, 0, sel.Offset)
}

func TestSelector_OffsetAppliedBeforeHashing(t *testing.T) {
	pool := testPool(t, 12)
	now := time.Date(1970, 4, 10, 9, 0, 0, 0, time.UTC) // day 99
	s := NewSelector("x", func() *catalog.Catalog { return pool }, fixedNow(now))

	sel, err := s.Select(1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), sel.Day)
	assert.Equal(t, 11, sel.Index)
	assert.Equal(t, 1, sel.Offset)
	assert.Equal(t, "1970-04-11", sel.DateKey)

	today, err := s.Today()
	require.NoError(t, err)
	assert.Equal(t, 0, today.Offset, "cached entry does not leak another caller's offset")
}

func TestSelector_Errors(t *testing.T) {
	pool := testPool(t, 3)

	_, err := NewSelector("", func() *catalog.Catalog { return pool }).Today()
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))

	empty, err := catalog.New("v1", nil)
	require.NoError(t, err)
	_, err = NewSelector("x", func() *catalog.Catalog { return empty }).Today()
	assert.ErrorIs(t, err, apperr.ErrNoCandidates)
}

func TestSelector_NewVersionRecomputes(t *testing.T) {
	var cur atomic.Pointer[catalog.Catalog]
	cur.Store(testPool(t, 7))
	now := time.Date(1970, 4, 11, 9, 0, 0, 0, time.UTC)
	s := NewSelector("x", cur.Load, fixedNow(now))

	first, err := s.Today()
	require.NoError(t, err)

	es := make([]catalog.Entity, 12)
	for i := range es {
		es[i] = catalog.Entity{ID: fmt.Sprint(500 + i), Slug: fmt.Sprintf("n-%d", i)}
	}
	next, err := catalog.New("v2", es)
	require.NoError(t, err)
	cur.Store(next)

	second, err := s.Today()
	require.NoError(t, err)
	assert.Equal(t, "103", first.TargetID)
	assert.Equal(t, "511", second.TargetID)
	assert.Equal(t, "v2", second.Version)
}

func TestSelector_ReloadWithSameVersionRecomputes(t *testing.T) {
	var cur atomic.Pointer[catalog.Catalog]
	cur.Store(testPool(t, 7))
	now := time.Date(1970, 4, 11, 9, 0, 0, 0, time.UTC)
	s := NewSelector("x", cur.Load, fixedNow(now))

	first, err := s.Today()
	require.NoError(t, err)
	require.Equal(t, "103", first.TargetID)

	es := make([]catalog.Entity, 7)
	for i := range es {
		es[i] = catalog.Entity{ID: fmt.Sprint(700 + i), Slug: fmt.Sprintf("r-%d", i)}
	}
	edited, err := catalog.New("v1", es)
	require.NoError(t, err)
	cur.Store(edited)

	second, err := s.Today()
	require.NoError(t, err)
	assert.Equal(t, "703", second.TargetID, "target comes from the reloaded pool")
	_, ok := edited.ByID(second.TargetID)
	assert.True(t, ok)
}

func TestSelector_ConcurrentCallersAgree(t *testing.T) {
	pool := testPool(t, 9)
	s := NewSelector("concurrent", func() *catalog.Catalog { return pool })

	want, err := s.Today()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Today()
			assert.NoError(t, err)
			assert.Equal(t, want.TargetID, got.TargetID)
		}()
	}
	wg.Wait()
}

func openStore(t *testing.T) *Store {
	t.Helper()
	sqlDB, err := db.OpenMigrated(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewStore(sqlDB)
}

func TestStore_IncrementAndCount(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	got, err := st.Count(ctx, "2025-11-02")
	require.NoError(t, err)
	assert.Equal(t, Tally{DateKey: "2025-11-02", Solves: 0}, got)

	for i := int64(1); i <= 3; i++ {
		got, err = st.Increment(ctx, "2025-11-02")
		require.NoError(t, err)
		assert.Equal(t, i, got.Solves)
	}

	other, err := st.Increment(ctx, "2025-11-03")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.Solves)

	got, err = st.Count(ctx, "2025-11-02")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Solves)
}

func TestStore_ConcurrentIncrements(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	const callers = 20
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Increment(ctx, "2025-11-02")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := st.Count(ctx, "2025-11-02")
	require.NoError(t, err)
	assert.Equal(t, int64(callers), got.Solves)
}

func TestStore_RejectsMalformedKey(t *testing.T) {
	st := openStore(t)
	_, err := st.Increment(context.Background(), "11/02/2025")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	_, err = st.Count(context.Background(), "yesterday")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}
