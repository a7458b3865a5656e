package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/verte-zerg/suuji/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "suuji.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

func TestAddAndListValues(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	added, err := st.AddValues(ctx, "konbini", []int{380, 120, 980, 120})
	if err != nil {
		t.Fatalf("AddValues failed: %v", err)
	}
	if added != 3 {
		t.Fatalf("expected 3 new values, got %d", added)
	}
	added, err = st.AddValues(ctx, "konbini", []int{120, 150})
	if err != nil {
		t.Fatalf("AddValues failed: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 new value, got %d", added)
	}

	values, err := st.ListValues(ctx, "konbini")
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if want := []int{120, 150, 380, 980}; !reflect.DeepEqual(values, want) {
		t.Fatalf("values = %v; want %v", values, want)
	}
}

func TestRemoveValues(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.RemoveValues(ctx, "missing", []int{1}); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
	if _, err := st.AddValues(ctx, "menu", []int{500, 800}); err != nil {
		t.Fatalf("AddValues failed: %v", err)
	}
	removed, err := st.RemoveValues(ctx, "menu", []int{800, 900})
	if err != nil {
		t.Fatalf("RemoveValues failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	pool, err := st.LoadPool(ctx, " menu ")
	if err != nil {
		t.Fatalf("LoadPool failed: %v", err)
	}
	if pool.Name != "menu" || !reflect.DeepEqual(pool.Values, []int{500}) {
		t.Fatalf("unexpected pool %+v", pool)
	}
}

func TestListAndDeletePools(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.EnsurePool(ctx, "empty"); err != nil {
		t.Fatalf("EnsurePool failed: %v", err)
	}
	if _, err := st.AddValues(ctx, "default", []int{100, 200}); err != nil {
		t.Fatalf("AddValues failed: %v", err)
	}

	pools, err := st.ListPools(ctx)
	if err != nil {
		t.Fatalf("ListPools failed: %v", err)
	}
	want := []model.PoolSummary{{Name: "default", Count: 2}, {Name: "empty", Count: 0}}
	if !reflect.DeepEqual(pools, want) {
		t.Fatalf("pools = %+v; want %+v", pools, want)
	}

	if err := st.DeletePool(ctx, "default"); err != nil {
		t.Fatalf("DeletePool failed: %v", err)
	}
	if _, err := st.ListValues(ctx, "default"); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound after delete, got %v", err)
	}
	if err := st.DeletePool(ctx, "default"); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound on second delete, got %v", err)
	}
}

func TestSeedDefault(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	seeded, err := st.SeedDefault(ctx, "default", []int{10, 20})
	if err != nil {
		t.Fatalf("SeedDefault failed: %v", err)
	}
	if !seeded {
		t.Fatalf("expected first seed to write")
	}
	seeded, err = st.SeedDefault(ctx, "default", []int{30})
	if err != nil {
		t.Fatalf("SeedDefault failed: %v", err)
	}
	if seeded {
		t.Fatalf("expected existing pool to be left alone")
	}
	values, err := st.ListValues(ctx, "default")
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if !reflect.DeepEqual(values, []int{10, 20}) {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestBlankName(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.AddValues(context.Background(), "  ", []int{1}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestReopenKeepsPools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suuji.db")
	ctx := context.Background()

	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := st.AddValues(ctx, "default", []int{1980}); err != nil {
		t.Fatalf("AddValues failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer st.Close()
	values, err := st.ListValues(ctx, "default")
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if !reflect.DeepEqual(values, []int{1980}) {
		t.Fatalf("unexpected values %v", values)
	}
}
