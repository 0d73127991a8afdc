package recordstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

func input(name, category string, qty int, price string) models.ProductInput {
	return models.ProductInput{
		Name:              name,
		Category:          category,
		Quantity:          qty,
		Price:             decimal.RequireFromString(price),
		LowStockThreshold: models.DefaultLowStockThreshold,
	}
}

func fixedClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Minute)
		return current
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	store.now = fixedClock()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := store.Insert(ctx, input(name, "misc", 1, "1"))
		require.NoError(t, err)
	}

	products, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "third", products[0].Name)
	assert.Equal(t, "first", products[2].Name)
}

func TestMemoryStore_SameTimestampKeepsInsertOrder(t *testing.T) {
	store := NewMemoryStore()
	frozen := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return frozen }
	ctx := context.Background()

	_, err := store.Insert(ctx, input("a", "misc", 1, "1"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, input("b", "misc", 1, "1"))
	require.NoError(t, err)

	products, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", products[0].Name)
}

func TestMemoryStore_Duplicates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	desk, err := store.Insert(ctx, input("Desk", "Furniture", 1, "10"))
	require.NoError(t, err)

	_, err = store.Insert(ctx, input("Desk", "Furniture", 5, "12"))
	assert.True(t, errors.Is(err, models.ErrDuplicate))

	_, err = store.Insert(ctx, input("desk", "Furniture", 5, "12"))
	assert.NoError(t, err, "uniqueness is case-sensitive")

	_, err = store.Insert(ctx, input("Desk", "Office", 5, "12"))
	assert.NoError(t, err)

	_, err = store.Update(ctx, desk.ID, input("Desk", "Office", 1, "10"))
	assert.True(t, errors.Is(err, models.ErrDuplicate))

	_, err = store.Update(ctx, desk.ID, input("Desk", "Furniture", 3, "10"))
	assert.NoError(t, err, "a product does not collide with itself")
}

func TestMemoryStore_Constraints(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Insert(context.Background(), models.ProductInput{Quantity: -1, Price: decimal.Zero, LowStockThreshold: -2})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 5)
}

func TestMemoryStore_UpdateDeleteMissing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Update(ctx, "nope", input("x", "y", 1, "1"))
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = store.Delete(ctx, "nope")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestMemoryStore_AuditTrail(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p, err := store.Insert(ctx, input("Desk", "Furniture", 1, "10"))
	require.NoError(t, err)
	_, err = store.Update(ctx, p.ID, input("Desk", "Furniture", 4, "10"))
	require.NoError(t, err)
	_, err = store.Delete(ctx, p.ID)
	require.NoError(t, err)

	entries, err := store.ListAudit(ctx, 100)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, models.AuditDelete, entries[0].Action)
	assert.Equal(t, "Desk", entries[0].Summary())
	assert.Equal(t, models.AuditUpdate, entries[1].Action)
	assert.Equal(t, "quantity: 1 → 4", entries[1].Summary())
	assert.Equal(t, models.AuditCreate, entries[2].Action)
	assert.Equal(t, p.ID, entries[2].RecordID)

	limited, err := store.ListAudit(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryStore_Roles(t *testing.T) {
	store := NewMemoryStore()
	store.SetRole("u1", models.RoleViewer)

	role, err := store.RoleFor(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, role)

	role, err = store.RoleFor(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, role)

	assert.Same(t, store, store.ForToken("any").(*MemoryStore))
}

func TestMemoryStore_ConcurrentInserts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Insert(ctx, input("item", "c"+string(rune('a'+i)), i, "1"))
		}(i)
	}
	wg.Wait()

	products, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 20)
}
