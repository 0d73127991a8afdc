package recordstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

// MemoryStore keeps products, audit entries and roles in process memory and
// enforces the same constraints as the hosted store.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]memoryProduct
	audit    []models.AuditEntry
	roles    map[string]models.Role
	seq      int64
	now      func() time.Time
}

type memoryProduct struct {
	product models.Product
	seq     int64
}

var (
	_ Store    = (*MemoryStore)(nil)
	_ Provider = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]memoryProduct),
		roles:    make(map[string]models.Role),
		now:      time.Now,
	}
}

// ForToken returns the store itself; the memory store has no per-user view.
func (m *MemoryStore) ForToken(string) Store {
	return m
}

// SetRole assigns a role row to a user.
func (m *MemoryStore) SetRole(userID string, role models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
}

// List returns every product, newest first.
func (m *MemoryStore) List(context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]memoryProduct, 0, len(m.products))
	for _, row := range m.products {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].product.CreatedAt.Equal(rows[j].product.CreatedAt) {
			return rows[i].product.CreatedAt.After(rows[j].product.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.product)
	}
	return products, nil
}

// Insert creates a product with a fresh id and creation time.
func (m *MemoryStore) Insert(_ context.Context, in models.ProductInput) (*models.Product, error) {
	if err := checkConstraints(in); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.duplicateLocked("", in) {
		return nil, &models.DuplicateError{Name: in.Name, Category: in.Category}
	}

	m.seq++
	product := in.Apply(models.Product{
		ID:        uuid.NewString(),
		CreatedAt: m.now().UTC(),
	})
	m.products[product.ID] = memoryProduct{product: product, seq: m.seq}
	m.recordLocked(models.AuditCreate, product.ID, nil, auditRecord(product))

	return &product, nil
}

// Update replaces every editable field of an existing product.
func (m *MemoryStore) Update(_ context.Context, id string, in models.ProductInput) (*models.Product, error) {
	if err := checkConstraints(in); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.products[id]
	if !ok {
		return nil, notFound("update", id)
	}
	if m.duplicateLocked(id, in) {
		return nil, &models.DuplicateError{Name: in.Name, Category: in.Category}
	}

	before := row.product
	row.product = in.Apply(row.product)
	m.products[id] = row
	m.recordLocked(models.AuditUpdate, id, auditRecord(before), auditRecord(row.product))

	updated := row.product
	return &updated, nil
}

// Delete removes a product and returns its last state.
func (m *MemoryStore) Delete(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.products[id]
	if !ok {
		return nil, notFound("delete", id)
	}
	delete(m.products, id)
	m.recordLocked(models.AuditDelete, id, auditRecord(row.product), nil)

	deleted := row.product
	return &deleted, nil
}

// ListAudit returns at most limit entries, newest first.
func (m *MemoryStore) ListAudit(_ context.Context, limit int) ([]models.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]models.AuditEntry, 0, len(m.audit))
	for i := len(m.audit) - 1; i >= 0 && (limit <= 0 || len(entries) < limit); i-- {
		entries = append(entries, m.audit[i])
	}
	return entries, nil
}

// RoleFor returns the assigned role, or RoleNone when the user has no row.
func (m *MemoryStore) RoleFor(_ context.Context, userID string) (models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if role, ok := m.roles[userID]; ok {
		return role, nil
	}
	return models.RoleNone, nil
}

func (m *MemoryStore) duplicateLocked(exceptID string, in models.ProductInput) bool {
	for id, row := range m.products {
		if id == exceptID {
			continue
		}
		if row.product.Name == in.Name && row.product.Category == in.Category {
			return true
		}
	}
	return false
}

func (m *MemoryStore) recordLocked(action models.AuditAction, recordID string, before, after map[string]any) {
	m.audit = append(m.audit, models.AuditEntry{
		ID:        uuid.NewString(),
		Action:    action,
		TableName: tableProducts,
		RecordID:  recordID,
		OldData:   before,
		NewData:   after,
		CreatedAt: m.now().UTC(),
	})
}

// checkConstraints mirrors the hosted store's column checks.
func checkConstraints(in models.ProductInput) error {
	var fields []models.FieldError
	if in.Name == "" {
		fields = append(fields, models.FieldError{Field: "name", Message: "must not be empty"})
	}
	if in.Category == "" {
		fields = append(fields, models.FieldError{Field: "category", Message: "must not be empty"})
	}
	if in.Quantity < 0 {
		fields = append(fields, models.FieldError{Field: "quantity", Message: "must be zero or more"})
	}
	if !in.Price.IsPositive() {
		fields = append(fields, models.FieldError{Field: "price", Message: "must be greater than zero"})
	}
	if in.LowStockThreshold < 0 {
		fields = append(fields, models.FieldError{Field: "lowStockThreshold", Message: "must be zero or more"})
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}
