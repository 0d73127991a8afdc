// Package recordstore talks to the hosted product store and provides an
// in-memory stand-in with the same constraints.
package recordstore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

// Store exposes the record store operations used by the services. Every
// method runs under the identity the Store was obtained for.
type Store interface {
	List(ctx context.Context) ([]models.Product, error)
	Insert(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)
	RoleFor(ctx context.Context, userID string) (models.Role, error)
}

// Provider hands out a Store bound to a caller's access token.
type Provider interface {
	ForToken(accessToken string) Store
}

const (
	tableProducts  = "products"
	tableAudit     = "audit_log"
	tableUserRoles = "user_roles"
)

// productRow is the wire shape of a products row.
type productRow struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (r productRow) toModel() models.Product {
	return models.Product{
		ID:                r.ID,
		Name:              r.Name,
		Category:          r.Category,
		Quantity:          r.Quantity,
		Price:             r.Price,
		LowStockThreshold: r.LowStockThreshold,
		CreatedAt:         r.CreatedAt,
	}
}

// productWrite is the payload of insert and update requests.
type productWrite struct {
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

func newProductWrite(in models.ProductInput) productWrite {
	return productWrite{
		Name:              in.Name,
		Category:          in.Category,
		Quantity:          in.Quantity,
		Price:             in.Price,
		LowStockThreshold: in.LowStockThreshold,
	}
}

type auditRow struct {
	ID        string             `json:"id"`
	UserID    *string            `json:"user_id"`
	UserEmail *string            `json:"user_email"`
	Action    models.AuditAction `json:"action"`
	TableName string             `json:"table_name"`
	RecordID  *string            `json:"record_id"`
	OldData   map[string]any     `json:"old_data"`
	NewData   map[string]any     `json:"new_data"`
	CreatedAt time.Time          `json:"created_at"`
}

func (r auditRow) toModel() models.AuditEntry {
	return models.AuditEntry{
		ID:        r.ID,
		UserID:    deref(r.UserID),
		UserEmail: deref(r.UserEmail),
		Action:    r.Action,
		TableName: r.TableName,
		RecordID:  deref(r.RecordID),
		OldData:   r.OldData,
		NewData:   r.NewData,
		CreatedAt: r.CreatedAt,
	}
}

type roleRow struct {
	Role string `json:"role"`
}

// auditRecord is the snapshot of a product stored in audit entries.
func auditRecord(p models.Product) map[string]any {
	return map[string]any{
		"id":                  p.ID,
		"name":                p.Name,
		"category":            p.Category,
		"quantity":            p.Quantity,
		"price":               p.Price.String(),
		"low_stock_threshold": p.LowStockThreshold,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func notFound(op, id string) error {
	return &models.StoreError{Op: op, Message: fmt.Sprintf("no product with id %s", id), Err: models.ErrNotFound}
}
