// Package inventory runs the product workflows on behalf of a signed-in session.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/repository/recordstore"
	"github.com/mamadbah2/inventory/internal/service/export"
	"github.com/mamadbah2/inventory/internal/service/metrics"
	"github.com/mamadbah2/inventory/internal/service/session"
	"github.com/mamadbah2/inventory/pkg/rabbitmq"
)

// MaxAuditLimit caps, and is the default for, audit log page sizes.
const MaxAuditLimit = 100

// Service coordinates the record store, validation, metrics and exports.
type Service struct {
	stores    recordstore.Provider
	events    rabbitmq.Publisher
	validator *Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new service instance. A nil publisher disables events.
func NewService(stores recordstore.Provider, events rabbitmq.Publisher, logger *zap.Logger) *Service {
	svc := &Service{
		stores:    stores,
		events:    events,
		validator: NewValidator(),
		logger:    logger,
		now:       time.Now,
	}
	if svc.events == nil {
		svc.events = rabbitmq.NopPublisher{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// List returns the products matching query, newest first.
func (s *Service) List(ctx context.Context, sess *session.Session, query string) ([]models.Product, error) {
	products, err := s.products(ctx, sess)
	if err != nil {
		return nil, err
	}
	return metrics.Filter(products, query), nil
}

// Metrics recomputes the metrics snapshot from the current product set.
func (s *Service) Metrics(ctx context.Context, sess *session.Session) (metrics.Snapshot, error) {
	products, err := s.products(ctx, sess)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	return metrics.Compute(products), nil
}

// Add validates the input and creates a product.
func (s *Service) Add(ctx context.Context, sess *session.Session, in models.ProductInput) (*models.Product, error) {
	if err := requireCapability(sess, func(c models.Capabilities) bool { return c.CanModify }, "modify products"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	product, err := s.stores.ForToken(sess.AccessToken).Insert(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}

	s.logger.Info("product added", zap.String("product_id", product.ID), zap.String("user_id", sess.User.ID))
	s.publish(ctx, models.ProductCreated, product.ID, product, sess)
	return product, nil
}

// Update validates the input and replaces every editable field of the product.
func (s *Service) Update(ctx context.Context, sess *session.Session, id string, in models.ProductInput) (*models.Product, error) {
	if err := requireCapability(sess, func(c models.Capabilities) bool { return c.CanModify }, "modify products"); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, models.NewValidationError("id", "is required")
	}
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	product, err := s.stores.ForToken(sess.AccessToken).Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}

	s.logger.Info("product updated", zap.String("product_id", id), zap.String("user_id", sess.User.ID))
	s.publish(ctx, models.ProductUpdated, id, product, sess)
	return product, nil
}

// Delete removes the product with the given id.
func (s *Service) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := requireCapability(sess, func(c models.Capabilities) bool { return c.CanModify }, "modify products"); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return models.NewValidationError("id", "is required")
	}

	product, err := s.stores.ForToken(sess.AccessToken).Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id), zap.String("user_id", sess.User.ID))
	s.publish(ctx, models.ProductDeleted, id, product, sess)
	return nil
}

// Export renders the requested report. An empty selection is an EmptyExportError.
func (s *Service) Export(ctx context.Context, sess *session.Session, reportType export.ReportType, format export.Format, locale i18n.Locale) (*export.File, error) {
	if err := requireCapability(sess, func(c models.Capabilities) bool { return c.CanExport }, "export reports"); err != nil {
		return nil, err
	}

	products, err := s.products(ctx, sess)
	if err != nil {
		return nil, err
	}

	selected := export.Select(products, reportType)
	if len(selected) == 0 {
		return nil, &models.EmptyExportError{ReportType: string(reportType)}
	}

	file, err := export.Render(selected, reportType, format, locale, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("report exported",
		zap.String("file", file.Name),
		zap.Int("rows", len(selected)),
		zap.String("user_id", sess.User.ID),
	)
	return file, nil
}

// AuditLog returns the newest audit entries. Non-positive or oversized limits
// fall back to MaxAuditLimit.
func (s *Service) AuditLog(ctx context.Context, sess *session.Session, limit int) ([]models.AuditEntry, error) {
	if err := requireCapability(sess, func(c models.Capabilities) bool { return c.CanViewAudit }, "view the audit log"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}

	entries, err := s.stores.ForToken(sess.AccessToken).ListAudit(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return entries, nil
}

func (s *Service) products(ctx context.Context, sess *session.Session) ([]models.Product, error) {
	if sess == nil {
		return nil, models.ErrUnauthenticated
	}
	products, err := s.stores.ForToken(sess.AccessToken).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Service) publish(ctx context.Context, eventType models.ProductEventType, productID string, product *models.Product, sess *session.Session) {
	event := models.ProductEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		ActorID:    sess.User.ID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishProductEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", string(eventType)),
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
}

func requireCapability(sess *session.Session, allowed func(models.Capabilities) bool, action string) error {
	if sess == nil {
		return models.ErrUnauthenticated
	}
	if !allowed(sess.Capabilities) {
		return fmt.Errorf("%w: role %s cannot %s", models.ErrForbidden, sess.Role, action)
	}
	return nil
}

// IsClientError reports whether err is caused by the caller's input or rights
// rather than by a failing collaborator.
func IsClientError(err error) bool {
	var verr *models.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, models.ErrDuplicate) ||
		errors.Is(err, models.ErrForbidden) ||
		errors.Is(err, models.ErrUnauthenticated) ||
		errors.Is(err, models.ErrEmptyExport) ||
		errors.Is(err, models.ErrNotFound)
}
