package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/service/export"
	"github.com/mamadbah2/inventory/internal/service/metrics"
	"github.com/mamadbah2/inventory/internal/service/session"
)

const sessionKey = "inventory.session"

// SessionService is the part of the session manager the HTTP layer needs.
type SessionService interface {
	SignIn(ctx context.Context, email, password string) (*session.Session, error)
	Resolve(ctx context.Context, accessToken string) (*session.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// InventoryService describes the product workflows exposed over HTTP.
type InventoryService interface {
	List(ctx context.Context, sess *session.Session, query string) ([]models.Product, error)
	Metrics(ctx context.Context, sess *session.Session) (metrics.Snapshot, error)
	Add(ctx context.Context, sess *session.Session, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, sess *session.Session, id string, in models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, sess *session.Session, id string) error
	Export(ctx context.Context, sess *session.Session, reportType export.ReportType, format export.Format, locale i18n.Locale) (*export.File, error)
	AuditLog(ctx context.Context, sess *session.Session, limit int) ([]models.AuditEntry, error)
}

// Handler adapts the session and inventory services to Gin.
type Handler struct {
	sessions      SessionService
	inventory     InventoryService
	defaultLocale i18n.Locale
	logger        *zap.Logger
}

// NewHandler constructs the HTTP handler adapter.
func NewHandler(sessions SessionService, inventory InventoryService, defaultLocale i18n.Locale, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions:      sessions,
		inventory:     inventory,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// RequireSession resolves the bearer token into a session or aborts with 401.
func (h *Handler) RequireSession(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		h.fail(c, models.ErrUnauthenticated)
		return
	}

	sess, err := h.sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Set(sessionKey, sess)
	c.Next()
}

func currentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// locale picks ?lang first, then Accept-Language, then the configured default.
func (h *Handler) locale(c *gin.Context) i18n.Locale {
	if lang := c.Query("lang"); lang != "" {
		return i18n.Parse(lang)
	}
	if accept := c.GetHeader("Accept-Language"); accept != "" {
		return i18n.Match(accept)
	}
	return h.defaultLocale
}

func statusFor(err error) int {
	var (
		verr     *models.ValidationError
		storeErr *models.StoreError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmptyExport):
		return http.StatusUnprocessableEntity
	case errors.As(err, &storeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		resp.Error = http.StatusText(status)
	case status == http.StatusUnauthorized:
		resp.Error = "authentication required"
	default:
		h.logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, resp)
}
