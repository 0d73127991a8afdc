package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
)

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken(""))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("name", "is required"), http.StatusBadRequest},
		{"unauthenticated", fmt.Errorf("sign in: %w", models.ErrUnauthenticated), http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("%w: role viewer cannot modify products", models.ErrForbidden), http.StatusForbidden},
		{"not found inside store error", &models.StoreError{Op: "update", Err: models.ErrNotFound}, http.StatusNotFound},
		{"duplicate", &models.DuplicateError{Name: "Laptop", Category: "Electronics"}, http.StatusConflict},
		{"empty export", &models.EmptyExportError{ReportType: "low-stock"}, http.StatusUnprocessableEntity},
		{"store", fmt.Errorf("list products: %w", &models.StoreError{Op: "list", Status: 503}), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, i18n.Russian, nil)

	pick := func(target, accept string) i18n.Locale {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		if accept != "" {
			c.Request.Header.Set("Accept-Language", accept)
		}
		return h.locale(c)
	}

	assert.Equal(t, i18n.Russian, pick("/metrics", ""))
	assert.Equal(t, i18n.English, pick("/metrics", "en-US,en;q=0.8"))
	assert.Equal(t, i18n.English, pick("/metrics?lang=en", "ru"))
	assert.Equal(t, i18n.Russian, pick("/metrics?lang=ru-RU", "en"))
}

func TestFail_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, i18n.English, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/products", nil)

	h.fail(c, &models.StoreError{Op: "list", Status: 500, Message: "relation does not exist"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Bad Gateway"}`, rec.Body.String())
}
