package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/service/export"
	"github.com/mamadbah2/inventory/internal/service/metrics"
)

type quantityPoint struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
}

type valuePoint struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Value    string `json:"value"`
}

type statusPoint struct {
	Status models.StockStatus `json:"status"`
	Label  string             `json:"label"`
	Count  int                `json:"count"`
}

type chartsResponse struct {
	QuantityByCategory []quantityPoint `json:"quantityByCategory"`
	ValueByCategory    []valuePoint    `json:"valueByCategory"`
	StockStatus        []statusPoint   `json:"stockStatus"`
}

type metricsResponse struct {
	TotalProducts   int                  `json:"totalProducts"`
	TotalValue      string               `json:"totalValue"`
	StatusCounts    metrics.StatusCounts `json:"statusCounts"`
	LowStockItems   []models.Product     `json:"lowStockItems"`
	OutOfStockItems []models.Product     `json:"outOfStockItems"`
	Charts          chartsResponse       `json:"charts"`
}

func newMetricsResponse(snap metrics.Snapshot, labels i18n.Labels) metricsResponse {
	resp := metricsResponse{
		TotalProducts:   snap.TotalProducts,
		TotalValue:      metrics.Display(snap.TotalValue),
		StatusCounts:    snap.StatusCounts,
		LowStockItems:   snap.LowStockItems,
		OutOfStockItems: snap.OutOfStockItems,
		Charts: chartsResponse{
			QuantityByCategory: []quantityPoint{},
			ValueByCategory:    []valuePoint{},
			StockStatus:        []statusPoint{},
		},
	}

	for _, cq := range snap.TopCategoriesByQuantity() {
		resp.Charts.QuantityByCategory = append(resp.Charts.QuantityByCategory, quantityPoint{
			Category: cq.Category,
			Label:    metrics.ChartLabel(cq.Category),
			Quantity: cq.Quantity,
		})
	}
	for _, cv := range snap.TopCategoriesByValue() {
		resp.Charts.ValueByCategory = append(resp.Charts.ValueByCategory, valuePoint{
			Category: cv.Category,
			Label:    metrics.ChartLabel(cv.Category),
			Value:    metrics.Display(cv.Value),
		})
	}
	for _, b := range snap.StatusCounts.Buckets() {
		resp.Charts.StockStatus = append(resp.Charts.StockStatus, statusPoint{
			Status: b.Status,
			Label:  labels.StatusLabel(b.Status),
			Count:  b.Count,
		})
	}
	return resp
}

// Metrics returns the derived inventory metrics and chart series.
func (h *Handler) Metrics(c *gin.Context) {
	snap, err := h.inventory.Metrics(c.Request.Context(), currentSession(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newMetricsResponse(snap, i18n.For(h.locale(c))))
}

// Export streams a CSV or XLSX report as an attachment.
func (h *Handler) Export(c *gin.Context) {
	reportType, err := export.ParseReportType(c.Query("type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.fail(c, err)
		return
	}

	file, err := h.inventory.Export(c.Request.Context(), currentSession(c), reportType, format, h.locale(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

type auditEntryResponse struct {
	ID          string             `json:"id"`
	UserEmail   string             `json:"userEmail,omitempty"`
	Action      models.AuditAction `json:"action"`
	ActionLabel string             `json:"actionLabel"`
	RecordID    string             `json:"recordId,omitempty"`
	Summary     string             `json:"summary"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Audit lists the newest change-audit entries.
func (h *Handler) Audit(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, models.NewValidationError("limit", "must be an integer"))
			return
		}
		limit = n
	}

	entries, err := h.inventory.AuditLog(c.Request.Context(), currentSession(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	labels := i18n.For(h.locale(c))
	resp := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, auditEntryResponse{
			ID:          e.ID,
			UserEmail:   e.UserEmail,
			Action:      e.Action,
			ActionLabel: labels.AuditLabel(e.Action),
			RecordID:    e.RecordID,
			Summary:     e.Summary(),
			CreatedAt:   e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": resp})
}
