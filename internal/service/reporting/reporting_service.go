package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/repository/mongodb"
	"github.com/mamadbah2/inventory/internal/repository/recordstore"
	"github.com/mamadbah2/inventory/internal/repository/sheets"
	"github.com/mamadbah2/inventory/internal/service/metrics"
)

const (
	dateLayout   = "2006-01-02"
	restockRange = "Restock!A:F"
)

// AlertSender delivers a plain-text restock alert.
type AlertSender interface {
	SendAlert(ctx context.Context, text string) error
}

// Sinks are the optional destinations of a generated report. Nil sinks are skipped.
type Sinks struct {
	Reports mongodb.Repository
	Sheet   sheets.Repository
	Alerts  AlertSender
}

// Service builds the periodic inventory report and fans it out to the sinks.
type Service struct {
	store    recordstore.Store
	sinks    Sinks
	locale   i18n.Locale
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. store must be authorized
// to read every product, typically through the service key.
func NewService(store recordstore.Store, sinks Sinks, locale i18n.Locale, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		store:    store,
		sinks:    sinks,
		locale:   locale,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Run generates today's report and delivers it to every configured sink. A
// failing sink is logged and does not stop the others; only a failure to read
// the products is returned.
func (s *Service) Run(ctx context.Context) (*models.InventoryReport, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products for report: %w", err)
	}

	report := Generate(products, s.now().In(s.location))
	s.logger.Info("inventory report generated",
		zap.Int("products", report.TotalProducts),
		zap.Int("restock_items", len(report.RestockItems)),
		zap.String("total_value", report.TotalValue),
	)

	if s.sinks.Reports != nil {
		if err := s.sinks.Reports.SaveInventoryReport(ctx, report); err != nil {
			s.logger.Error("failed to save inventory report", zap.Error(err))
		}
	}

	labels := i18n.For(s.locale)
	if s.sinks.Sheet != nil && len(report.RestockItems) > 0 {
		if err := s.sinks.Sheet.AppendRows(ctx, restockRange, RestockRows(report, labels)); err != nil {
			s.logger.Error("failed to append restock rows", zap.Error(err))
		}
	}

	if s.sinks.Alerts != nil && len(report.RestockItems) > 0 {
		if err := s.sinks.Alerts.SendAlert(ctx, FormatAlert(report, labels)); err != nil {
			s.logger.Error("failed to send restock alert", zap.Error(err))
		}
	}

	return &report, nil
}

// Generate builds a report from the metrics snapshot of products. date carries
// the reporting time zone; the stored date is the start of that local day.
func Generate(products []models.Product, date time.Time) models.InventoryReport {
	snap := metrics.Compute(products)

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	report := models.InventoryReport{
		Date:           day,
		TotalProducts:  snap.TotalProducts,
		TotalValue:     metrics.Display(snap.TotalValue),
		InStock:        snap.StatusCounts.InStock,
		LowStock:       snap.StatusCounts.LowStock,
		OutOfStock:     snap.StatusCounts.OutOfStock,
		RestockItems:   make([]models.RestockItem, 0, len(snap.RestockItems())),
		CategoryValues: make([]models.CategoryAmount, 0, len(snap.CategoryValue)),
		CreatedAt:      date.UTC(),
	}

	for _, p := range snap.RestockItems() {
		report.RestockItems = append(report.RestockItems, models.RestockItem{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Quantity:  p.Quantity,
			Threshold: p.LowStockThreshold,
			Status:    metrics.Classify(p),
		})
	}
	for _, cv := range snap.CategoryValue {
		report.CategoryValues = append(report.CategoryValues, models.CategoryAmount{
			Category: cv.Category,
			Amount:   metrics.Display(cv.Value),
		})
	}

	return report
}

// RestockRows lays the restock items out as sheet rows: date, name, category,
// quantity, threshold, status label.
func RestockRows(report models.InventoryReport, labels i18n.Labels) [][]interface{} {
	date := report.Date.Format(dateLayout)
	rows := make([][]interface{}, 0, len(report.RestockItems))
	for _, item := range report.RestockItems {
		rows = append(rows, []interface{}{
			date,
			item.Name,
			item.Category,
			item.Quantity,
			item.Threshold,
			labels.StatusLabel(item.Status),
		})
	}
	return rows
}

// FormatAlert renders the localized restock alert text.
func FormatAlert(report models.InventoryReport, labels i18n.Labels) string {
	var b strings.Builder
	date := report.Date.Format(dateLayout)

	if len(report.RestockItems) == 0 {
		b.WriteString(labels.Alert.None)
	} else {
		fmt.Fprintf(&b, labels.Alert.Title, date, len(report.RestockItems))
		for _, item := range report.RestockItems {
			b.WriteByte('\n')
			fmt.Fprintf(&b, labels.Alert.Line, item.Name, item.Category, item.Quantity, item.Threshold, labels.StatusLabel(item.Status))
		}
	}

	b.WriteByte('\n')
	fmt.Fprintf(&b, labels.Alert.Total, report.TotalValue, report.TotalProducts)
	return b.String()
}
