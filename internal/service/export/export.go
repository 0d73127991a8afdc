// Package export renders product collections as downloadable CSV and XLSX reports.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/service/metrics"
)

// ReportType selects which products a report contains.
type ReportType string

const (
	ReportFull     ReportType = "full"
	ReportLowStock ReportType = "low-stock"
)

// Format selects the output encoding of a report.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout      = "2006-01-02"
)

// File is a rendered report ready to be written or streamed.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ParseReportType validates a report type string. Empty means full.
func ParseReportType(raw string) (ReportType, error) {
	switch ReportType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReportFull:
		return ReportFull, nil
	case ReportLowStock:
		return ReportLowStock, nil
	default:
		return "", models.NewValidationError("type", fmt.Sprintf("unsupported report type %q", raw))
	}
}

// ParseFormat validates a format string. Empty means CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", models.NewValidationError("format", fmt.Sprintf("unsupported export format %q", raw))
	}
}

// Select applies the report filter. The low-stock report keeps every product
// that is not in stock, out-of-stock ones included.
func Select(products []models.Product, reportType ReportType) []models.Product {
	if reportType != ReportLowStock {
		return append([]models.Product(nil), products...)
	}
	selected := make([]models.Product, 0, len(products))
	for _, p := range products {
		if metrics.Classify(p) != models.StatusInStock {
			selected = append(selected, p)
		}
	}
	return selected
}

// Render formats products without filtering them. Callers are expected to have
// applied Select and rejected empty selections.
func Render(products []models.Product, reportType ReportType, format Format, locale i18n.Locale, date time.Time) (*File, error) {
	labels := i18n.For(locale)

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatCSV:
		data, err = CSV(products, labels)
		contentType = contentTypeCSV
	case FormatXLSX:
		data, err = XLSX(products, labels)
		contentType = contentTypeXLSX
	default:
		return nil, models.NewValidationError("format", fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	return &File{
		Name:        Filename(labels, reportType, string(format), date),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Filename builds "{prefix}-{report}-{YYYY-MM-DD}.{ext}" from the locale labels.
func Filename(labels i18n.Labels, reportType ReportType, ext string, date time.Time) string {
	return fmt.Sprintf("%s-%s-%s.%s", labels.FilePrefix, labels.ReportLabel(string(reportType)), date.UTC().Format(dateLayout), ext)
}

// Rows returns the data rows of a report as display strings, header excluded.
func Rows(products []models.Product, labels i18n.Labels) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.Name,
			p.Category,
			strconv.Itoa(p.Quantity),
			metrics.Display(p.Price),
			strconv.Itoa(p.LowStockThreshold),
			labels.StatusLabel(metrics.Classify(p)),
			metrics.Display(p.Value()),
		})
	}
	return rows
}
