package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
)

// bom lets spreadsheet applications detect UTF-8.
const bom = "\uFEFF"

// CSV writes a header row and one row per product using the locale delimiter.
func CSV(products []models.Product, labels i18n.Labels) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(bom)

	w := csv.NewWriter(&buf)
	w.Comma = labels.Comma()

	if err := w.Write(labels.Headers.Row()); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(Rows(products, labels)); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}

	return buf.Bytes(), nil
}
