package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AuditAction enumerates the change kinds recorded by the audit trail.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// auditedKeys are the product columns compared when summarizing an update.
var auditedKeys = []string{"name", "category", "quantity", "price", "low_stock_threshold"}

// AuditEntry is one row of the change-audit log kept by the record store.
type AuditEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId,omitempty"`
	UserEmail string         `json:"userEmail,omitempty"`
	Action    AuditAction    `json:"action"`
	TableName string         `json:"tableName"`
	RecordID  string         `json:"recordId,omitempty"`
	OldData   map[string]any `json:"oldData,omitempty"`
	NewData   map[string]any `json:"newData,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Summary renders a one-line description of the change.
func (e AuditEntry) Summary() string {
	switch {
	case e.Action == AuditCreate && e.NewData != nil:
		return nameOrDash(e.NewData)
	case e.Action == AuditDelete && e.OldData != nil:
		return nameOrDash(e.OldData)
	case e.Action == AuditUpdate && e.OldData != nil && e.NewData != nil:
		var changes []string
		for _, key := range auditedKeys {
			before, after := auditValue(e.OldData[key]), auditValue(e.NewData[key])
			if before == after {
				continue
			}
			changes = append(changes, fmt.Sprintf("%s: %s → %s", key, before, after))
		}
		if len(changes) == 0 {
			return "-"
		}
		return strings.Join(changes, ", ")
	default:
		return "-"
	}
}

// auditValue prints numbers decoded from JSON in plain decimal notation.
func auditValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case json.Number:
		return n.String()
	default:
		return fmt.Sprint(v)
	}
}

func nameOrDash(data map[string]any) string {
	if name, ok := data["name"].(string); ok && name != "" {
		return name
	}
	return "-"
}
