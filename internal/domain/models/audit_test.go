package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditEntrySummary_LargeNumbersFromJSON(t *testing.T) {
	var entry AuditEntry
	require.NoError(t, json.Unmarshal([]byte(`{
		"action":"update",
		"oldData":{"name":"Pallet","quantity":999999,"price":1500000},
		"newData":{"name":"Pallet","quantity":1000000,"price":1500000.5}
	}`), &entry))

	assert.Equal(t, "quantity: 999999 → 1000000, price: 1500000 → 1500000.5", entry.Summary())
}

func TestAuditEntrySummary(t *testing.T) {
	cases := []struct {
		name  string
		entry AuditEntry
		want  string
	}{
		{"create", AuditEntry{Action: AuditCreate, NewData: map[string]any{"name": "Desk"}}, "Desk"},
		{"delete", AuditEntry{Action: AuditDelete, OldData: map[string]any{"name": "Desk"}}, "Desk"},
		{"delete without name", AuditEntry{Action: AuditDelete, OldData: map[string]any{}}, "-"},
		{"update unchanged", AuditEntry{
			Action:  AuditUpdate,
			OldData: map[string]any{"quantity": 3},
			NewData: map[string]any{"quantity": 3},
		}, "-"},
		{"update int fields", AuditEntry{
			Action:  AuditUpdate,
			OldData: map[string]any{"category": "Office", "low_stock_threshold": 5},
			NewData: map[string]any{"category": "Furniture", "low_stock_threshold": 10},
		}, "category: Office → Furniture, low_stock_threshold: 5 → 10"},
		{"json number", AuditEntry{
			Action:  AuditUpdate,
			OldData: map[string]any{"quantity": json.Number("2500000")},
			NewData: map[string]any{"quantity": json.Number("2500001")},
		}, "quantity: 2500000 → 2500001"},
		{"unknown action", AuditEntry{Action: AuditAction("restore")}, "-"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.entry.Summary())
		})
	}
}
