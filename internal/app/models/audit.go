package models

import "time"

// AuditEntry records an admin-initiated mutation in the 'audit_log' table.
// Old/new values are JSON snapshots of the affected record.
type AuditEntry struct {
	ID        int64     `json:"id" db:"id"`
	AdminID   int64     `json:"adminId" db:"admin_id"`
	Action    string    `json:"action" db:"action"`
	TableName string    `json:"tableName" db:"table_name"`
	RecordID  int64     `json:"recordId" db:"record_id"`
	OldValue  []byte    `json:"oldValue,omitempty" db:"old_value"`
	NewValue  []byte    `json:"newValue,omitempty" db:"new_value"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Audit actions
const (
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionDeactivate = "DEACTIVATE"
)
