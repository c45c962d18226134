package models

import "vrbs/src/types"

// AuditLog rows are a straight pass-through of admin/domain actions.
type AuditLog struct {
	ID       uint        `gorm:"primarykey" json:"id"`
	Actor    string      `json:"actor,omitempty"`
	Action   string      `json:"action,omitempty"`
	Entity   string      `json:"entity,omitempty"`
	EntityID uint        `json:"entity_id,omitempty"`
	Detail   types.JSONB `gorm:"type:jsonb" json:"detail,omitempty"`

	types.Timestamps
}
