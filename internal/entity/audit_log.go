package entity

import (
	"github.com/uptrace/bun"
)

type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs"`

	BasicEntity
	Action     *string `json:"action"      bun:"action"`
	ActorID    *string `json:"actor_id"    bun:"actor_id"`
	TargetType *string `json:"target_type" bun:"target_type"`
	TargetID   *string `json:"target_id"   bun:"target_id"`
	Details    *string `json:"details"     bun:"details"`
}
