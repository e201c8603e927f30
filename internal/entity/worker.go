package entity

import (
	"github.com/uptrace/bun"
)

// Worker is the platform's durable record for a person on site. At most one
// row per non-null external_worker_id; rows are deactivated, never deleted.
type Worker struct {
	bun.BaseModel `bun:"table:workers"`

	BasicEntity
	ExternalWorkerID *string `json:"external_worker_id" bun:"external_worker_id"`
	Name             *string `json:"name"         bun:"name"`
	Phone            *string `json:"phone"        bun:"phone"`
	BirthDate        *string `json:"birth_date"   bun:"birth_date"`
	CompanyName      *string `json:"company_name" bun:"company_name"`
	Position         *string `json:"position"     bun:"position"`
	Trade            *string `json:"trade"        bun:"trade"`
	IsActive         *bool   `json:"is_active"    bun:"is_active"`
}
