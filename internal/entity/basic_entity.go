package entity

import "time"

type BasicEntity struct {
	ID        int        `json:"id" bun:"id,pk,autoincrement"`
	CreatedAt *time.Time `json:"-" bun:"created_at"`
	UpdatedAt *time.Time `json:"-" bun:"updated_at"`
	DeletedAt *time.Time `json:"-" bun:"deleted_at"`
}
