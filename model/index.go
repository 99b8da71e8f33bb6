package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTO is the shared base for every row: opaque server-generated id plus
// bookkeeping timestamps. UpdatedAt is only ever written by this backend,
// so feed consumers may treat it as authoritative.
type DTO struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *DTO) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

type TokenClaim struct {
	UserId string `json:"userId"`
	Role   string `json:"role"`
}

type Pagination struct {
	Limit *int `json:"limit"`
	Page  *int `json:"page"`
}

type ResponseCustom struct {
	Rows       any   `json:"rows"`
	Limit      *int  `json:"limit"`
	Page       *int  `json:"page"`
	TotalCount int64 `json:"totalCount"`
}
