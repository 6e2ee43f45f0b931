package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// newID 生成记录主键
func newID() string {
	return uuid.NewString()
}
