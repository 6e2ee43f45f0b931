package model

import (
	"time"

	"gorm.io/gorm"
)

// Equipment 设备台账 — 对应 equipment
// 记录只追加，不提供修改与删除
type Equipment struct {
	EquipmentID    string    `gorm:"primaryKey"                        json:"equipment_id"`
	Name           string    `gorm:"type:varchar(200);not null"        json:"name"`
	Tombo          string    `gorm:"type:varchar(100);not null"        json:"tombo"`
	Quantity       int       `gorm:"not null;default:0"                json:"quantity"`
	Model          string    `gorm:"type:varchar(200);not null"        json:"model"`
	Brand          string    `gorm:"type:varchar(200);not null"        json:"brand"`
	Purpose        string    `gorm:"type:text;not null"                json:"purpose"`
	Status         string    `gorm:"type:varchar(100);not null"        json:"status"`
	Location       string    `gorm:"type:varchar(200);not null"        json:"location"`
	Description    string    `gorm:"type:text;not null"                json:"description"`
	ImagemFilename *string   `gorm:"type:varchar(255)"                 json:"imagem_filename"`
	CreatedBy      *string   `                                         json:"created_by,omitempty"`
	CreatedAt      time.Time `gorm:"not null"                          json:"created_at"`
}

// TableName 指定表名
func (Equipment) TableName() string { return "equipment" }

// BeforeCreate 写入前生成主键
func (e *Equipment) BeforeCreate(*gorm.DB) error {
	if e.EquipmentID == "" {
		e.EquipmentID = newID()
	}
	return nil
}
