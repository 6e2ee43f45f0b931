package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultMachineStatus 新登记机器的默认状态
const DefaultMachineStatus = "não formatada"

// Machine 机器状态台账 — 对应 machines
type Machine struct {
	MachineID         string     `gorm:"primaryKey"                 json:"machine_id"`
	Name              string     `gorm:"type:varchar(200);not null" json:"name"`
	Status            string     `gorm:"type:varchar(100);not null" json:"status"`
	Type              string     `gorm:"type:varchar(100);not null" json:"type"`
	Brand             string     `gorm:"type:varchar(200);not null" json:"brand"`
	Model             string     `gorm:"type:varchar(200);not null" json:"model"`
	SerialNumber      *string    `gorm:"type:varchar(100);unique"   json:"serial_number"`
	OS                string     `gorm:"column:os;not null"         json:"os"`
	InstalledSoftware string     `gorm:"type:text;not null"         json:"installed_software"`
	Licenses          string     `gorm:"type:text;not null"         json:"licenses"`
	LastCleaningDate  *time.Time `gorm:"type:date"                  json:"last_cleaning_date"`
	LastFormatDate    *time.Time `gorm:"type:date"                  json:"last_format_date"`
	Responsible       string     `gorm:"type:varchar(200);not null" json:"responsible"`
	ImagemFilename    *string    `gorm:"type:varchar(255)"          json:"imagem_filename"`
	CreatedBy         *string    `                                  json:"created_by,omitempty"`
	CreatedAt         time.Time  `gorm:"not null"                   json:"created_at"`
}

// TableName 指定表名
func (Machine) TableName() string { return "machines" }

// BeforeCreate 写入前生成主键
func (m *Machine) BeforeCreate(*gorm.DB) error {
	if m.MachineID == "" {
		m.MachineID = newID()
	}
	return nil
}
