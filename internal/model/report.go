package model

import (
	"time"

	"gorm.io/gorm"
)

// Report 报告文件 — 对应 reports，必须关联一个已存储的文件
type Report struct {
	ReportID   string    `gorm:"primaryKey"                  json:"report_id"`
	Title      string    `gorm:"type:varchar(200);not null"  json:"title"`
	Filename   string    `gorm:"type:varchar(255);not null"  json:"filename"`
	CreatedBy  *string   `                                   json:"created_by,omitempty"`
	UploadedAt time.Time `gorm:"not null"                    json:"uploaded_at"`
}

// TableName 指定表名
func (Report) TableName() string { return "reports" }

// BeforeCreate 写入前生成主键
func (r *Report) BeforeCreate(*gorm.DB) error {
	if r.ReportID == "" {
		r.ReportID = newID()
	}
	return nil
}
