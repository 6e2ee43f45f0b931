package model

// LabInfo 实验室联系信息 — 对应 lab_info（单行表）
type LabInfo struct {
	Singleton        bool   `gorm:"primaryKey;default:true"             json:"-"`
	CoordinatorName  string `gorm:"type:varchar(200);not null"          json:"coordinator_name"`
	CoordinatorEmail string `gorm:"type:varchar(255);not null"          json:"coordinator_email"`
	AssistantName    string `gorm:"type:varchar(200);not null"          json:"assistant_name"`
	AssistantEmail   string `gorm:"type:varchar(255);not null"          json:"assistant_email"`
	BaseModel
}

// TableName 指定表名
func (LabInfo) TableName() string { return "lab_info" }
