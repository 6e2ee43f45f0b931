package model

import "gorm.io/gorm"

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"primaryKey"                         json:"user_id"`
	Username     string `gorm:"type:varchar(100);not null;unique"  json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"         json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null"          json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 写入前生成主键
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.UserID == "" {
		u.UserID = newID()
	}
	return nil
}
