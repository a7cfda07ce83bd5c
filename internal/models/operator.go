package models

import (
	"time"

	"github.com/inflink/escrow-ledger/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// Operator 平台运营账号，负责人工确认打款
type Operator struct {
	ID           uint       `gorm:"primarykey" json:"id"`                 // 主键
	Username     string     `gorm:"uniqueIndex;not null" json:"username"` // 运营账号
	PasswordHash string     `gorm:"not null" json:"-"`                    // 密码哈希（不返回给前端）
	LastLoginAt  *time.Time `json:"last_login_at"`                        // 最后登录时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`              // 创建时间
}

// TableName 指定表名
func (Operator) TableName() string {
	return "operators"
}

// InitDefaultOperator 初始化默认运营账号
func InitDefaultOperator(username, password string) error {
	var count int64
	DB.Model(&Operator{}).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "operator"
	}
	if password == "" {
		password = "operator123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	operator := Operator{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := DB.Create(&operator).Error; err != nil {
		return err
	}

	if password == "operator123" {
		logger.Warnw("default_operator_created_with_default_password", "username", username)
		logger.Warnw("default_operator_password_change_required", "username", username)
	} else {
		logger.Warnw("default_operator_created", "username", username, "password_hidden", true)
	}
	return nil
}
