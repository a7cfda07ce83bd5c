package repository

import (
	"errors"
	"strings"

	"github.com/inflink/escrow-ledger/internal/models"

	"gorm.io/gorm"
)

// OperatorRepository 运营账号数据访问接口
type OperatorRepository interface {
	GetByID(id uint) (*models.Operator, error)
	GetByUsername(username string) (*models.Operator, error)
	Update(operator *models.Operator) error
}

// GormOperatorRepository GORM 实现
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository 创建运营账号仓库
func NewOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// GetByID 根据 ID 获取运营账号
func (r *GormOperatorRepository) GetByID(id uint) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.First(&operator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// GetByUsername 根据账号名获取运营账号
func (r *GormOperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var operator models.Operator
	result := r.db.Where("username = ?", username).Limit(1).Find(&operator)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &operator, nil
}

// Update 更新运营账号
func (r *GormOperatorRepository) Update(operator *models.Operator) error {
	return r.db.Save(operator).Error
}
