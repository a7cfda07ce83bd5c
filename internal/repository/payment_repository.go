package repository

import (
	"errors"

	"github.com/inflink/escrow-ledger/internal/constants"
	"github.com/inflink/escrow-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	CreateIfAbsent(payment *models.Payment) (bool, error)
	Update(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetSuccessByApplicationID(applicationID uint) (*models.Payment, error)
	ListByApplicationID(applicationID uint) ([]models.Payment, error)
	ListByCampaignID(campaignID uint) ([]models.Payment, error)
	List(filter PaymentListFilter) ([]models.Payment, int64, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// CreateIfAbsent 创建支付记录，application_id 冲突时不写入。
// 返回是否实际插入，由唯一索引兜底并发竞争。
func (r *GormPaymentRepository) CreateIfAbsent(payment *models.Payment) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}},
		DoNothing: true,
	}).Create(payment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update 更新支付记录
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByID 根据 ID 获取支付记录
func (r *GormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetSuccessByApplicationID 获取合作申请下的成功支付记录
func (r *GormPaymentRepository) GetSuccessByApplicationID(applicationID uint) (*models.Payment, error) {
	var payment models.Payment
	result := r.db.Where("application_id = ? AND status = ?", applicationID, constants.PaymentStatusSuccess).
		Order("id desc").Limit(1).Find(&payment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payment, nil
}

// ListByApplicationID 获取合作申请下的支付记录
func (r *GormPaymentRepository) ListByApplicationID(applicationID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("application_id = ?", applicationID).Order("id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// ListByCampaignID 获取活动下的全部支付记录
func (r *GormPaymentRepository) ListByCampaignID(campaignID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("campaign_id = ?", campaignID).Order("id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// List 支付列表查询
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{})

	if filter.BrandID != 0 {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.CampaignID != 0 {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.ApplicationID != 0 {
		query = query.Where("application_id = ?", filter.ApplicationID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var payments []models.Payment
	if err := query.Order("id desc").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
