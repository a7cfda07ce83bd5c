package repository

import (
	"errors"

	"github.com/inflink/escrow-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutRepository 打款数据访问接口
type PayoutRepository interface {
	CreateIfAbsent(payout *models.Payout) (bool, error)
	Update(payout *models.Payout) error
	GetByID(id uint) (*models.Payout, error)
	GetByApplicationID(applicationID uint) (*models.Payout, error)
	GetByApplicationIDForUpdate(applicationID uint) (*models.Payout, error)
	ListByApplicationIDs(applicationIDs []uint) ([]models.Payout, error)
	List(filter PayoutListFilter) ([]models.Payout, int64, error)
	WithTx(tx *gorm.DB) *GormPayoutRepository
}

// GormPayoutRepository GORM 实现
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository 创建打款仓库
func NewPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPayoutRepository) WithTx(tx *gorm.DB) *GormPayoutRepository {
	if tx == nil {
		return r
	}
	return &GormPayoutRepository{db: tx}
}

// CreateIfAbsent 创建打款记录，application_id 冲突时不写入。
// 返回是否实际插入，由唯一索引兜底并发竞争。
func (r *GormPayoutRepository) CreateIfAbsent(payout *models.Payout) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}},
		DoNothing: true,
	}).Create(payout)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update 更新打款记录
func (r *GormPayoutRepository) Update(payout *models.Payout) error {
	return r.db.Save(payout).Error
}

// GetByID 根据 ID 获取打款记录
func (r *GormPayoutRepository) GetByID(id uint) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetByApplicationID 根据合作申请获取打款记录
func (r *GormPayoutRepository) GetByApplicationID(applicationID uint) (*models.Payout, error) {
	var payout models.Payout
	result := r.db.Where("application_id = ?", applicationID).Limit(1).Find(&payout)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payout, nil
}

// GetByApplicationIDForUpdate 根据合作申请获取打款记录并加行锁，需在事务内调用
func (r *GormPayoutRepository) GetByApplicationIDForUpdate(applicationID uint) (*models.Payout, error) {
	var payout models.Payout
	result := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).Limit(1).Find(&payout)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payout, nil
}

// ListByApplicationIDs 批量获取打款记录
func (r *GormPayoutRepository) ListByApplicationIDs(applicationIDs []uint) ([]models.Payout, error) {
	if len(applicationIDs) == 0 {
		return []models.Payout{}, nil
	}
	var payouts []models.Payout
	if err := r.db.Where("application_id IN ?", applicationIDs).Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

// List 打款列表查询
func (r *GormPayoutRepository) List(filter PayoutListFilter) ([]models.Payout, int64, error) {
	query := r.db.Model(&models.Payout{})

	if filter.InfluencerID != 0 {
		query = query.Where("influencer_id = ?", filter.InfluencerID)
	}
	if filter.ApplicationID != 0 {
		query = query.Where("application_id = ?", filter.ApplicationID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestedFrom != nil {
		query = query.Where("requested_at >= ?", *filter.RequestedFrom)
	}
	if filter.RequestedTo != nil {
		query = query.Where("requested_at <= ?", *filter.RequestedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var payouts []models.Payout
	if err := query.Order("id desc").Find(&payouts).Error; err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}
