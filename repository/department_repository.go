package repository

import (
	"context"

	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/utils"
	"gorm.io/gorm"
)

// DepartmentRepositoryImpl implements DepartmentRepository interface
type DepartmentRepositoryImpl struct {
	*BaseRepository[models.Department, models.DepartmentFilter]
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &DepartmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Department, models.DepartmentFilter](db),
	}
}

// ByUUID retrieves a department by UUID
func (r *DepartmentRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Department, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.DepartmentFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByCompanyAndName retrieves a company's department by name, case-insensitively
func (r *DepartmentRepositoryImpl) ByCompanyAndName(ctx context.Context, companyID uint, name string) (*models.Department, error) {
	db := r.getDB(ctx)
	var rows []*models.Department
	err := db.Model(&models.Department{}).
		Where("company_id = ? AND LOWER(name) = LOWER(?)", companyID, name).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByCompany lists a company's departments, newest first
func (r *DepartmentRepositoryImpl) ListByCompany(ctx context.Context, companyID uint) ([]*models.Department, error) {
	return r.ByFilter(ctx, models.DepartmentFilter{CompanyID: &companyID}, "id DESC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *DepartmentRepositoryImpl) applyFilter(query *gorm.DB, filter models.DepartmentFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.HeadUserID != nil {
		query = query.Where("head_user_id = ?", *filter.HeadUserID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves departments based on filter criteria
func (r *DepartmentRepositoryImpl) ByFilter(ctx context.Context, filter models.DepartmentFilter, orderBy string, limit, offset int) ([]*models.Department, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Department{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Department
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of departments matching filter
func (r *DepartmentRepositoryImpl) Count(ctx context.Context, filter models.DepartmentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Department{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any department matches the filter
func (r *DepartmentRepositoryImpl) Exists(ctx context.Context, filter models.DepartmentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
