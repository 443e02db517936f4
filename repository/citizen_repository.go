package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicmitra/seva-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CitizenRepositoryImpl implements CitizenRepository interface
type CitizenRepositoryImpl struct {
	*BaseRepository[models.Citizen, models.CitizenFilter]
}

// NewCitizenRepository creates a new citizen repository
func NewCitizenRepository(db *gorm.DB) CitizenRepository {
	return &CitizenRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Citizen, models.CitizenFilter](db),
	}
}

// ByPhone retrieves a citizen by phone within a company
func (r *CitizenRepositoryImpl) ByPhone(ctx context.Context, companyID uint, phone string) (*models.Citizen, error) {
	db := r.getDB(ctx)
	var row models.Citizen
	err := db.Where("company_id = ? AND phone = ?", companyID, phone).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find citizen by phone: %w", err)
	}
	return &row, nil
}

// FindOrCreateByPhone returns the citizen for the phone number, creating
// the record on first contact. Concurrent first contacts for the same
// phone are resolved by the unique (company_id, phone) index: the losing
// insert falls back to a lookup.
func (r *CitizenRepositoryImpl) FindOrCreateByPhone(ctx context.Context, companyID uint, phone string, name *string) (*models.Citizen, error) {
	if existing, err := r.ByPhone(ctx, companyID, phone); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	db := r.getDB(ctx)
	citizen := &models.Citizen{
		CompanyID: companyID,
		Phone:     phone,
		Name:      name,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "phone"}},
		DoNothing: true,
	}).Create(citizen).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create citizen: %w", err)
	}
	if citizen.ID != 0 {
		return citizen, nil
	}
	return r.ByPhone(ctx, companyID, phone)
}

// applyFilter applies filter criteria to a GORM query
func (r *CitizenRepositoryImpl) applyFilter(query *gorm.DB, filter models.CitizenFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Phone != nil {
		query = query.Where("phone = ?", *filter.Phone)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves citizens based on filter criteria
func (r *CitizenRepositoryImpl) ByFilter(ctx context.Context, filter models.CitizenFilter, orderBy string, limit, offset int) ([]*models.Citizen, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Citizen{})

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

	var rows []*models.Citizen
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of citizens matching filter
func (r *CitizenRepositoryImpl) Count(ctx context.Context, filter models.CitizenFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Citizen{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any citizen matches the filter
func (r *CitizenRepositoryImpl) Exists(ctx context.Context, filter models.CitizenFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
