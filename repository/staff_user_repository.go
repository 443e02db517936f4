package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/utils"
	"gorm.io/gorm"
)

// StaffUserRepositoryImpl implements StaffUserRepository interface
type StaffUserRepositoryImpl struct {
	*BaseRepository[models.StaffUser, models.StaffUserFilter]
}

// NewStaffUserRepository creates a new staff user repository
func NewStaffUserRepository(db *gorm.DB) StaffUserRepository {
	return &StaffUserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.StaffUser, models.StaffUserFilter](db),
	}
}

// ByEmail retrieves a staff user by email
func (r *StaffUserRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	rows, err := r.ByFilter(ctx, models.StaffUserFilter{Email: &email}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByUUID retrieves a staff user by UUID
func (r *StaffUserRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.StaffUser, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.StaffUserFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByCompany lists a company's staff, newest first
func (r *StaffUserRepositoryImpl) ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.StaffUser, error) {
	return r.ByFilter(ctx, models.StaffUserFilter{CompanyID: &companyID}, "id DESC", limit, offset)
}

// UpdatePassword replaces the staff user's password hash
func (r *StaffUserRepositoryImpl) UpdatePassword(ctx context.Context, staffUserID uint, passwordHash string) error {
	db := r.getDB(ctx)
	res := db.Model(&models.StaffUser{}).Where("id = ?", staffUserID).Updates(map[string]any{
		"password_hash": passwordHash,
		"updated_at":    utils.UTCNow(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update password for staff user %d: %w", staffUserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("staff user %d not found for password update", staffUserID)
	}
	return nil
}

// Update applies the given column updates to the staff user
func (r *StaffUserRepositoryImpl) Update(ctx context.Context, staffUserID uint, updates map[string]any) error {
	db := r.getDB(ctx)
	updates["updated_at"] = utils.UTCNow()
	res := db.Model(&models.StaffUser{}).Where("id = ?", staffUserID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update staff user %d: %w", staffUserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("staff user %d not found for update", staffUserID)
	}
	return nil
}

// UpdateLastLogin records the staff user's latest successful login
func (r *StaffUserRepositoryImpl) UpdateLastLogin(ctx context.Context, staffUserID uint, at time.Time) error {
	db := r.getDB(ctx)
	res := db.Model(&models.StaffUser{}).Where("id = ?", staffUserID).Updates(map[string]any{
		"last_login_at": at,
		"updated_at":    utils.UTCNow(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update last login for staff user %d: %w", staffUserID, res.Error)
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *StaffUserRepositoryImpl) applyFilter(query *gorm.DB, filter models.StaffUserFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Mobile != nil {
		query = query.Where("mobile = ?", *filter.Mobile)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
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

// ByFilter retrieves staff users based on filter criteria
func (r *StaffUserRepositoryImpl) ByFilter(ctx context.Context, filter models.StaffUserFilter, orderBy string, limit, offset int) ([]*models.StaffUser, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.StaffUser{})

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

	var rows []*models.StaffUser
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of staff users matching filter
func (r *StaffUserRepositoryImpl) Count(ctx context.Context, filter models.StaffUserFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.StaffUser{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any staff user matches the filter
func (r *StaffUserRepositoryImpl) Exists(ctx context.Context, filter models.StaffUserFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
