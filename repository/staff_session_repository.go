package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffSessionRepositoryImpl implements StaffSessionRepository interface
type StaffSessionRepositoryImpl struct {
	*BaseRepository[models.StaffSession, models.StaffSessionFilter]
}

// NewStaffSessionRepository creates a new staff session repository
func NewStaffSessionRepository(db *gorm.DB) StaffSessionRepository {
	return &StaffSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.StaffSession, models.StaffSessionFilter](db),
	}
}

// BySessionToken retrieves a session by its access token
func (r *StaffSessionRepositoryImpl) BySessionToken(ctx context.Context, token string) (*models.StaffSession, error) {
	db := r.getDB(ctx)
	var row models.StaffSession
	err := db.Where("session_token = ?", token).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by token: %w", err)
	}
	return &row, nil
}

// ByRefreshToken retrieves a session by its refresh token
func (r *StaffSessionRepositoryImpl) ByRefreshToken(ctx context.Context, token string) (*models.StaffSession, error) {
	db := r.getDB(ctx)
	var row models.StaffSession
	err := db.Where("refresh_token = ?", token).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by refresh token: %w", err)
	}
	return &row, nil
}

// ExpireSession marks a single session inactive
func (r *StaffSessionRepositoryImpl) ExpireSession(ctx context.Context, sessionID uint) error {
	db := r.getDB(ctx)
	res := db.Model(&models.StaffSession{}).Where("id = ?", sessionID).Updates(map[string]any{
		"is_active":  false,
		"expires_at": utils.UTCNow(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to expire session %d: %w", sessionID, res.Error)
	}
	return nil
}

// ExpireAllStaffSessions marks every active session of a staff user inactive
func (r *StaffSessionRepositoryImpl) ExpireAllStaffSessions(ctx context.Context, staffUserID uint) error {
	db := r.getDB(ctx)
	res := db.Model(&models.StaffSession{}).
		Where("staff_user_id = ? AND is_active = true", staffUserID).
		Updates(map[string]any{
			"is_active":  false,
			"expires_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to expire sessions for staff user %d: %w", staffUserID, res.Error)
	}
	return nil
}

// GetLatestByCorrelationID returns the most recent session in a correlation group
func (r *StaffSessionRepositoryImpl) GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.StaffSession, error) {
	rows, err := r.ByFilter(ctx, models.StaffSessionFilter{CorrelationID: &correlationID}, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *StaffSessionRepositoryImpl) applyFilter(query *gorm.DB, filter models.StaffSessionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CorrelationID != nil {
		query = query.Where("correlation_id = ?", *filter.CorrelationID)
	}
	if filter.StaffUserID != nil {
		query = query.Where("staff_user_id = ?", *filter.StaffUserID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IPAddress != nil {
		query = query.Where("ip_address = ?", *filter.IPAddress)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		query = query.Where("expires_at < ?", *filter.ExpiresBefore)
	}
	return query
}

// ByFilter retrieves sessions based on filter criteria
func (r *StaffSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.StaffSessionFilter, orderBy string, limit, offset int) ([]*models.StaffSession, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.StaffSession{})

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

	var rows []*models.StaffSession
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of sessions matching filter
func (r *StaffSessionRepositoryImpl) Count(ctx context.Context, filter models.StaffSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.StaffSession{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any session matches the filter
func (r *StaffSessionRepositoryImpl) Exists(ctx context.Context, filter models.StaffSessionFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
