package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrievanceRepositoryImpl implements GrievanceRepository interface
type GrievanceRepositoryImpl struct {
	*BaseRepository[models.Grievance, models.GrievanceFilter]
}

// NewGrievanceRepository creates a new grievance repository
func NewGrievanceRepository(db *gorm.DB) GrievanceRepository {
	return &GrievanceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Grievance, models.GrievanceFilter](db),
	}
}

// ByReferenceID retrieves a grievance by its human-readable reference ID
func (r *GrievanceRepositoryImpl) ByReferenceID(ctx context.Context, referenceID string) (*models.Grievance, error) {
	rows, err := r.ByFilter(ctx, models.GrievanceFilter{ReferenceID: &referenceID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByUUID retrieves a grievance by UUID
func (r *GrievanceRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Grievance, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.GrievanceFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByIDForUpdate loads the grievance under FOR UPDATE so concurrent status
// and assignment mutations on the same row serialize. Callers must carry
// a transaction in ctx or the lock is released immediately.
func (r *GrievanceRepositoryImpl) ByIDForUpdate(ctx context.Context, id uint) (*models.Grievance, error) {
	db := r.getDB(ctx)
	var row models.Grievance
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock grievance %d: %w", id, err)
	}
	return &row, nil
}

// Update applies column updates to a grievance row
func (r *GrievanceRepositoryImpl) Update(ctx context.Context, id uint, updates map[string]any) error {
	db := r.getDB(ctx)
	updates["updated_at"] = utils.UTCNow()
	res := db.Model(&models.Grievance{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update grievance %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("grievance %d not found for update", id)
	}
	return nil
}

// CountByStatus returns per-status grievance counts for a company
func (r *GrievanceRepositoryImpl) CountByStatus(ctx context.Context, companyID uint) (map[string]int64, error) {
	db := r.getDB(ctx)
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := db.Model(&models.Grievance{}).
		Select("status, COUNT(*) AS total").
		Where("company_id = ?", companyID).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count grievances by status: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *GrievanceRepositoryImpl) applyFilter(query *gorm.DB, filter models.GrievanceFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.CitizenID != nil {
		query = query.Where("citizen_id = ?", *filter.CitizenID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves grievances based on filter criteria
func (r *GrievanceRepositoryImpl) ByFilter(ctx context.Context, filter models.GrievanceFilter, orderBy string, limit, offset int) ([]*models.Grievance, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Grievance{}).
		Preload("Citizen").
		Preload("Department").
		Preload("AssignedTo")

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

	var rows []*models.Grievance
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of grievances matching filter
func (r *GrievanceRepositoryImpl) Count(ctx context.Context, filter models.GrievanceFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Grievance{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any grievance matches the filter
func (r *GrievanceRepositoryImpl) Exists(ctx context.Context, filter models.GrievanceFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
