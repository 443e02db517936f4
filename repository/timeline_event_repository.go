package repository

import (
	"context"
	"fmt"

	"github.com/civicmitra/seva-backend/models"
	"gorm.io/gorm"
)

// TimelineEventRepositoryImpl implements TimelineEventRepository
type TimelineEventRepositoryImpl struct {
	*BaseRepository[models.TimelineEvent, models.TimelineEventFilter]
}

// NewTimelineEventRepository creates a new timeline event repository
func NewTimelineEventRepository(db *gorm.DB) TimelineEventRepository {
	return &TimelineEventRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TimelineEvent, models.TimelineEventFilter](db),
	}
}

// Append inserts a validated event. Callers mutating entity state must
// carry a transaction in ctx so the event commits or rolls back together
// with the state change it documents.
func (r *TimelineEventRepositoryImpl) Append(ctx context.Context, event *models.TimelineEvent) error {
	switch event.Action {
	case models.TimelineActionCreated, models.TimelineActionAssigned,
		models.TimelineActionStatusUpdated, models.TimelineActionDepartmentTransfer:
	default:
		return fmt.Errorf("%w: %q", models.ErrInvalidTimelineAction, event.Action)
	}
	if err := r.Save(ctx, event); err != nil {
		return fmt.Errorf("failed to append timeline event: %w", err)
	}
	return nil
}

// ListByEntity returns all events of the entity in insertion order.
// Insertion order equals chronological order because events are appended
// with a server-side timestamp and never reordered.
func (r *TimelineEventRepositoryImpl) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*models.TimelineEvent, error) {
	return r.ByFilter(ctx, models.TimelineEventFilter{
		EntityType: &entityType,
		EntityID:   &entityID,
	}, "id ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *TimelineEventRepositoryImpl) applyFilter(query *gorm.DB, filter models.TimelineEventFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.PerformedByID != nil {
		query = query.Where("performed_by_id = ?", *filter.PerformedByID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves timeline events based on filter criteria
func (r *TimelineEventRepositoryImpl) ByFilter(ctx context.Context, filter models.TimelineEventFilter, orderBy string, limit, offset int) ([]*models.TimelineEvent, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TimelineEvent{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.TimelineEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of timeline events matching filter
func (r *TimelineEventRepositoryImpl) Count(ctx context.Context, filter models.TimelineEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TimelineEvent{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any timeline event matches the filter
func (r *TimelineEventRepositoryImpl) Exists(ctx context.Context, filter models.TimelineEventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
