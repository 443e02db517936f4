package repository

import (
	"errors"
	"fmt"
	"strings"

	"context"

	"github.com/civicmitra/seva-backend/models"
	"gorm.io/gorm"
)

// ErrCounterNameRequired is returned before any store access when the
// counter name is empty.
var ErrCounterNameRequired = errors.New("counter name is required")

// SequenceCounterRepositoryImpl implements SequenceCounterRepository.
// All mutations go through a single INSERT .. ON CONFLICT .. RETURNING
// statement, so concurrent callers for the same name are linearized by
// the database without any application-level lock: each caller observes
// a distinct, strictly increasing value with no gaps.
type SequenceCounterRepositoryImpl struct {
	*BaseRepository[models.SequenceCounter, models.SequenceCounterFilter]
}

// NewSequenceCounterRepository creates a new sequence counter repository
func NewSequenceCounterRepository(db *gorm.DB) SequenceCounterRepository {
	return &SequenceCounterRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SequenceCounter, models.SequenceCounterFilter](db),
	}
}

// Next atomically advances the named counter by exactly one and returns
// the new value. The row is created with value 1 on first allocation.
// When ctx carries a transaction the increment commits or rolls back with
// it, so an aborted entity creation never burns a value.
func (r *SequenceCounterRepositoryImpl) Next(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrCounterNameRequired
	}

	db := r.getDB(ctx)
	var value int64
	err := db.Raw(`
		INSERT INTO sequence_counters (name, value, created_at, updated_at)
		VALUES (?, 1, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE
		SET value = sequence_counters.value + 1, updated_at = NOW()
		RETURNING value`, name).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %q: %w", name, err)
	}
	if value < 1 {
		return 0, fmt.Errorf("counter %q returned non-positive value %d", name, value)
	}
	return value, nil
}

// Current returns the last issued value for the counter, or 0 when no
// counter row exists yet.
func (r *SequenceCounterRepositoryImpl) Current(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrCounterNameRequired
	}

	db := r.getDB(ctx)
	var row models.SequenceCounter
	err := db.Where("name = ?", name).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read counter %q: %w", name, err)
	}
	return row.Value, nil
}

// InitializeFromExisting seeds the counter from the highest reference ID
// already present in table.column, so the sequence continues instead of
// restarting at 1 after a migration. Rows whose IDs do not match the
// fixed-width format are skipped. Running it again is a no-op because the
// insert bails out on conflict.
func (r *SequenceCounterRepositoryImpl) InitializeFromExisting(ctx context.Context, name, table, column, prefix string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrCounterNameRequired
	}

	db := r.getDB(ctx)

	var existing int64
	if err := db.Model(&models.SequenceCounter{}).Where("name = ?", name).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check counter %q: %w", name, err)
	}
	if existing > 0 {
		return nil
	}

	// Fixed-width zero padding makes the lexicographic max the numeric max,
	// and the regex filter drops malformed IDs before MAX sees them.
	pattern := fmt.Sprintf(`^%s\d{%d}$`, prefix, models.SequentialIDDigits)
	var maxID *string
	query := fmt.Sprintf(`SELECT MAX(%s) FROM %s WHERE %s ~ ?`, column, table, column)
	if err := db.Raw(query, pattern).Scan(&maxID).Error; err != nil {
		return fmt.Errorf("failed to scan %s.%s for existing ids: %w", table, column, err)
	}

	var seed int64
	if maxID != nil {
		if v, ok := models.ParseSequentialID(prefix, *maxID); ok {
			seed = v
		}
	}

	err := db.Exec(`
		INSERT INTO sequence_counters (name, value, created_at, updated_at)
		VALUES (?, ?, NOW(), NOW())
		ON CONFLICT (name) DO NOTHING`, name, seed).Error
	if err != nil {
		return fmt.Errorf("failed to seed counter %q: %w", name, err)
	}
	return nil
}
