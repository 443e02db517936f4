// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/civicmitra/seva-backend/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// SequenceCounterRepository issues unique, gapless, monotonically
// increasing values for named counters. Next is the sole mutation path;
// the backing upsert-increment statement is the serialization point for
// concurrent callers.
type SequenceCounterRepository interface {
	// Next atomically advances the named counter by one and returns the
	// new value. The counter row is created on first use.
	Next(ctx context.Context, name string) (int64, error)
	// Current returns the last issued value, or 0 when the counter does
	// not exist yet.
	Current(ctx context.Context, name string) (int64, error)
	// InitializeFromExisting idempotently seeds a counter from the highest
	// previously assigned reference ID found in table.column. Malformed
	// IDs are skipped. A counter that already exists is left untouched.
	InitializeFromExisting(ctx context.Context, name, table, column, prefix string) error
}

// TimelineEventRepository persists the append-only history of grievances
// and appointments. Events are never updated or deleted.
type TimelineEventRepository interface {
	Repository[models.TimelineEvent, models.TimelineEventFilter]
	// Append inserts a validated event. It participates in the caller's
	// transaction when one is carried in ctx.
	Append(ctx context.Context, event *models.TimelineEvent) error
	// ListByEntity returns the entity's events in insertion order.
	ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*models.TimelineEvent, error)
}

// CompanyRepository defines operations for tenant companies
type CompanyRepository interface {
	Repository[models.Company, models.CompanyFilter]
	BySlug(ctx context.Context, slug string) (*models.Company, error)
	ByWhatsAppPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Company, error)
}

// DepartmentRepository defines operations for departments
type DepartmentRepository interface {
	Repository[models.Department, models.DepartmentFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Department, error)
	ByCompanyAndName(ctx context.Context, companyID uint, name string) (*models.Department, error)
	ListByCompany(ctx context.Context, companyID uint) ([]*models.Department, error)
}

// StaffUserRepository defines operations for staff users
type StaffUserRepository interface {
	Repository[models.StaffUser, models.StaffUserFilter]
	ByEmail(ctx context.Context, email string) (*models.StaffUser, error)
	ByUUID(ctx context.Context, uuid string) (*models.StaffUser, error)
	ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.StaffUser, error)
	Update(ctx context.Context, staffUserID uint, updates map[string]any) error
	UpdatePassword(ctx context.Context, staffUserID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, staffUserID uint, at time.Time) error
}

// StaffSessionRepository defines operations for staff sessions
type StaffSessionRepository interface {
	Repository[models.StaffSession, models.StaffSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.StaffSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.StaffSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllStaffSessions(ctx context.Context, staffUserID uint) error
	GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.StaffSession, error)
}

// CitizenRepository defines operations for citizens
type CitizenRepository interface {
	Repository[models.Citizen, models.CitizenFilter]
	ByPhone(ctx context.Context, companyID uint, phone string) (*models.Citizen, error)
	// FindOrCreateByPhone returns the citizen for the phone number,
	// creating the record on first contact.
	FindOrCreateByPhone(ctx context.Context, companyID uint, phone string, name *string) (*models.Citizen, error)
}

// GrievanceRepository defines operations for grievances
type GrievanceRepository interface {
	Repository[models.Grievance, models.GrievanceFilter]
	ByReferenceID(ctx context.Context, referenceID string) (*models.Grievance, error)
	ByUUID(ctx context.Context, uuid string) (*models.Grievance, error)
	// ByIDForUpdate loads the row under a row lock; must run inside a
	// transaction carried in ctx.
	ByIDForUpdate(ctx context.Context, id uint) (*models.Grievance, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	CountByStatus(ctx context.Context, companyID uint) (map[string]int64, error)
}

// AppointmentRepository defines operations for appointments
type AppointmentRepository interface {
	Repository[models.Appointment, models.AppointmentFilter]
	ByReferenceID(ctx context.Context, referenceID string) (*models.Appointment, error)
	ByUUID(ctx context.Context, uuid string) (*models.Appointment, error)
	// ByIDForUpdate loads the row under a row lock; must run inside a
	// transaction carried in ctx.
	ByIDForUpdate(ctx context.Context, id uint) (*models.Appointment, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	CountByStatus(ctx context.Context, companyID uint) (map[string]int64, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByStaffUser(ctx context.Context, staffUserID uint, limit, offset int) ([]*models.AuditLog, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
