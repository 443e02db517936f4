package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Timeline action constants. The set is closed: every state-changing
// operation on a grievance or appointment maps to exactly one of these.
const (
	TimelineActionCreated            = "CREATED"
	TimelineActionAssigned           = "ASSIGNED"
	TimelineActionStatusUpdated      = "STATUS_UPDATED"
	TimelineActionDepartmentTransfer = "DEPARTMENT_TRANSFER"
)

// Timeline entity type constants
const (
	TimelineEntityGrievance   = "grievance"
	TimelineEntityAppointment = "appointment"
)

// ErrInvalidTimelineAction is returned for actions outside the closed set,
// before any store access.
var ErrInvalidTimelineAction = errors.New("invalid timeline action")

// TimelineEvent is one entry in the append-only history of a grievance or
// appointment. Rows are never updated or deleted; insertion order (the
// autoincrement id) is the authoritative ordering.
type TimelineEvent struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string `gorm:"size:20;not null;index:idx_timeline_entity,priority:1" json:"entity_type"`
	EntityID   uint   `gorm:"not null;index:idx_timeline_entity,priority:2" json:"entity_id"`
	Action     string `gorm:"type:timeline_action_enum;not null;index:idx_timeline_action" json:"action"`

	// PerformedByID is nil for system-originated events (e.g. chatbot intake)
	PerformedByID *uint      `gorm:"index:idx_timeline_performed_by" json:"performed_by_id,omitempty"`
	PerformedBy   *StaffUser `gorm:"foreignKey:PerformedByID;references:ID" json:"performed_by,omitempty"`

	Details   json.RawMessage `gorm:"type:jsonb;not null;default:'{}'" json:"details"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_timeline_created_at" json:"created_at"`
}

func (TimelineEvent) TableName() string { return "timeline_events" }

// TimelineEventFilter represents filter criteria for timeline queries
type TimelineEventFilter struct {
	ID            *uint
	EntityType    *string
	EntityID      *uint
	Action        *string
	PerformedByID *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// IsSystemEvent reports whether the event was produced without an acting
// staff user.
func (e *TimelineEvent) IsSystemEvent() bool {
	return e.PerformedByID == nil
}

// TimelineDetails is the per-action payload attached to a timeline event.
// Each action has its own concrete type so payload shapes are checked at
// compile time instead of living in an untyped bag.
type TimelineDetails interface {
	Action() string
	Validate() error
}

// CreatedDetails accompanies CREATED events.
type CreatedDetails struct {
	Channel string `json:"channel"` // whatsapp, web, walk_in
}

func (CreatedDetails) Action() string { return TimelineActionCreated }

func (d CreatedDetails) Validate() error {
	switch d.Channel {
	case "whatsapp", "web", "walk_in":
		return nil
	}
	return fmt.Errorf("unknown creation channel %q", d.Channel)
}

// AssignedDetails accompanies ASSIGNED events.
type AssignedDetails struct {
	ToUserID   uint   `json:"to_user_id"`
	ToUserName string `json:"to_user_name"`
}

func (AssignedDetails) Action() string { return TimelineActionAssigned }

func (d AssignedDetails) Validate() error {
	if d.ToUserID == 0 {
		return errors.New("assignment requires a target user id")
	}
	if d.ToUserName == "" {
		return errors.New("assignment requires a target user name")
	}
	return nil
}

// StatusUpdatedDetails accompanies STATUS_UPDATED events.
type StatusUpdatedDetails struct {
	ToStatus string  `json:"to_status"`
	Remarks  *string `json:"remarks,omitempty"`
}

func (StatusUpdatedDetails) Action() string { return TimelineActionStatusUpdated }

func (d StatusUpdatedDetails) Validate() error {
	if d.ToStatus == "" {
		return errors.New("status update requires a target status")
	}
	return nil
}

// TransferDetails accompanies DEPARTMENT_TRANSFER events.
type TransferDetails struct {
	ToDepartmentID   uint   `json:"to_department_id"`
	ToDepartmentName string `json:"to_department_name"`
}

func (TransferDetails) Action() string { return TimelineActionDepartmentTransfer }

func (d TransferDetails) Validate() error {
	if d.ToDepartmentID == 0 {
		return errors.New("transfer requires a target department id")
	}
	return nil
}

// NewTimelineEvent validates the details payload against its action and
// builds an event ready for appending. performedBy nil marks a system event.
func NewTimelineEvent(entityType string, entityID uint, performedBy *uint, details TimelineDetails) (*TimelineEvent, error) {
	switch entityType {
	case TimelineEntityGrievance, TimelineEntityAppointment:
	default:
		return nil, fmt.Errorf("unknown timeline entity type %q", entityType)
	}
	if details == nil {
		return nil, ErrInvalidTimelineAction
	}
	switch details.Action() {
	case TimelineActionCreated, TimelineActionAssigned, TimelineActionStatusUpdated, TimelineActionDepartmentTransfer:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimelineAction, details.Action())
	}
	if err := details.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s details: %w", details.Action(), err)
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeline details: %w", err)
	}

	return &TimelineEvent{
		EntityType:    entityType,
		EntityID:      entityID,
		Action:        details.Action(),
		PerformedByID: performedBy,
		Details:       payload,
	}, nil
}
