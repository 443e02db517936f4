package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/app/services"
	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	"github.com/civicmitra/seva-backend/utils"
	"gorm.io/gorm"
)

// AppointmentFlow defines operations for booking and working appointments
type AppointmentFlow interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest, metadata *ClientMetadata) (*dto.CreateAppointmentResponse, error)
	AssignAppointment(ctx context.Context, req *dto.AssignAppointmentRequest, metadata *ClientMetadata) (*dto.AssignAppointmentResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateAppointmentStatusRequest, metadata *ClientMetadata) (*dto.UpdateAppointmentStatusResponse, error)
	GetTimeline(ctx context.Context, referenceID string) (*dto.GetTimelineResponse, error)
	ListAppointments(ctx context.Context, req *dto.ListAppointmentsRequest, metadata *ClientMetadata) (*dto.ListAppointmentsResponse, error)
}

// AppointmentFlowImpl implements AppointmentFlow
type AppointmentFlowImpl struct {
	appointmentRepo repository.AppointmentRepository
	citizenRepo     repository.CitizenRepository
	companyRepo     repository.CompanyRepository
	departmentRepo  repository.DepartmentRepository
	staffRepo       repository.StaffUserRepository
	counterRepo     repository.SequenceCounterRepository
	timelineRepo    repository.TimelineEventRepository
	notifier        services.NotificationService
	db              *gorm.DB
}

// NewAppointmentFlow creates a new appointment flow instance
func NewAppointmentFlow(
	appointmentRepo repository.AppointmentRepository,
	citizenRepo repository.CitizenRepository,
	companyRepo repository.CompanyRepository,
	departmentRepo repository.DepartmentRepository,
	staffRepo repository.StaffUserRepository,
	counterRepo repository.SequenceCounterRepository,
	timelineRepo repository.TimelineEventRepository,
	notifier services.NotificationService,
	db *gorm.DB,
) AppointmentFlow {
	return &AppointmentFlowImpl{
		appointmentRepo: appointmentRepo,
		citizenRepo:     citizenRepo,
		companyRepo:     companyRepo,
		departmentRepo:  departmentRepo,
		staffRepo:       staffRepo,
		counterRepo:     counterRepo,
		timelineRepo:    timelineRepo,
		notifier:        notifier,
		db:              db,
	}
}

// CreateAppointment books an appointment. The APT reference ID comes
// from the same counter allocator as grievances but a separate counter,
// so the two sequences never interleave.
func (f *AppointmentFlowImpl) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest, metadata *ClientMetadata) (*dto.CreateAppointmentResponse, error) {
	if err := f.validateCreateRequest(req); err != nil {
		return nil, NewBusinessError("APPOINTMENT_VALIDATION_FAILED", "Appointment validation failed", err)
	}

	company, err := getCompany(ctx, f.companyRepo, req.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	var appointment *models.Appointment
	var citizen *models.Citizen

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		citizen, err = f.citizenRepo.FindOrCreateByPhone(txCtx, company.ID, req.CitizenPhone, req.CitizenName)
		if err != nil {
			return err
		}

		if req.DepartmentID != nil {
			department, err := f.departmentRepo.ByID(txCtx, *req.DepartmentID)
			if err != nil {
				return err
			}
			if department == nil {
				return ErrDepartmentNotFound
			}
			if department.CompanyID != company.ID {
				return ErrDepartmentWrongTenant
			}
			if !utils.IsTrue(department.IsActive) {
				return ErrDepartmentInactive
			}
		}

		value, err := f.counterRepo.Next(txCtx, models.CounterAppointment)
		if err != nil {
			return err
		}
		referenceID, err := models.FormatSequentialID(utils.AppointmentIDPrefix, value)
		if err != nil {
			return err
		}

		appointment = &models.Appointment{
			ReferenceID:  referenceID,
			CompanyID:    company.ID,
			CitizenID:    citizen.ID,
			Purpose:      req.ServiceName,
			Notes:        req.Notes,
			ScheduledAt:  req.ScheduledAt.UTC(),
			Status:       models.AppointmentStatusPending,
			DepartmentID: req.DepartmentID,
		}
		if err := f.appointmentRepo.Save(txCtx, appointment); err != nil {
			return err
		}

		event, err := models.NewTimelineEvent(models.TimelineEntityAppointment, appointment.ID, nil, models.CreatedDetails{Channel: req.Channel})
		if err != nil {
			return err
		}
		return f.timelineRepo.Append(txCtx, event)
	})

	if err != nil {
		return nil, NewBusinessError("APPOINTMENT_CREATION_FAILED", "Appointment creation failed", err)
	}

	if f.notifier != nil {
		msg := fmt.Sprintf("Your appointment is booked. Reference: %s, scheduled for %s.", appointment.ReferenceID, appointment.ScheduledAt.Format("02 Jan 2006 15:04 MST"))
		go func() {
			_ = f.notifier.NotifyCitizen(context.Background(), citizen.Phone, msg)
		}()
	}

	return &dto.CreateAppointmentResponse{
		Message:     "Appointment booked successfully",
		ID:          appointment.ID,
		UUID:        appointment.UUID.String(),
		ReferenceID: appointment.ReferenceID,
		Status:      appointment.Status,
		ScheduledAt: appointment.ScheduledAt.Format(time.RFC3339),
		CreatedAt:   appointment.CreatedAt.Format(time.RFC3339),
	}, nil
}

// AssignAppointment assigns the appointment to a staff officer. Unlike
// grievances, assignment does not change the appointment's status.
func (f *AppointmentFlowImpl) AssignAppointment(ctx context.Context, req *dto.AssignAppointmentRequest, metadata *ClientMetadata) (*dto.AssignAppointmentResponse, error) {
	var appointment *models.Appointment
	var assignee *models.StaffUser

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		appointment, err = f.lockAppointment(txCtx, req.ReferenceID)
		if err != nil {
			return err
		}
		if appointment.IsTerminal() {
			return ErrInvalidStatusTransition
		}

		assignee, err = getStaff(txCtx, f.staffRepo, req.AssigneeID)
		if err != nil {
			if IsStaffNotFound(err) {
				return ErrAssigneeNotFound
			}
			return err
		}
		if assignee.CompanyID != appointment.CompanyID {
			return ErrAssigneeWrongTenant
		}

		if err := f.appointmentRepo.Update(txCtx, appointment.ID, map[string]any{"assigned_to_id": assignee.ID}); err != nil {
			return err
		}

		event, err := models.NewTimelineEvent(models.TimelineEntityAppointment, appointment.ID, &req.PerformedBy, models.AssignedDetails{
			ToUserID:   assignee.ID,
			ToUserName: assignee.FullName(),
		})
		if err != nil {
			return err
		}
		return f.timelineRepo.Append(txCtx, event)
	})

	if err != nil {
		return nil, NewBusinessError("APPOINTMENT_ASSIGNMENT_FAILED", "Appointment assignment failed", err)
	}

	// Assignment is citizen-visible, notify after commit
	f.notifyAssignment(appointment, assignee)

	return &dto.AssignAppointmentResponse{
		Message:     "Appointment assigned successfully",
		ReferenceID: appointment.ReferenceID,
		AssigneeID:  assignee.ID,
	}, nil
}

// UpdateStatus moves the appointment along its status machine and appends
// the STATUS_UPDATED event.
func (f *AppointmentFlowImpl) UpdateStatus(ctx context.Context, req *dto.UpdateAppointmentStatusRequest, metadata *ClientMetadata) (*dto.UpdateAppointmentStatusResponse, error) {
	if !models.IsValidAppointmentStatus(req.Status) {
		return nil, NewBusinessError("UNKNOWN_STATUS", fmt.Sprintf("Unknown appointment status %q", req.Status), ErrUnknownStatus)
	}

	var appointment *models.Appointment

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		appointment, err = f.lockAppointment(txCtx, req.ReferenceID)
		if err != nil {
			return err
		}

		if !models.CanTransitionAppointment(appointment.Status, req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, appointment.Status, req.Status)
		}

		if err := f.appointmentRepo.Update(txCtx, appointment.ID, map[string]any{"status": req.Status}); err != nil {
			return err
		}
		appointment.Status = req.Status

		event, err := models.NewTimelineEvent(models.TimelineEntityAppointment, appointment.ID, &req.PerformedBy, models.StatusUpdatedDetails{
			ToStatus: req.Status,
			Remarks:  req.Remarks,
		})
		if err != nil {
			return err
		}
		return f.timelineRepo.Append(txCtx, event)
	})

	if err != nil {
		return nil, NewBusinessError("APPOINTMENT_STATUS_UPDATE_FAILED", "Appointment status update failed", err)
	}

	f.notifyStatusChange(appointment)

	return &dto.UpdateAppointmentStatusResponse{
		Message:     "Appointment status updated successfully",
		ReferenceID: appointment.ReferenceID,
		Status:      appointment.Status,
	}, nil
}

// GetTimeline returns the appointment's full event history in insertion order
func (f *AppointmentFlowImpl) GetTimeline(ctx context.Context, referenceID string) (*dto.GetTimelineResponse, error) {
	appointment, err := f.appointmentRepo.ByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, NewBusinessError("APPOINTMENT_LOOKUP_FAILED", "Failed to lookup appointment", err)
	}
	if appointment == nil {
		return nil, NewBusinessError("APPOINTMENT_NOT_FOUND", "Appointment not found", ErrAppointmentNotFound)
	}

	events, err := f.timelineRepo.ListByEntity(ctx, models.TimelineEntityAppointment, appointment.ID)
	if err != nil {
		return nil, NewBusinessError("TIMELINE_LOOKUP_FAILED", "Failed to load timeline", err)
	}

	items := make([]dto.TimelineEventDTO, 0, len(events))
	for _, e := range events {
		items = append(items, ToTimelineEventDTO(*e))
	}

	return &dto.GetTimelineResponse{
		Message:     "Timeline retrieved successfully",
		EntityType:  models.TimelineEntityAppointment,
		ReferenceID: appointment.ReferenceID,
		Events:      items,
	}, nil
}

// ListAppointments returns a filtered page of a company's appointments
func (f *AppointmentFlowImpl) ListAppointments(ctx context.Context, req *dto.ListAppointmentsRequest, metadata *ClientMetadata) (*dto.ListAppointmentsResponse, error) {
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, NewBusinessError("LIST_APPOINTMENTS_FAILED", "Invalid date range", err)
	}

	filter := models.AppointmentFilter{
		CompanyID:       &req.CompanyID,
		Status:          req.Status,
		DepartmentID:    req.DepartmentID,
		AssignedToID:    req.AssignedToID,
		ScheduledAfter:  req.StartDate,
		ScheduledBefore: req.EndDate,
	}

	limit, offset := normalizePagination(req.Page, req.PageSize)

	rows, err := f.appointmentRepo.ByFilter(ctx, filter, "scheduled_at ASC, id ASC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_APPOINTMENTS_FAILED", "Failed to list appointments", err)
	}
	total, err := f.appointmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_APPOINTMENTS_FAILED", "Failed to count appointments", err)
	}

	items := make([]dto.AppointmentItem, 0, len(rows))
	for _, a := range rows {
		items = append(items, f.toAppointmentItem(ctx, a))
	}

	return &dto.ListAppointmentsResponse{
		Message: "Appointments retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

func (f *AppointmentFlowImpl) lockAppointment(ctx context.Context, referenceID string) (*models.Appointment, error) {
	a, err := f.appointmentRepo.ByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAppointmentNotFound
	}
	return f.appointmentRepo.ByIDForUpdate(ctx, a.ID)
}

func (f *AppointmentFlowImpl) validateCreateRequest(req *dto.CreateAppointmentRequest) error {
	if strings.TrimSpace(req.ServiceName) == "" {
		return ErrPurposeRequired
	}
	if req.ScheduledAt.IsZero() {
		return ErrScheduledTimeRequired
	}
	if req.ScheduledAt.Before(utils.UTCNow()) {
		return ErrScheduledTimeInPast
	}
	switch req.Channel {
	case "whatsapp", "web", "walk_in":
	default:
		return ErrInvalidChannel
	}
	if strings.TrimSpace(req.CitizenPhone) == "" {
		return ErrCitizenPhoneInvalid
	}
	return nil
}

func (f *AppointmentFlowImpl) notifyAssignment(appointment *models.Appointment, assignee *models.StaffUser) {
	if f.notifier == nil {
		return
	}
	go func() {
		subject := fmt.Sprintf("Appointment %s assigned to you", appointment.ReferenceID)
		_ = f.notifier.SendEmail(assignee.Email, subject, appointment.Purpose)

		citizen, err := f.citizenRepo.ByID(context.Background(), appointment.CitizenID)
		if err != nil || citizen == nil {
			return
		}
		msg := fmt.Sprintf("Your appointment %s has been assigned to %s.", appointment.ReferenceID, assignee.FullName())
		_ = f.notifier.NotifyCitizen(context.Background(), citizen.Phone, msg)
	}()
}

func (f *AppointmentFlowImpl) notifyStatusChange(appointment *models.Appointment) {
	if f.notifier == nil {
		return
	}
	go func() {
		citizen, err := f.citizenRepo.ByID(context.Background(), appointment.CitizenID)
		if err != nil || citizen == nil {
			return
		}
		msg := fmt.Sprintf("Update on appointment %s: status is now %s.", appointment.ReferenceID, appointment.Status)
		_ = f.notifier.NotifyCitizen(context.Background(), citizen.Phone, msg)
	}()
}

func (f *AppointmentFlowImpl) toAppointmentItem(ctx context.Context, a *models.Appointment) dto.AppointmentItem {
	item := dto.AppointmentItem{
		ID:          a.ID,
		UUID:        a.UUID.String(),
		ReferenceID: a.ReferenceID,
		ServiceName: a.Purpose,
		Status:      a.Status,
		ScheduledAt: a.ScheduledAt.Format(time.RFC3339),
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if a.Citizen != nil {
		item.CitizenPhone = a.Citizen.Phone
		item.CitizenName = a.Citizen.Name
	} else if citizen, err := f.citizenRepo.ByID(ctx, a.CitizenID); err == nil && citizen != nil {
		item.CitizenPhone = citizen.Phone
		item.CitizenName = citizen.Name
	}
	if a.Department != nil {
		item.DepartmentName = &a.Department.Name
	}
	if a.AssignedTo != nil {
		item.AssigneeName = utils.ToPtr(a.AssignedTo.FullName())
	}
	return item
}
