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
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GrievanceFlow defines operations for registering and working grievances
type GrievanceFlow interface {
	CreateGrievance(ctx context.Context, req *dto.CreateGrievanceRequest, metadata *ClientMetadata) (*dto.CreateGrievanceResponse, error)
	AssignGrievance(ctx context.Context, req *dto.AssignGrievanceRequest, metadata *ClientMetadata) (*dto.AssignGrievanceResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateGrievanceStatusRequest, metadata *ClientMetadata) (*dto.UpdateGrievanceStatusResponse, error)
	TransferDepartment(ctx context.Context, req *dto.TransferGrievanceRequest, metadata *ClientMetadata) (*dto.TransferGrievanceResponse, error)
	GetTimeline(ctx context.Context, referenceID string) (*dto.GetTimelineResponse, error)
	ListGrievances(ctx context.Context, req *dto.ListGrievancesRequest, metadata *ClientMetadata) (*dto.ListGrievancesResponse, error)
}

// GrievanceFlowImpl implements GrievanceFlow
type GrievanceFlowImpl struct {
	grievanceRepo  repository.GrievanceRepository
	citizenRepo    repository.CitizenRepository
	companyRepo    repository.CompanyRepository
	departmentRepo repository.DepartmentRepository
	staffRepo      repository.StaffUserRepository
	counterRepo    repository.SequenceCounterRepository
	timelineRepo   repository.TimelineEventRepository
	notifier       services.NotificationService
	db             *gorm.DB
}

// NewGrievanceFlow creates a new grievance flow instance
func NewGrievanceFlow(
	grievanceRepo repository.GrievanceRepository,
	citizenRepo repository.CitizenRepository,
	companyRepo repository.CompanyRepository,
	departmentRepo repository.DepartmentRepository,
	staffRepo repository.StaffUserRepository,
	counterRepo repository.SequenceCounterRepository,
	timelineRepo repository.TimelineEventRepository,
	notifier services.NotificationService,
	db *gorm.DB,
) GrievanceFlow {
	return &GrievanceFlowImpl{
		grievanceRepo:  grievanceRepo,
		citizenRepo:    citizenRepo,
		companyRepo:    companyRepo,
		departmentRepo: departmentRepo,
		staffRepo:      staffRepo,
		counterRepo:    counterRepo,
		timelineRepo:   timelineRepo,
		notifier:       notifier,
		db:             db,
	}
}

const (
	maxSubjectLen     = 120
	maxDescriptionLen = 2000
)

// CreateGrievance registers a grievance, allocating the next sequential
// reference ID and writing the CREATED timeline event in one transaction.
// A rollback releases nothing: the counter increment rolls back with it,
// so reference IDs stay gapless.
func (f *GrievanceFlowImpl) CreateGrievance(ctx context.Context, req *dto.CreateGrievanceRequest, metadata *ClientMetadata) (*dto.CreateGrievanceResponse, error) {
	if err := f.validateCreateRequest(req); err != nil {
		return nil, NewBusinessError("GRIEVANCE_VALIDATION_FAILED", "Grievance validation failed", err)
	}

	company, err := getCompany(ctx, f.companyRepo, req.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	var grievance *models.Grievance
	var citizen *models.Citizen

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		citizen, err = f.citizenRepo.FindOrCreateByPhone(txCtx, company.ID, req.CitizenPhone, req.CitizenName)
		if err != nil {
			return err
		}

		if req.DepartmentID != nil {
			if err := f.checkDepartment(txCtx, company.ID, *req.DepartmentID); err != nil {
				return err
			}
		}

		value, err := f.counterRepo.Next(txCtx, models.CounterGrievance)
		if err != nil {
			return err
		}
		referenceID, err := models.FormatSequentialID(utils.GrievanceIDPrefix, value)
		if err != nil {
			return err
		}

		priority := models.GrievancePriorityMedium
		if req.Priority != nil {
			priority = *req.Priority
		}

		grievance = &models.Grievance{
			ReferenceID:  referenceID,
			CompanyID:    company.ID,
			CitizenID:    citizen.ID,
			Subject:      req.Subject,
			Description:  req.Description,
			Attachments:  pq.StringArray(req.Attachments),
			Priority:     priority,
			Status:       models.GrievanceStatusPending,
			DepartmentID: req.DepartmentID,
		}
		if err := f.grievanceRepo.Save(txCtx, grievance); err != nil {
			return err
		}

		event, err := models.NewTimelineEvent(models.TimelineEntityGrievance, grievance.ID, nil, models.CreatedDetails{Channel: req.Channel})
		if err != nil {
			return err
		}
		return f.timelineRepo.Append(txCtx, event)
	})

	if err != nil {
		return nil, NewBusinessError("GRIEVANCE_CREATION_FAILED", "Grievance creation failed", err)
	}

	// Confirm to the citizen after commit, best effort
	if f.notifier != nil {
		msg := fmt.Sprintf("Your grievance has been registered. Reference: %s. Track it anytime with this number.", grievance.ReferenceID)
		go func() {
			_ = f.notifier.NotifyCitizen(context.Background(), citizen.Phone, msg)
		}()
	}

	return &dto.CreateGrievanceResponse{
		Message:     "Grievance registered successfully",
		ID:          grievance.ID,
		UUID:        grievance.UUID.String(),
		ReferenceID: grievance.ReferenceID,
		Status:      grievance.Status,
		CreatedAt:   grievance.CreatedAt.Format(time.RFC3339),
	}, nil
}

// AssignGrievance assigns the grievance to a staff officer. A PENDING
// grievance moves to ASSIGNED; reassignment of an already assigned
// grievance keeps the current status and only records the new assignee.
func (f *GrievanceFlowImpl) AssignGrievance(ctx context.Context, req *dto.AssignGrievanceRequest, metadata *ClientMetadata) (*dto.AssignGrievanceResponse, error) {
	var grievance *models.Grievance
	var assignee *models.StaffUser

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		grievance, err = f.lockGrievance(txCtx, req.ReferenceID)
		if err != nil {
			return err
		}
		if grievance.IsTerminal() {
			return ErrInvalidStatusTransition
		}

		assignee, err = getStaff(txCtx, f.staffRepo, req.AssigneeID)
		if err != nil {
			if IsStaffNotFound(err) {
				return ErrAssigneeNotFound
			}
			return err
		}
		if assignee.CompanyID != grievance.CompanyID {
			return ErrAssigneeWrongTenant
		}

		updates := map[string]any{"assigned_to_id": assignee.ID}
		newStatus := grievance.Status
		if grievance.Status == models.GrievanceStatusPending {
			newStatus = models.GrievanceStatusAssigned
			updates["status"] = newStatus
		}
		if err := f.grievanceRepo.Update(txCtx, grievance.ID, updates); err != nil {
			return err
		}
		grievance.Status = newStatus

		event, err := models.NewTimelineEvent(models.TimelineEntityGrievance, grievance.ID, &req.PerformedBy, models.AssignedDetails{
			ToUserID:   assignee.ID,
			ToUserName: assignee.FullName(),
		})
		if err != nil {
			return err
		}
		return f.timelineRepo.Append(txCtx, event)
	})

	if err != nil {
		return nil, NewBusinessError("GRIEVANCE_ASSIGNMENT_FAILED", "Grievance assignment failed", err)
	}

	// Assignment is citizen-visible, notify after commit
	f.notifyAssignment(grievance, assignee)

	return &dto.AssignGrievanceResponse{
		Message:     "Grievance assigned successfully",
		ReferenceID: grievance.ReferenceID,
		Status:      grievance.Status,
		AssigneeID:  assignee.ID,
	}, nil
}

// UpdateStatus moves the grievance along its status machine and appends
// the STATUS_UPDATED event.
func (f *GrievanceFlowImpl) UpdateStatus(ctx context.Context, req *dto.UpdateGrievanceStatusRequest, metadata *ClientMetadata) (*dto.UpdateGrievanceStatusResponse, error) {
	if !models.IsValidGrievanceStatus(req.Status) {
		return nil, NewBusinessError("UNKNOWN_STATUS", fmt.Sprintf("Unknown grievance status %q", req.Status), ErrUnknownStatus)
	}

	var grievance *models.Grievance

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		grievance, err = f.lockGrievance(txCtx, req.ReferenceID)
		if err != nil {
			return err
		}

		if !models.CanTransitionGrievance(grievance.Status, req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, grievance.Status, req.Status)
		}

		updates := map[string]any{"status": req.Status}
		if req.Status == models.GrievanceStatusResolved {
			updates["resolved_at"] = utils.UTCNow()
		}
		if err := f.grievanceRepo.Update(txCtx, grievance.ID, updates); err != nil {
			return err
		}
		grievance.Status = req.Status

		event, err := models.NewTimelineEvent(models.TimelineEntityGrievance, grievance.ID, &req.PerformedBy, models.StatusUpdatedDetails{
			ToStatus: req.Status,
			Remarks:  req.Remarks,
		})
		if err != nil {
			return err
		}
		return f.timelineRepo.Append(txCtx, event)
	})

	if err != nil {
		return nil, NewBusinessError("GRIEVANCE_STATUS_UPDATE_FAILED", "Grievance status update failed", err)
	}

	// Status updates are citizen-visible, notify after commit
	f.notifyStatusChange(grievance)

	return &dto.UpdateGrievanceStatusResponse{
		Message:     "Grievance status updated successfully",
		ReferenceID: grievance.ReferenceID,
		Status:      grievance.Status,
	}, nil
}

// TransferDepartment moves the grievance to another department of the
// same company and appends the DEPARTMENT_TRANSFER event. The status and
// assignee are untouched.
func (f *GrievanceFlowImpl) TransferDepartment(ctx context.Context, req *dto.TransferGrievanceRequest, metadata *ClientMetadata) (*dto.TransferGrievanceResponse, error) {
	var grievance *models.Grievance
	var department *models.Department

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		grievance, err = f.lockGrievance(txCtx, req.ReferenceID)
		if err != nil {
			return err
		}
		if grievance.IsTerminal() {
			return ErrInvalidStatusTransition
		}

		department, err = f.departmentRepo.ByID(txCtx, req.DepartmentID)
		if err != nil {
			return err
		}
		if department == nil {
			return ErrDepartmentNotFound
		}
		if department.CompanyID != grievance.CompanyID {
			return ErrDepartmentWrongTenant
		}
		if !utils.IsTrue(department.IsActive) {
			return ErrDepartmentInactive
		}

		if err := f.grievanceRepo.Update(txCtx, grievance.ID, map[string]any{"department_id": department.ID}); err != nil {
			return err
		}

		event, err := models.NewTimelineEvent(models.TimelineEntityGrievance, grievance.ID, &req.PerformedBy, models.TransferDetails{
			ToDepartmentID:   department.ID,
			ToDepartmentName: department.Name,
		})
		if err != nil {
			return err
		}
		return f.timelineRepo.Append(txCtx, event)
	})

	if err != nil {
		return nil, NewBusinessError("GRIEVANCE_TRANSFER_FAILED", "Grievance transfer failed", err)
	}

	return &dto.TransferGrievanceResponse{
		Message:      "Grievance transferred successfully",
		ReferenceID:  grievance.ReferenceID,
		DepartmentID: department.ID,
	}, nil
}

// GetTimeline returns the grievance's full event history in insertion order
func (f *GrievanceFlowImpl) GetTimeline(ctx context.Context, referenceID string) (*dto.GetTimelineResponse, error) {
	grievance, err := f.grievanceRepo.ByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, NewBusinessError("GRIEVANCE_LOOKUP_FAILED", "Failed to lookup grievance", err)
	}
	if grievance == nil {
		return nil, NewBusinessError("GRIEVANCE_NOT_FOUND", "Grievance not found", ErrGrievanceNotFound)
	}

	events, err := f.timelineRepo.ListByEntity(ctx, models.TimelineEntityGrievance, grievance.ID)
	if err != nil {
		return nil, NewBusinessError("TIMELINE_LOOKUP_FAILED", "Failed to load timeline", err)
	}

	items := make([]dto.TimelineEventDTO, 0, len(events))
	for _, e := range events {
		items = append(items, ToTimelineEventDTO(*e))
	}

	return &dto.GetTimelineResponse{
		Message:     "Timeline retrieved successfully",
		EntityType:  models.TimelineEntityGrievance,
		ReferenceID: grievance.ReferenceID,
		Events:      items,
	}, nil
}

// ListGrievances returns a filtered page of a company's grievances
func (f *GrievanceFlowImpl) ListGrievances(ctx context.Context, req *dto.ListGrievancesRequest, metadata *ClientMetadata) (*dto.ListGrievancesResponse, error) {
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, NewBusinessError("LIST_GRIEVANCES_FAILED", "Invalid date range", err)
	}

	filter := models.GrievanceFilter{
		CompanyID:     &req.CompanyID,
		Status:        req.Status,
		Priority:      req.Priority,
		DepartmentID:  req.DepartmentID,
		AssignedToID:  req.AssignedToID,
		CreatedAfter:  req.StartDate,
		CreatedBefore: req.EndDate,
	}

	limit, offset := normalizePagination(req.Page, req.PageSize)

	rows, err := f.grievanceRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_GRIEVANCES_FAILED", "Failed to list grievances", err)
	}
	total, err := f.grievanceRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_GRIEVANCES_FAILED", "Failed to count grievances", err)
	}

	items := make([]dto.GrievanceItem, 0, len(rows))
	for _, g := range rows {
		items = append(items, f.toGrievanceItem(ctx, g))
	}

	return &dto.ListGrievancesResponse{
		Message: "Grievances retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

// lockGrievance loads the grievance by reference ID and re-reads it under
// a row lock inside the current transaction, so concurrent mutations of
// the same grievance serialize instead of clobbering each other.
func (f *GrievanceFlowImpl) lockGrievance(ctx context.Context, referenceID string) (*models.Grievance, error) {
	g, err := f.grievanceRepo.ByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGrievanceNotFound
	}
	return f.grievanceRepo.ByIDForUpdate(ctx, g.ID)
}

func (f *GrievanceFlowImpl) checkDepartment(ctx context.Context, companyID, departmentID uint) error {
	department, err := f.departmentRepo.ByID(ctx, departmentID)
	if err != nil {
		return err
	}
	if department == nil {
		return ErrDepartmentNotFound
	}
	if department.CompanyID != companyID {
		return ErrDepartmentWrongTenant
	}
	if !utils.IsTrue(department.IsActive) {
		return ErrDepartmentInactive
	}
	return nil
}

func (f *GrievanceFlowImpl) validateCreateRequest(req *dto.CreateGrievanceRequest) error {
	if strings.TrimSpace(req.Subject) == "" || len([]rune(req.Subject)) > maxSubjectLen {
		return ErrGrievanceSubjectRequired
	}
	if strings.TrimSpace(req.Description) == "" || len([]rune(req.Description)) > maxDescriptionLen {
		return ErrGrievanceContentRequired
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

func (f *GrievanceFlowImpl) notifyAssignment(grievance *models.Grievance, assignee *models.StaffUser) {
	if f.notifier == nil {
		return
	}
	go func() {
		subject := fmt.Sprintf("Grievance %s assigned to you", grievance.ReferenceID)
		_ = f.notifier.SendEmail(assignee.Email, subject, grievance.Subject)

		citizen, err := f.citizenRepo.ByID(context.Background(), grievance.CitizenID)
		if err != nil || citizen == nil {
			return
		}
		msg := fmt.Sprintf("Your grievance %s has been assigned to %s.", grievance.ReferenceID, assignee.FullName())
		_ = f.notifier.NotifyCitizen(context.Background(), citizen.Phone, msg)
	}()
}

func (f *GrievanceFlowImpl) notifyStatusChange(grievance *models.Grievance) {
	if f.notifier == nil {
		return
	}
	go func() {
		citizen, err := f.citizenRepo.ByID(context.Background(), grievance.CitizenID)
		if err != nil || citizen == nil {
			return
		}
		msg := fmt.Sprintf("Update on grievance %s: status is now %s.", grievance.ReferenceID, grievance.Status)
		_ = f.notifier.NotifyCitizen(context.Background(), citizen.Phone, msg)
	}()
}

func (f *GrievanceFlowImpl) toGrievanceItem(ctx context.Context, g *models.Grievance) dto.GrievanceItem {
	item := dto.GrievanceItem{
		ID:          g.ID,
		UUID:        g.UUID.String(),
		ReferenceID: g.ReferenceID,
		Subject:     g.Subject,
		Description: g.Description,
		Status:      g.Status,
		Priority:    g.Priority,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
	if g.ResolvedAt != nil {
		item.ResolvedAt = utils.ToPtr(g.ResolvedAt.Format(time.RFC3339))
	}
	if g.Citizen != nil {
		item.CitizenPhone = g.Citizen.Phone
		item.CitizenName = g.Citizen.Name
	} else if citizen, err := f.citizenRepo.ByID(ctx, g.CitizenID); err == nil && citizen != nil {
		item.CitizenPhone = citizen.Phone
		item.CitizenName = citizen.Name
	}
	if g.Department != nil {
		item.DepartmentName = &g.Department.Name
	}
	if g.AssignedTo != nil {
		item.AssigneeName = utils.ToPtr(g.AssignedTo.FullName())
	}
	return item
}
