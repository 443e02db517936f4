package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	"github.com/civicmitra/seva-backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminFlow defines tenant administration operations for departments and
// staff accounts
type AdminFlow interface {
	CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest, metadata *ClientMetadata) (*dto.CreateDepartmentResponse, error)
	ListDepartments(ctx context.Context, companyID uint) (*dto.ListDepartmentsResponse, error)
	CreateStaff(ctx context.Context, req *dto.CreateStaffRequest, metadata *ClientMetadata) (*dto.CreateStaffResponse, error)
	ListStaff(ctx context.Context, req *dto.ListStaffRequest) (*dto.ListStaffResponse, error)
	DisableStaff(ctx context.Context, req *dto.DisableStaffRequest, metadata *ClientMetadata) (*dto.DisableStaffResponse, error)
}

// AdminFlowImpl implements AdminFlow
type AdminFlowImpl struct {
	companyRepo    repository.CompanyRepository
	departmentRepo repository.DepartmentRepository
	staffRepo      repository.StaffUserRepository
	sessionRepo    repository.StaffSessionRepository
	auditRepo      repository.AuditLogRepository
	bcryptCost     int
	db             *gorm.DB
}

// NewAdminFlow creates a new admin flow instance
func NewAdminFlow(
	companyRepo repository.CompanyRepository,
	departmentRepo repository.DepartmentRepository,
	staffRepo repository.StaffUserRepository,
	sessionRepo repository.StaffSessionRepository,
	auditRepo repository.AuditLogRepository,
	bcryptCost int,
	db *gorm.DB,
) AdminFlow {
	return &AdminFlowImpl{
		companyRepo:    companyRepo,
		departmentRepo: departmentRepo,
		staffRepo:      staffRepo,
		sessionRepo:    sessionRepo,
		auditRepo:      auditRepo,
		bcryptCost:     bcryptCost,
		db:             db,
	}
}

// CreateDepartment creates a department inside the company. Names are
// unique per company, case-insensitively.
func (f *AdminFlowImpl) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest, metadata *ClientMetadata) (*dto.CreateDepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewBusinessError("DEPARTMENT_VALIDATION_FAILED", "Department name is required", ErrDepartmentNameTaken)
	}

	company, err := getCompany(ctx, f.companyRepo, req.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	var department *models.Department

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.departmentRepo.ByCompanyAndName(txCtx, company.ID, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDepartmentNameTaken
		}

		if req.HeadUserID != nil {
			head, err := getStaff(txCtx, f.staffRepo, *req.HeadUserID)
			if err != nil {
				return err
			}
			if head.CompanyID != company.ID {
				return ErrAssigneeWrongTenant
			}
		}

		department = &models.Department{
			CompanyID:   company.ID,
			Name:        name,
			Description: req.Description,
			HeadUserID:  req.HeadUserID,
			IsActive:    utils.ToPtr(true),
		}
		return f.departmentRepo.Save(txCtx, department)
	})

	if err != nil {
		return nil, NewBusinessError("DEPARTMENT_CREATION_FAILED", "Department creation failed", err)
	}

	_ = f.createAuditLog(ctx, nil, models.AuditActionDeptCreated, "Department created: "+department.Name, true, nil, metadata)

	return &dto.CreateDepartmentResponse{
		Message:    "Department created successfully",
		Department: toDepartmentDTO(department),
	}, nil
}

// ListDepartments returns all departments of the company, active first
func (f *AdminFlowImpl) ListDepartments(ctx context.Context, companyID uint) (*dto.ListDepartmentsResponse, error) {
	company, err := getCompany(ctx, f.companyRepo, companyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	rows, err := f.departmentRepo.ByFilter(ctx, models.DepartmentFilter{CompanyID: &company.ID}, "is_active DESC, name ASC", 500, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_DEPARTMENTS_FAILED", "Failed to list departments", err)
	}

	items := make([]dto.DepartmentDTO, 0, len(rows))
	for _, d := range rows {
		items = append(items, toDepartmentDTO(d))
	}

	return &dto.ListDepartmentsResponse{
		Message: "Departments retrieved successfully",
		Items:   items,
	}, nil
}

// CreateStaff creates a staff account with a bcrypt password hash.
// Emails are unique across the system and stored lowercased.
func (f *AdminFlowImpl) CreateStaff(ctx context.Context, req *dto.CreateStaffRequest, metadata *ClientMetadata) (*dto.CreateStaffResponse, error) {
	if !models.IsValidStaffRole(req.Role) {
		return nil, NewBusinessError("STAFF_VALIDATION_FAILED", "Unknown staff role", ErrNotAuthorized)
	}

	company, err := getCompany(ctx, f.companyRepo, req.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	creator, err := getStaff(ctx, f.staffRepo, req.CreatedBy)
	if err != nil {
		return nil, NewBusinessError("STAFF_LOOKUP_FAILED", "Failed to lookup creating staff", err)
	}
	if !creator.CanManageStaff() || creator.CompanyID != company.ID {
		return nil, NewBusinessError("NOT_AUTHORIZED", "Not authorized to manage staff", ErrNotAuthorized)
	}
	// Only a super admin may mint another super admin
	if req.Role == models.RoleSuperAdmin && creator.Role != models.RoleSuperAdmin {
		return nil, NewBusinessError("NOT_AUTHORIZED", "Not authorized to create super admins", ErrNotAuthorized)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var staff *models.StaffUser

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.staffRepo.ByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
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
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), f.bcryptCost)
		if err != nil {
			return err
		}

		staff = &models.StaffUser{
			CompanyID:    company.ID,
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Role:         req.Role,
			DepartmentID: req.DepartmentID,
			IsActive:     utils.ToPtr(true),
		}
		return f.staffRepo.Save(txCtx, staff)
	})

	if err != nil {
		return nil, NewBusinessError("STAFF_CREATION_FAILED", "Staff creation failed", err)
	}

	_ = f.createAuditLog(ctx, creator, models.AuditActionStaffCreated, "Staff account created: "+staff.Email, true, nil, metadata)

	return &dto.CreateStaffResponse{
		Message: "Staff account created successfully",
		Staff:   ToStaffDTO(*staff),
	}, nil
}

// ListStaff returns a filtered page of the company's staff accounts
func (f *AdminFlowImpl) ListStaff(ctx context.Context, req *dto.ListStaffRequest) (*dto.ListStaffResponse, error) {
	filter := models.StaffUserFilter{
		CompanyID:    &req.CompanyID,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		IsActive:     req.IsActive,
	}

	limit, offset := normalizePagination(req.Page, req.PageSize)

	rows, err := f.staffRepo.ByFilter(ctx, filter, "created_at ASC, id ASC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_STAFF_FAILED", "Failed to list staff", err)
	}

	items := make([]dto.StaffDTO, 0, len(rows))
	for _, s := range rows {
		items = append(items, ToStaffDTO(*s))
	}

	return &dto.ListStaffResponse{
		Message: "Staff retrieved successfully",
		Items:   items,
	}, nil
}

// DisableStaff deactivates the account and expires all of its sessions,
// so the tokens stop working immediately rather than at expiry.
func (f *AdminFlowImpl) DisableStaff(ctx context.Context, req *dto.DisableStaffRequest, metadata *ClientMetadata) (*dto.DisableStaffResponse, error) {
	performer, err := getStaff(ctx, f.staffRepo, req.PerformedBy)
	if err != nil {
		return nil, NewBusinessError("STAFF_LOOKUP_FAILED", "Failed to lookup performing staff", err)
	}
	if !performer.CanManageStaff() || performer.CompanyID != req.CompanyID {
		return nil, NewBusinessError("NOT_AUTHORIZED", "Not authorized to manage staff", ErrNotAuthorized)
	}

	var target *models.StaffUser

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		target, err = f.staffRepo.ByID(txCtx, req.StaffID)
		if err != nil {
			return err
		}
		if target == nil || target.CompanyID != req.CompanyID {
			return ErrStaffNotFound
		}
		if target.ID == performer.ID {
			return ErrNotAuthorized
		}

		if err := f.staffRepo.Update(txCtx, target.ID, map[string]any{"is_active": false}); err != nil {
			return err
		}
		return f.sessionRepo.ExpireAllStaffSessions(txCtx, target.ID)
	})

	if err != nil {
		return nil, NewBusinessError("STAFF_DISABLE_FAILED", "Staff deactivation failed", err)
	}

	_ = f.createAuditLog(ctx, performer, models.AuditActionStaffDisabled, "Staff account disabled: "+target.Email, true, nil, metadata)

	return &dto.DisableStaffResponse{Message: "Staff account disabled successfully"}, nil
}

func toDepartmentDTO(d *models.Department) dto.DepartmentDTO {
	return dto.DepartmentDTO{
		ID:          d.ID,
		UUID:        d.UUID.String(),
		Name:        d.Name,
		Description: d.Description,
		HeadUserID:  d.HeadUserID,
		IsActive:    utils.IsTrue(d.IsActive),
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}

func (f *AdminFlowImpl) createAuditLog(ctx context.Context, staff *models.StaffUser, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var staffID *uint
	if staff != nil {
		staffID = &staff.ID
	}

	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		StaffUserID:  staffID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return f.auditRepo.Save(ctx, audit)
}
