// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	businessflow "github.com/civicmitra/seva-backend/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdminHandlerInterface defines the contract for tenant administration handlers
type AdminHandlerInterface interface {
	CreateDepartment(c fiber.Ctx) error
	ListDepartments(c fiber.Ctx) error
	CreateStaff(c fiber.Ctx) error
	ListStaff(c fiber.Ctx) error
	DisableStaff(c fiber.Ctx) error
	DashboardStats(c fiber.Ctx) error
	ExportGrievances(c fiber.Ctx) error
}

// AdminHandler handles department, staff and dashboard HTTP requests
type AdminHandler struct {
	adminFlow     businessflow.AdminFlow
	dashboardFlow businessflow.DashboardFlow
	reportFlow    businessflow.ReportFlow
	validator     *validator.Validate
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminFlow businessflow.AdminFlow, dashboardFlow businessflow.DashboardFlow, reportFlow businessflow.ReportFlow) *AdminHandler {
	return &AdminHandler{
		adminFlow:     adminFlow,
		dashboardFlow: dashboardFlow,
		reportFlow:    reportFlow,
		validator:     validator.New(),
	}
}

func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create Department
// @Description Create a department inside the authenticated staff user's company
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateDepartmentRequest true "Department details"
// @Success 201 {object} dto.APIResponse{data=dto.CreateDepartmentResponse} "Department created"
// @Failure 400 {object} dto.APIResponse "Validation error or duplicate name"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/departments [post]
// @Security BearerAuth
func (h *AdminHandler) CreateDepartment(c fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}
	req.CompanyID = companyID

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", formatValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.adminFlow.CreateDepartment(h.createRequestContext(c, "/api/v1/admin/departments"), &req, metadata)
	if err != nil {
		if businessflow.IsDepartmentNameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Department name already exists", "DEPARTMENT_NAME_TAKEN", nil)
		}
		if businessflow.IsStaffNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Head user not found", "HEAD_USER_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create department", "DEPARTMENT_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Department created successfully", result)
}

// List Departments
// @Description List the company's departments, active first
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListDepartmentsResponse} "Departments retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/departments [get]
// @Security BearerAuth
func (h *AdminHandler) ListDepartments(c fiber.Ctx) error {
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}

	result, err := h.adminFlow.ListDepartments(h.createRequestContext(c, "/api/v1/admin/departments"), companyID)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list departments", "LIST_DEPARTMENTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Departments retrieved successfully", result)
}

// Create Staff
// @Description Create a staff account in the company. Requires an admin or super admin role.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateStaffRequest true "Staff details"
// @Success 201 {object} dto.APIResponse{data=dto.CreateStaffResponse} "Staff created"
// @Failure 400 {object} dto.APIResponse "Validation error or duplicate email"
// @Failure 403 {object} dto.APIResponse "Insufficient role"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/staff [post]
// @Security BearerAuth
func (h *AdminHandler) CreateStaff(c fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}
	staffID, ok := c.Locals("staff_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Staff ID not found in context", "MISSING_STAFF_ID", nil)
	}
	req.CompanyID = companyID
	req.CreatedBy = staffID

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", formatValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.adminFlow.CreateStaff(h.createRequestContext(c, "/api/v1/admin/staff"), &req, metadata)
	if err != nil {
		if businessflow.IsEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Email already registered", "EMAIL_ALREADY_EXISTS", nil)
		}
		if businessflow.IsNotAuthorized(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Not authorized to manage staff", "NOT_AUTHORIZED", nil)
		}
		if businessflow.IsDepartmentNotFound(err) || businessflow.IsDepartmentWrongTenant(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid department", "INVALID_DEPARTMENT", nil)
		}
		if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "NOT_AUTHORIZED" {
			return h.ErrorResponse(c, fiber.StatusForbidden, be.Message, be.Code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create staff account", "STAFF_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Staff account created successfully", result)
}

// List Staff
// @Description List the company's staff accounts with filters and pagination
// @Tags Admin
// @Produce json
// @Param role query string false "Filter by role"
// @Param department_id query int false "Filter by department"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListStaffResponse} "Staff retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/staff [get]
// @Security BearerAuth
func (h *AdminHandler) ListStaff(c fiber.Ctx) error {
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}

	req := dto.ListStaffRequest{
		CompanyID: companyID,
		Role:      queryString(c, "role"),
		Page:      queryUint(c, "page"),
		PageSize:  queryUint(c, "page_size"),
	}
	if id := queryUint(c, "department_id"); id > 0 {
		req.DepartmentID = &id
	}

	result, err := h.adminFlow.ListStaff(h.createRequestContext(c, "/api/v1/admin/staff"), &req)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list staff", "LIST_STAFF_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Staff retrieved successfully", result)
}

// Disable Staff
// @Description Deactivate a staff account and expire all of its sessions
// @Tags Admin
// @Produce json
// @Param id path int true "Staff user ID"
// @Success 200 {object} dto.APIResponse{data=dto.DisableStaffResponse} "Staff disabled"
// @Failure 403 {object} dto.APIResponse "Insufficient role"
// @Failure 404 {object} dto.APIResponse "Staff not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/staff/{id}/disable [post]
// @Security BearerAuth
func (h *AdminHandler) DisableStaff(c fiber.Ctx) error {
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}
	staffID, ok := c.Locals("staff_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Staff ID not found in context", "MISSING_STAFF_ID", nil)
	}

	targetID := paramUint(c, "id")
	if targetID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid staff ID", "INVALID_STAFF_ID", nil)
	}

	req := dto.DisableStaffRequest{
		CompanyID:   companyID,
		StaffID:     targetID,
		PerformedBy: staffID,
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.adminFlow.DisableStaff(h.createRequestContext(c, "/api/v1/admin/staff/disable"), &req, metadata)
	if err != nil {
		if businessflow.IsStaffNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Staff not found", "STAFF_NOT_FOUND", nil)
		}
		if businessflow.IsNotAuthorized(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Not authorized to manage staff", "NOT_AUTHORIZED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to disable staff account", "STAFF_DISABLE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Staff account disabled successfully", result)
}

// Dashboard Stats
// @Description Aggregate grievance and appointment counters for the company, cached for a short window
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStatsResponse} "Stats retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/dashboard/stats [get]
// @Security BearerAuth
func (h *AdminHandler) DashboardStats(c fiber.Ctx) error {
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}

	result, err := h.dashboardFlow.GetStats(h.createRequestContext(c, "/api/v1/admin/dashboard/stats"), companyID)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load dashboard stats", "DASHBOARD_STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard stats retrieved successfully", result)
}

// Export Grievances
// @Description Download an xlsx report of the company's grievances matching the filters
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status"
// @Param start_date query string false "Created-at lower bound (RFC3339)"
// @Param end_date query string false "Created-at upper bound (RFC3339)"
// @Success 200 {file} binary "xlsx report"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/reports/grievances [get]
// @Security BearerAuth
func (h *AdminHandler) ExportGrievances(c fiber.Ctx) error {
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}
	staffID, ok := c.Locals("staff_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Staff ID not found in context", "MISSING_STAFF_ID", nil)
	}

	req := dto.ExportGrievancesRequest{
		CompanyID:   companyID,
		PerformedBy: staffID,
		Status:      queryString(c, "status"),
	}
	if t, err := queryTime(c, "start_date"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid start_date", "INVALID_DATE", err.Error())
	} else {
		req.StartDate = t
	}
	if t, err := queryTime(c, "end_date"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid end_date", "INVALID_DATE", err.Error())
	} else {
		req.EndDate = t
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	filename, data, err := h.reportFlow.ExportGrievances(h.createRequestContext(c, "/api/v1/admin/reports/grievances"), &req, metadata)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "start_date must not be after end_date", "INVALID_DATE_RANGE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export grievances", "REPORT_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *AdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return newRequestContext(c, endpoint, 30*time.Second)
}

func paramUint(c fiber.Ctx, key string) uint {
	v, err := strconv.ParseUint(c.Params(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
