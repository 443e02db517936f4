// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/app/middleware"
	businessflow "github.com/civicmitra/seva-backend/business_flow"
	"github.com/civicmitra/seva-backend/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// GrievanceHandlerInterface defines the contract for grievance handlers
type GrievanceHandlerInterface interface {
	Create(c fiber.Ctx) error
	Assign(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Transfer(c fiber.Ctx) error
	Timeline(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// GrievanceHandler handles grievance-related HTTP requests
type GrievanceHandler struct {
	flow      businessflow.GrievanceFlow
	validator *validator.Validate
}

// NewGrievanceHandler creates a new grievance handler
func NewGrievanceHandler(flow businessflow.GrievanceFlow) *GrievanceHandler {
	return &GrievanceHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *GrievanceHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *GrievanceHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create Grievance
// @Description Register a citizen grievance. A sequential GRV reference ID is allocated and the CREATED timeline event is written atomically.
// @Tags Grievances
// @Accept json
// @Produce json
// @Param request body dto.CreateGrievanceRequest true "Grievance details"
// @Success 201 {object} dto.APIResponse{data=dto.CreateGrievanceResponse} "Grievance registered"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/grievances [post]
func (h *GrievanceHandler) Create(c fiber.Ctx) error {
	var req dto.CreateGrievanceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", formatValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateGrievance(h.createRequestContext(c, "/api/v1/grievances"), &req, metadata)
	if err != nil {
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "GRIEVANCE_VALIDATION_FAILED":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid grievance", be.Code, be.Error())
			case "COMPANY_LOOKUP_FAILED":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", be.Code, nil)
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to register grievance", "GRIEVANCE_CREATION_FAILED", nil)
	}

	middleware.ObserveTimelineEvent(models.TimelineEntityGrievance, models.TimelineActionCreated)
	return h.SuccessResponse(c, fiber.StatusCreated, "Grievance registered successfully", result)
}

// Assign Grievance
// @Description Assign a grievance to a staff officer. A PENDING grievance moves to ASSIGNED.
// @Tags Grievances
// @Accept json
// @Produce json
// @Param reference_id path string true "Grievance reference ID (GRV########)"
// @Param request body dto.AssignGrievanceRequest true "Assignee"
// @Success 200 {object} dto.APIResponse{data=dto.AssignGrievanceResponse} "Grievance assigned"
// @Failure 400 {object} dto.APIResponse "Validation error or terminal grievance"
// @Failure 404 {object} dto.APIResponse "Grievance or assignee not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/grievances/{reference_id}/assign [post]
// @Security BearerAuth
func (h *GrievanceHandler) Assign(c fiber.Ctx) error {
	var req dto.AssignGrievanceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ReferenceID = c.Params("reference_id")

	staffID, ok := c.Locals("staff_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Staff ID not found in context", "MISSING_STAFF_ID", nil)
	}
	req.PerformedBy = staffID

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", formatValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.AssignGrievance(h.createRequestContext(c, "/api/v1/admin/grievances/assign"), &req, metadata)
	if err != nil {
		return h.grievanceMutationError(c, err, "GRIEVANCE_ASSIGNMENT_FAILED", "Failed to assign grievance")
	}

	middleware.ObserveTimelineEvent(models.TimelineEntityGrievance, models.TimelineActionAssigned)
	return h.SuccessResponse(c, fiber.StatusOK, "Grievance assigned successfully", result)
}

// Update Grievance Status
// @Description Move a grievance along its status machine and record the STATUS_UPDATED event
// @Tags Grievances
// @Accept json
// @Produce json
// @Param reference_id path string true "Grievance reference ID (GRV########)"
// @Param request body dto.UpdateGrievanceStatusRequest true "Target status and remarks"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateGrievanceStatusResponse} "Status updated"
// @Failure 400 {object} dto.APIResponse "Invalid transition"
// @Failure 404 {object} dto.APIResponse "Grievance not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/grievances/{reference_id}/status [patch]
// @Security BearerAuth
func (h *GrievanceHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.UpdateGrievanceStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ReferenceID = c.Params("reference_id")

	staffID, ok := c.Locals("staff_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Staff ID not found in context", "MISSING_STAFF_ID", nil)
	}
	req.PerformedBy = staffID

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", formatValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.UpdateStatus(h.createRequestContext(c, "/api/v1/admin/grievances/status"), &req, metadata)
	if err != nil {
		return h.grievanceMutationError(c, err, "GRIEVANCE_STATUS_UPDATE_FAILED", "Failed to update grievance status")
	}

	middleware.ObserveTimelineEvent(models.TimelineEntityGrievance, models.TimelineActionStatusUpdated)
	return h.SuccessResponse(c, fiber.StatusOK, "Grievance status updated successfully", result)
}

// Transfer Grievance
// @Description Move a grievance to another department of the same company and record the DEPARTMENT_TRANSFER event
// @Tags Grievances
// @Accept json
// @Produce json
// @Param reference_id path string true "Grievance reference ID (GRV########)"
// @Param request body dto.TransferGrievanceRequest true "Target department"
// @Success 200 {object} dto.APIResponse{data=dto.TransferGrievanceResponse} "Grievance transferred"
// @Failure 400 {object} dto.APIResponse "Validation error or terminal grievance"
// @Failure 404 {object} dto.APIResponse "Grievance or department not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/grievances/{reference_id}/transfer [post]
// @Security BearerAuth
func (h *GrievanceHandler) Transfer(c fiber.Ctx) error {
	var req dto.TransferGrievanceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ReferenceID = c.Params("reference_id")

	staffID, ok := c.Locals("staff_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Staff ID not found in context", "MISSING_STAFF_ID", nil)
	}
	req.PerformedBy = staffID

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", formatValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.TransferDepartment(h.createRequestContext(c, "/api/v1/admin/grievances/transfer"), &req, metadata)
	if err != nil {
		return h.grievanceMutationError(c, err, "GRIEVANCE_TRANSFER_FAILED", "Failed to transfer grievance")
	}

	middleware.ObserveTimelineEvent(models.TimelineEntityGrievance, models.TimelineActionDepartmentTransfer)
	return h.SuccessResponse(c, fiber.StatusOK, "Grievance transferred successfully", result)
}

// Grievance Timeline
// @Description Retrieve the grievance's full event history in insertion order. Citizens track grievances with this endpoint using the reference number.
// @Tags Grievances
// @Produce json
// @Param reference_id path string true "Grievance reference ID (GRV########)"
// @Success 200 {object} dto.APIResponse{data=dto.GetTimelineResponse} "Timeline retrieved"
// @Failure 404 {object} dto.APIResponse "Grievance not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/grievances/{reference_id}/timeline [get]
func (h *GrievanceHandler) Timeline(c fiber.Ctx) error {
	referenceID := c.Params("reference_id")
	if !models.IsSequentialID(referenceID) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reference ID", "INVALID_REFERENCE_ID", nil)
	}

	result, err := h.flow.GetTimeline(h.createRequestContext(c, "/api/v1/grievances/timeline"), referenceID)
	if err != nil {
		if businessflow.IsGrievanceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Grievance not found", "GRIEVANCE_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load timeline", "TIMELINE_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Timeline retrieved successfully", result)
}

// List Grievances
// @Description List the company's grievances with filters and pagination, newest first
// @Tags Grievances
// @Produce json
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param department_id query int false "Filter by department"
// @Param assigned_to_id query int false "Filter by assignee"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListGrievancesResponse} "Grievances retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/grievances [get]
// @Security BearerAuth
func (h *GrievanceHandler) List(c fiber.Ctx) error {
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}

	req := dto.ListGrievancesRequest{
		CompanyID: companyID,
		Status:    queryString(c, "status"),
		Priority:  queryString(c, "priority"),
		Page:      queryUint(c, "page"),
		PageSize:  queryUint(c, "page_size"),
	}
	if id := queryUint(c, "department_id"); id > 0 {
		req.DepartmentID = &id
	}
	if id := queryUint(c, "assigned_to_id"); id > 0 {
		req.AssignedToID = &id
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
	result, err := h.flow.ListGrievances(h.createRequestContext(c, "/api/v1/admin/grievances"), &req, metadata)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "start_date must not be after end_date", "INVALID_DATE_RANGE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list grievances", "LIST_GRIEVANCES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Grievances retrieved successfully", result)
}

// grievanceMutationError maps mutation flow errors to HTTP responses
func (h *GrievanceHandler) grievanceMutationError(c fiber.Ctx, err error, fallbackCode, fallbackMsg string) error {
	switch {
	case businessflow.IsGrievanceNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Grievance not found", "GRIEVANCE_NOT_FOUND", nil)
	case businessflow.IsAssigneeNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Assignee not found", "ASSIGNEE_NOT_FOUND", nil)
	case businessflow.IsAssigneeWrongTenant(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignee belongs to a different company", "ASSIGNEE_WRONG_TENANT", nil)
	case businessflow.IsDepartmentNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Department not found", "DEPARTMENT_NOT_FOUND", nil)
	case businessflow.IsDepartmentWrongTenant(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Department belongs to a different company", "DEPARTMENT_WRONG_TENANT", nil)
	case businessflow.IsDepartmentInactive(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Department is inactive", "DEPARTMENT_INACTIVE", nil)
	case businessflow.IsInvalidStatusTransition(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Status transition not allowed", "INVALID_STATUS_TRANSITION", err.Error())
	case businessflow.IsUnknownStatus(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown status", "UNKNOWN_STATUS", nil)
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMsg, fallbackCode, nil)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *GrievanceHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return newRequestContext(c, endpoint, 30*time.Second)
}

func queryString(c fiber.Ctx, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

func queryUint(c fiber.Ctx, key string) uint {
	v, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

func queryTime(c fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
