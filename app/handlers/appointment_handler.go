// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/app/middleware"
	businessflow "github.com/civicmitra/seva-backend/business_flow"
	"github.com/civicmitra/seva-backend/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AppointmentHandlerInterface defines the contract for appointment handlers
type AppointmentHandlerInterface interface {
	Create(c fiber.Ctx) error
	Assign(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Timeline(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// AppointmentHandler handles appointment-related HTTP requests
type AppointmentHandler struct {
	flow      businessflow.AppointmentFlow
	validator *validator.Validate
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(flow businessflow.AppointmentFlow) *AppointmentHandler {
	return &AppointmentHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *AppointmentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AppointmentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Book Appointment
// @Description Book a citizen appointment. A sequential APT reference ID is allocated and the CREATED timeline event is written atomically.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Appointment details"
// @Success 201 {object} dto.APIResponse{data=dto.CreateAppointmentResponse} "Appointment booked"
// @Failure 400 {object} dto.APIResponse "Validation error or past schedule time"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/appointments [post]
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	var req dto.CreateAppointmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", formatValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateAppointment(h.createRequestContext(c, "/api/v1/appointments"), &req, metadata)
	if err != nil {
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "APPOINTMENT_VALIDATION_FAILED" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid appointment", be.Code, be.Error())
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to book appointment", "APPOINTMENT_CREATION_FAILED", nil)
	}

	middleware.ObserveTimelineEvent(models.TimelineEntityAppointment, models.TimelineActionCreated)
	return h.SuccessResponse(c, fiber.StatusCreated, "Appointment booked successfully", result)
}

// Assign Appointment
// @Description Assign an appointment to a staff officer
// @Tags Appointments
// @Accept json
// @Produce json
// @Param reference_id path string true "Appointment reference ID (APT########)"
// @Param request body dto.AssignAppointmentRequest true "Assignee"
// @Success 200 {object} dto.APIResponse{data=dto.AssignAppointmentResponse} "Appointment assigned"
// @Failure 400 {object} dto.APIResponse "Validation error or terminal appointment"
// @Failure 404 {object} dto.APIResponse "Appointment or assignee not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/appointments/{reference_id}/assign [post]
// @Security BearerAuth
func (h *AppointmentHandler) Assign(c fiber.Ctx) error {
	var req dto.AssignAppointmentRequest
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
	result, err := h.flow.AssignAppointment(h.createRequestContext(c, "/api/v1/admin/appointments/assign"), &req, metadata)
	if err != nil {
		return h.appointmentMutationError(c, err, "APPOINTMENT_ASSIGNMENT_FAILED", "Failed to assign appointment")
	}

	middleware.ObserveTimelineEvent(models.TimelineEntityAppointment, models.TimelineActionAssigned)
	return h.SuccessResponse(c, fiber.StatusOK, "Appointment assigned successfully", result)
}

// Update Appointment Status
// @Description Move an appointment along its status machine and record the STATUS_UPDATED event
// @Tags Appointments
// @Accept json
// @Produce json
// @Param reference_id path string true "Appointment reference ID (APT########)"
// @Param request body dto.UpdateAppointmentStatusRequest true "Target status and remarks"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateAppointmentStatusResponse} "Status updated"
// @Failure 400 {object} dto.APIResponse "Invalid transition"
// @Failure 404 {object} dto.APIResponse "Appointment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/appointments/{reference_id}/status [patch]
// @Security BearerAuth
func (h *AppointmentHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.UpdateAppointmentStatusRequest
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
	result, err := h.flow.UpdateStatus(h.createRequestContext(c, "/api/v1/admin/appointments/status"), &req, metadata)
	if err != nil {
		return h.appointmentMutationError(c, err, "APPOINTMENT_STATUS_UPDATE_FAILED", "Failed to update appointment status")
	}

	middleware.ObserveTimelineEvent(models.TimelineEntityAppointment, models.TimelineActionStatusUpdated)
	return h.SuccessResponse(c, fiber.StatusOK, "Appointment status updated successfully", result)
}

// Appointment Timeline
// @Description Retrieve the appointment's full event history in insertion order
// @Tags Appointments
// @Produce json
// @Param reference_id path string true "Appointment reference ID (APT########)"
// @Success 200 {object} dto.APIResponse{data=dto.GetTimelineResponse} "Timeline retrieved"
// @Failure 404 {object} dto.APIResponse "Appointment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/appointments/{reference_id}/timeline [get]
func (h *AppointmentHandler) Timeline(c fiber.Ctx) error {
	referenceID := c.Params("reference_id")
	if !models.IsSequentialID(referenceID) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reference ID", "INVALID_REFERENCE_ID", nil)
	}

	result, err := h.flow.GetTimeline(h.createRequestContext(c, "/api/v1/appointments/timeline"), referenceID)
	if err != nil {
		if businessflow.IsAppointmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Appointment not found", "APPOINTMENT_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load timeline", "TIMELINE_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Timeline retrieved successfully", result)
}

// List Appointments
// @Description List the company's appointments with filters and pagination, soonest first
// @Tags Appointments
// @Produce json
// @Param status query string false "Filter by status"
// @Param department_id query int false "Filter by department"
// @Param assigned_to_id query int false "Filter by assignee"
// @Param start_date query string false "Scheduled-at lower bound (RFC3339)"
// @Param end_date query string false "Scheduled-at upper bound (RFC3339)"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListAppointmentsResponse} "Appointments retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/appointments [get]
// @Security BearerAuth
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}

	req := dto.ListAppointmentsRequest{
		CompanyID: companyID,
		Status:    queryString(c, "status"),
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
	result, err := h.flow.ListAppointments(h.createRequestContext(c, "/api/v1/admin/appointments"), &req, metadata)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "start_date must not be after end_date", "INVALID_DATE_RANGE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list appointments", "LIST_APPOINTMENTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Appointments retrieved successfully", result)
}

// appointmentMutationError maps mutation flow errors to HTTP responses
func (h *AppointmentHandler) appointmentMutationError(c fiber.Ctx, err error, fallbackCode, fallbackMsg string) error {
	switch {
	case businessflow.IsAppointmentNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Appointment not found", "APPOINTMENT_NOT_FOUND", nil)
	case businessflow.IsAssigneeNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Assignee not found", "ASSIGNEE_NOT_FOUND", nil)
	case businessflow.IsAssigneeWrongTenant(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignee belongs to a different company", "ASSIGNEE_WRONG_TENANT", nil)
	case businessflow.IsInvalidStatusTransition(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Status transition not allowed", "INVALID_STATUS_TRANSITION", err.Error())
	case businessflow.IsUnknownStatus(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown status", "UNKNOWN_STATUS", nil)
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMsg, fallbackCode, nil)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *AppointmentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return newRequestContext(c, endpoint, 30*time.Second)
}
