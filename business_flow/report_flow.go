package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/xuri/excelize/v2"
)

// ReportFlow builds downloadable reports for the admin console
type ReportFlow interface {
	// ExportGrievances returns the filename and xlsx bytes of a grievance
	// report matching the request's filters.
	ExportGrievances(ctx context.Context, req *dto.ExportGrievancesRequest, metadata *ClientMetadata) (string, []byte, error)
}

// ReportFlowImpl implements ReportFlow
type ReportFlowImpl struct {
	grievanceRepo repository.GrievanceRepository
	citizenRepo   repository.CitizenRepository
	companyRepo   repository.CompanyRepository
	staffRepo     repository.StaffUserRepository
	auditRepo     repository.AuditLogRepository
}

// NewReportFlow creates a new report flow instance
func NewReportFlow(
	grievanceRepo repository.GrievanceRepository,
	citizenRepo repository.CitizenRepository,
	companyRepo repository.CompanyRepository,
	staffRepo repository.StaffUserRepository,
	auditRepo repository.AuditLogRepository,
) ReportFlow {
	return &ReportFlowImpl{
		grievanceRepo: grievanceRepo,
		citizenRepo:   citizenRepo,
		companyRepo:   companyRepo,
		staffRepo:     staffRepo,
		auditRepo:     auditRepo,
	}
}

// export is capped so a runaway filter cannot build a workbook of the
// whole table in memory
const exportRowCap = 10000

// ExportGrievances builds an xlsx workbook of the company's grievances
// matching the filters, one row per grievance.
func (f *ReportFlowImpl) ExportGrievances(ctx context.Context, req *dto.ExportGrievancesRequest, metadata *ClientMetadata) (string, []byte, error) {
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return "", nil, NewBusinessError("REPORT_VALIDATION_FAILED", "Invalid date range", err)
	}

	company, err := getCompany(ctx, f.companyRepo, req.CompanyID)
	if err != nil {
		return "", nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	filter := models.GrievanceFilter{
		CompanyID:     &company.ID,
		Status:        req.Status,
		CreatedAfter:  req.StartDate,
		CreatedBefore: req.EndDate,
	}

	rows, err := f.grievanceRepo.ByFilter(ctx, filter, "created_at ASC, id ASC", exportRowCap, 0)
	if err != nil {
		return "", nil, NewBusinessError("REPORT_QUERY_FAILED", "Failed to query grievances for export", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Grievances"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"reference_id", "subject", "status", "priority", "citizen_phone", "citizen_name", "department", "assignee", "created_at", "resolved_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, g := range rows {
		citizenPhone := ""
		citizenName := ""
		if g.Citizen != nil {
			citizenPhone = g.Citizen.Phone
			if g.Citizen.Name != nil {
				citizenName = *g.Citizen.Name
			}
		}
		department := ""
		if g.Department != nil {
			department = g.Department.Name
		}
		assignee := ""
		if g.AssignedTo != nil {
			assignee = g.AssignedTo.FullName()
		}
		resolvedAt := ""
		if g.ResolvedAt != nil {
			resolvedAt = g.ResolvedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			g.ReferenceID,
			g.Subject,
			g.Status,
			g.Priority,
			citizenPhone,
			citizenName,
			department,
			assignee,
			g.CreatedAt.UTC().Format(time.RFC3339),
			resolvedAt,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	f.auditExport(ctx, req.PerformedBy, len(rows), metadata)

	filename := fmt.Sprintf("grievances_%s_%s.xlsx", company.Slug, utils.UTCNow().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

// auditExport records the export in the audit trail, best effort
func (f *ReportFlowImpl) auditExport(ctx context.Context, performedBy uint, rowCount int, metadata *ClientMetadata) {
	description := "Grievance report exported, " + strconv.Itoa(rowCount) + " rows"

	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		StaffUserID: &performedBy,
		Action:      models.AuditActionReportExported,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		audit.RequestID = &requestID
	}
	_ = f.auditRepo.Save(ctx, audit)
}
