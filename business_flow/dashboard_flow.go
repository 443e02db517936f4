package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/repository"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/redis/go-redis/v9"
)

// DashboardFlow serves aggregate counters for the admin dashboard
type DashboardFlow interface {
	GetStats(ctx context.Context, companyID uint) (*dto.DashboardStatsResponse, error)
}

// DashboardFlowImpl implements DashboardFlow. Stats are cached in redis
// for a short window; the dashboard tolerates slightly stale counters in
// exchange for not hammering the aggregate queries on every page load.
type DashboardFlowImpl struct {
	grievanceRepo   repository.GrievanceRepository
	appointmentRepo repository.AppointmentRepository
	companyRepo     repository.CompanyRepository
	rc              *redis.Client
	cachePrefix     string
}

// NewDashboardFlow creates a new dashboard flow instance. rc may be nil,
// in which case every request computes fresh stats.
func NewDashboardFlow(
	grievanceRepo repository.GrievanceRepository,
	appointmentRepo repository.AppointmentRepository,
	companyRepo repository.CompanyRepository,
	rc *redis.Client,
	cachePrefix string,
) DashboardFlow {
	return &DashboardFlowImpl{
		grievanceRepo:   grievanceRepo,
		appointmentRepo: appointmentRepo,
		companyRepo:     companyRepo,
		rc:              rc,
		cachePrefix:     cachePrefix,
	}
}

type cachedStats struct {
	GrievancesByStatus   map[string]int64 `json:"grievances_by_status"`
	AppointmentsByStatus map[string]int64 `json:"appointments_by_status"`
	TotalGrievances      int64            `json:"total_grievances"`
	TotalAppointments    int64            `json:"total_appointments"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

// GetStats returns per-status grievance and appointment counts for the
// company, served from cache when a fresh enough snapshot exists.
func (f *DashboardFlowImpl) GetStats(ctx context.Context, companyID uint) (*dto.DashboardStatsResponse, error) {
	company, err := getCompany(ctx, f.companyRepo, companyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	key := f.cacheKey(company.ID)

	if f.rc != nil {
		if bs, err := f.rc.Get(ctx, key).Bytes(); err == nil {
			var cached cachedStats
			if err := json.Unmarshal(bs, &cached); err == nil {
				return f.toResponse(&cached, true), nil
			}
		}
	}

	stats, err := f.computeStats(ctx, company.ID)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_STATS_FAILED", "Failed to compute dashboard stats", err)
	}

	if f.rc != nil {
		if bs, err := json.Marshal(stats); err == nil {
			// Cache write failure only costs the next reader a recompute
			_ = f.rc.Set(ctx, key, bs, utils.DashboardStatsCacheTTL).Err()
		}
	}

	return f.toResponse(stats, false), nil
}

func (f *DashboardFlowImpl) computeStats(ctx context.Context, companyID uint) (*cachedStats, error) {
	grievances, err := f.grievanceRepo.CountByStatus(ctx, companyID)
	if err != nil {
		return nil, err
	}
	appointments, err := f.appointmentRepo.CountByStatus(ctx, companyID)
	if err != nil {
		return nil, err
	}

	stats := &cachedStats{
		GrievancesByStatus:   grievances,
		AppointmentsByStatus: appointments,
		GeneratedAt:          utils.UTCNow(),
	}
	for _, n := range grievances {
		stats.TotalGrievances += n
	}
	for _, n := range appointments {
		stats.TotalAppointments += n
	}
	return stats, nil
}

func (f *DashboardFlowImpl) toResponse(stats *cachedStats, cacheHit bool) *dto.DashboardStatsResponse {
	return &dto.DashboardStatsResponse{
		Message:              "Dashboard stats retrieved successfully",
		GrievancesByStatus:   stats.GrievancesByStatus,
		AppointmentsByStatus: stats.AppointmentsByStatus,
		TotalGrievances:      stats.TotalGrievances,
		TotalAppointments:    stats.TotalAppointments,
		GeneratedAt:          stats.GeneratedAt.Format(time.RFC3339),
		CacheHit:             cacheHit,
	}
}

func (f *DashboardFlowImpl) cacheKey(companyID uint) string {
	return fmt.Sprintf("%sdashboard:stats:%d", f.cachePrefix, companyID)
}
