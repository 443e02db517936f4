// Package tests contains test cases for business flows to avoid circular imports
package tests

import (
	"strings"
	"testing"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/app/services"
	businessflow "github.com/civicmitra/seva-backend/business_flow"
	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	testingutil "github.com/civicmitra/seva-backend/testing"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAppointmentFlow(db *gorm.DB) businessflow.AppointmentFlow {
	flow, _ := newAppointmentFlowWithWhatsApp(db)
	return flow
}

func newAppointmentFlowWithWhatsApp(db *gorm.DB) (businessflow.AppointmentFlow, *services.MockWhatsAppService) {
	whatsapp := services.NewMockWhatsAppService()
	notifier := services.NewNotificationService(whatsapp, services.NewMockEmailProvider())
	return businessflow.NewAppointmentFlow(
		repository.NewAppointmentRepository(db),
		repository.NewCitizenRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewDepartmentRepository(db),
		repository.NewStaffUserRepository(db),
		repository.NewSequenceCounterRepository(db),
		repository.NewTimelineEventRepository(db),
		notifier,
		db,
	), whatsapp
}

func TestCreateAppointment(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAppointmentFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		appointmentRepo := repository.NewAppointmentRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		t.Run("FirstAppointmentGetsFirstID", func(t *testing.T) {
			resp, err := flow.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876540001",
				ServiceName:  "Birth certificate collection",
				ScheduledAt:  utils.UTCNow().Add(48 * time.Hour),
				Channel:      "web",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "APT00000001", resp.ReferenceID)
			assert.Equal(t, models.AppointmentStatusPending, resp.Status)
		})

		t.Run("ServiceNameStoredAsPurpose", func(t *testing.T) {
			resp, err := flow.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876540002",
				ServiceName:  "Trade license renewal",
				ScheduledAt:  utils.UTCNow().Add(24 * time.Hour),
				Channel:      "walk_in",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "APT00000002", resp.ReferenceID)

			appointment, err := appointmentRepo.ByReferenceID(ctx, resp.ReferenceID)
			require.NoError(t, err)
			assert.Equal(t, "Trade license renewal", appointment.Purpose)
		})

		t.Run("PastScheduleRejected", func(t *testing.T) {
			_, err := flow.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876540003",
				ServiceName:  "Property tax dispute",
				ScheduledAt:  utils.UTCNow().Add(-1 * time.Hour),
				Channel:      "web",
			}, testMetadata())
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrScheduledTimeInPast)
		})

		t.Run("CountersDoNotInterleave", func(t *testing.T) {
			// A grievance created in between must not advance the
			// appointment sequence
			grievanceFlow := newGrievanceFlow(testDB.DB)
			gResp, err := grievanceFlow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876540004",
				Subject:      "Broken swing in park",
				Description:  "The swing set in the municipal park is broken.",
				Channel:      "web",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "GRV00000001", gResp.ReferenceID)

			aResp, err := flow.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876540005",
				ServiceName:  "Marriage registration",
				ScheduledAt:  utils.UTCNow().Add(72 * time.Hour),
				Channel:      "web",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "APT00000003", aResp.ReferenceID)
		})

		t.Run("CreatedEventRecordsChannel", func(t *testing.T) {
			resp, err := flow.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876540006",
				ServiceName:  "Caste certificate",
				ScheduledAt:  utils.UTCNow().Add(24 * time.Hour),
				Channel:      "whatsapp",
			}, testMetadata())
			require.NoError(t, err)

			timeline, err := flow.GetTimeline(ctx, resp.ReferenceID)
			require.NoError(t, err)
			require.Len(t, timeline.Events, 1)
			assert.Equal(t, models.TimelineActionCreated, timeline.Events[0].Action)
			assert.Equal(t, "whatsapp", timeline.Events[0].Details["channel"])
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAppointmentLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAppointmentFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		appointmentRepo := repository.NewAppointmentRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		officer, err := fixtures.CreateTestStaffUser(company.ID, models.RoleDeptOfficer)
		require.NoError(t, err)

		createResp, err := flow.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
			CompanyID:    company.ID,
			CitizenPhone: "+919876550001",
			ServiceName:  "Driving licence renewal",
			ScheduledAt:  utils.UTCNow().Add(24 * time.Hour),
			Channel:      "web",
		}, testMetadata())
		require.NoError(t, err)
		refID := createResp.ReferenceID

		t.Run("AssignKeepsStatus", func(t *testing.T) {
			resp, err := flow.AssignAppointment(ctx, &dto.AssignAppointmentRequest{
				ReferenceID: refID,
				AssigneeID:  officer.ID,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, officer.ID, resp.AssigneeID)

			// Assignment does not confirm the appointment
			appointment, err := appointmentRepo.ByReferenceID(ctx, refID)
			require.NoError(t, err)
			assert.Equal(t, models.AppointmentStatusPending, appointment.Status)
		})

		t.Run("NoShowOnlyFromConfirmed", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, &dto.UpdateAppointmentStatusRequest{
				ReferenceID: refID,
				Status:      models.AppointmentStatusNoShow,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidStatusTransition(err))
		})

		t.Run("ConfirmThenComplete", func(t *testing.T) {
			resp, err := flow.UpdateStatus(ctx, &dto.UpdateAppointmentStatusRequest{
				ReferenceID: refID,
				Status:      models.AppointmentStatusConfirmed,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.AppointmentStatusConfirmed, resp.Status)

			resp, err = flow.UpdateStatus(ctx, &dto.UpdateAppointmentStatusRequest{
				ReferenceID: refID,
				Status:      models.AppointmentStatusCompleted,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.AppointmentStatusCompleted, resp.Status)
		})

		t.Run("TerminalAppointmentFrozen", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, &dto.UpdateAppointmentStatusRequest{
				ReferenceID: refID,
				Status:      models.AppointmentStatusCancelled,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidStatusTransition(err))
		})

		t.Run("UnknownStatusRejected", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, &dto.UpdateAppointmentStatusRequest{
				ReferenceID: refID,
				Status:      "RESCHEDULED",
				PerformedBy: officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsUnknownStatus(err))
		})

		t.Run("UnknownReferenceRejected", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, &dto.UpdateAppointmentStatusRequest{
				ReferenceID: "APT09999999",
				Status:      models.AppointmentStatusConfirmed,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAppointmentNotFound(err))
		})

		t.Run("TimelineRecordsFullHistory", func(t *testing.T) {
			resp, err := flow.GetTimeline(ctx, refID)
			require.NoError(t, err)
			assert.Equal(t, models.TimelineEntityAppointment, resp.EntityType)

			// CREATED, ASSIGNED, then two status updates
			require.Len(t, resp.Events, 4)
			assert.Equal(t, models.TimelineActionCreated, resp.Events[0].Action)
			assert.Equal(t, models.TimelineActionAssigned, resp.Events[1].Action)
			last := resp.Events[len(resp.Events)-1]
			assert.Equal(t, models.AppointmentStatusCompleted, last.Details["to_status"])
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListAppointments(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAppointmentFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		// Created out of schedule order on purpose
		offsets := []time.Duration{72 * time.Hour, 24 * time.Hour, 48 * time.Hour}
		for _, offset := range offsets {
			_, err := flow.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876560001",
				ServiceName:  "Service window slot",
				ScheduledAt:  utils.UTCNow().Add(offset),
				Channel:      "web",
			}, testMetadata())
			require.NoError(t, err)
		}

		t.Run("OrderedByScheduledTime", func(t *testing.T) {
			resp, err := flow.ListAppointments(ctx, &dto.ListAppointmentsRequest{
				CompanyID: company.ID,
			}, testMetadata())
			require.NoError(t, err)
			require.Len(t, resp.Items, 3)
			assert.Equal(t, "APT00000002", resp.Items[0].ReferenceID)
			assert.Equal(t, "APT00000003", resp.Items[1].ReferenceID)
			assert.Equal(t, "APT00000001", resp.Items[2].ReferenceID)
		})

		t.Run("FilterByStatus", func(t *testing.T) {
			status := models.AppointmentStatusConfirmed
			resp, err := flow.ListAppointments(ctx, &dto.ListAppointmentsRequest{
				CompanyID: company.ID,
				Status:    &status,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(0), resp.Total)
		})

		t.Run("ScheduledWindowFilter", func(t *testing.T) {
			start := utils.UTCNow().Add(36 * time.Hour)
			end := utils.UTCNow().Add(60 * time.Hour)
			resp, err := flow.ListAppointments(ctx, &dto.ListAppointmentsRequest{
				CompanyID: company.ID,
				StartDate: &start,
				EndDate:   &end,
			}, testMetadata())
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "APT00000003", resp.Items[0].ReferenceID)
		})

		t.Run("TenantIsolation", func(t *testing.T) {
			otherCompany, err := fixtures.CreateTestCompany()
			require.NoError(t, err)

			resp, err := flow.ListAppointments(ctx, &dto.ListAppointmentsRequest{
				CompanyID: otherCompany.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(0), resp.Total)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAssignAppointmentNotifiesCitizen(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, whatsapp := newAppointmentFlowWithWhatsApp(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		officer, err := fixtures.CreateTestStaffUser(company.ID, models.RoleDeptOfficer)
		require.NoError(t, err)

		createResp, err := flow.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
			CompanyID:    company.ID,
			CitizenPhone: "+919876570002",
			ServiceName:  "Income certificate",
			ScheduledAt:  utils.UTCNow().Add(24 * time.Hour),
			Channel:      "web",
		}, testMetadata())
		require.NoError(t, err)

		_, err = flow.AssignAppointment(ctx, &dto.AssignAppointmentRequest{
			ReferenceID: createResp.ReferenceID,
			AssigneeID:  officer.ID,
			PerformedBy: officer.ID,
		}, testMetadata())
		require.NoError(t, err)

		// Notification fires after commit on a separate goroutine
		assert.Eventually(t, func() bool {
			for _, m := range whatsapp.GetSentMessages() {
				if m.Recipient == "919876570002" &&
					strings.Contains(m.Message, createResp.ReferenceID) &&
					strings.Contains(m.Message, "assigned") {
					return true
				}
			}
			return false
		}, 2*time.Second, 20*time.Millisecond, "expected an assignment message to the citizen")

		return nil
	})
	require.NoError(t, err)
}
