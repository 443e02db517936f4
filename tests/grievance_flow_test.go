// Package tests contains test cases for business flows to avoid circular imports
package tests

import (
	"fmt"
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

func newGrievanceFlow(db *gorm.DB) businessflow.GrievanceFlow {
	flow, _ := newGrievanceFlowWithWhatsApp(db)
	return flow
}

func newGrievanceFlowWithWhatsApp(db *gorm.DB) (businessflow.GrievanceFlow, *services.MockWhatsAppService) {
	whatsapp := services.NewMockWhatsAppService()
	notifier := services.NewNotificationService(whatsapp, services.NewMockEmailProvider())
	return businessflow.NewGrievanceFlow(
		repository.NewGrievanceRepository(db),
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

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
}

func TestCreateGrievance(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newGrievanceFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		timelineRepo := repository.NewTimelineEventRepository(testDB.DB)
		citizenRepo := repository.NewCitizenRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		t.Run("FirstGrievanceGetsFirstID", func(t *testing.T) {
			name := "Ravi Kumar"
			resp, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876500001",
				CitizenName:  &name,
				Subject:      "Garbage not collected",
				Description:  "Garbage has not been collected on MG Road for three days.",
				Channel:      "web",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "GRV00000001", resp.ReferenceID)
			assert.Equal(t, models.GrievanceStatusPending, resp.Status)
			assert.NotZero(t, resp.ID)

			// Citizen record created on first contact
			citizen, err := citizenRepo.ByPhone(ctx, company.ID, "+919876500001")
			require.NoError(t, err)
			require.NotNil(t, citizen)
			require.NotNil(t, citizen.Name)
			assert.Equal(t, name, *citizen.Name)

			// CREATED event written in the same transaction
			events, err := timelineRepo.ListByEntity(ctx, models.TimelineEntityGrievance, resp.ID)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, models.TimelineActionCreated, events[0].Action)
			assert.True(t, events[0].IsSystemEvent())
		})

		t.Run("SequentialIDs", func(t *testing.T) {
			resp, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876500002",
				Subject:      "Water supply disruption",
				Description:  "No water supply in sector 12 since yesterday morning.",
				Channel:      "walk_in",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "GRV00000002", resp.ReferenceID)
		})

		t.Run("DefaultPriorityIsMedium", func(t *testing.T) {
			resp, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876500003",
				Subject:      "Pothole on main street",
				Description:  "Large pothole near the bus stand causing accidents.",
				Channel:      "web",
			}, testMetadata())
			require.NoError(t, err)

			grievance, err := repository.NewGrievanceRepository(testDB.DB).ByReferenceID(ctx, resp.ReferenceID)
			require.NoError(t, err)
			assert.Equal(t, models.GrievancePriorityMedium, grievance.Priority)
		})

		t.Run("UnknownCompanyRejected", func(t *testing.T) {
			_, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    99999,
				CitizenPhone: "+919876500004",
				Subject:      "Test",
				Description:  "Test description",
				Channel:      "web",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyNotFound(err))
		})

		t.Run("InvalidChannelRejected", func(t *testing.T) {
			_, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876500005",
				Subject:      "Test",
				Description:  "Test description",
				Channel:      "email",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidChannel(err))
		})

		t.Run("WrongTenantDepartmentRejected", func(t *testing.T) {
			otherCompany, err := fixtures.CreateTestCompany()
			require.NoError(t, err)
			otherDept, err := fixtures.CreateTestDepartment(otherCompany.ID, "Water Works")
			require.NoError(t, err)

			_, err = flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876500006",
				Subject:      "Test",
				Description:  "Test description",
				Channel:      "web",
				DepartmentID: &otherDept.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsDepartmentWrongTenant(err))
		})

		t.Run("FailedCreateBurnsNoID", func(t *testing.T) {
			// The department check above aborted the transaction, so the
			// next successful create continues the sequence without a gap
			resp, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    company.ID,
				CitizenPhone: "+919876500007",
				Subject:      "Street dog menace",
				Description:  "Pack of stray dogs near the school gate.",
				Channel:      "web",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "GRV00000004", resp.ReferenceID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGrievanceLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newGrievanceFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		grievanceRepo := repository.NewGrievanceRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		officer, err := fixtures.CreateTestStaffUser(company.ID, models.RoleDeptOfficer)
		require.NoError(t, err)

		createResp, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
			CompanyID:    company.ID,
			CitizenPhone: "+919876511111",
			Subject:      "Streetlight out",
			Description:  "The streetlight near the park entrance has been out for a week.",
			Channel:      "web",
		}, testMetadata())
		require.NoError(t, err)
		refID := createResp.ReferenceID

		t.Run("AssignMovesToAssigned", func(t *testing.T) {
			resp, err := flow.AssignGrievance(ctx, &dto.AssignGrievanceRequest{
				ReferenceID: refID,
				AssigneeID:  officer.ID,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.GrievanceStatusAssigned, resp.Status)
			assert.Equal(t, officer.ID, resp.AssigneeID)
		})

		t.Run("AssignToWrongTenantRejected", func(t *testing.T) {
			otherCompany, err := fixtures.CreateTestCompany()
			require.NoError(t, err)
			outsider, err := fixtures.CreateTestStaffUser(otherCompany.ID, models.RoleDeptOfficer)
			require.NoError(t, err)

			_, err = flow.AssignGrievance(ctx, &dto.AssignGrievanceRequest{
				ReferenceID: refID,
				AssigneeID:  outsider.ID,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAssigneeWrongTenant(err))
		})

		t.Run("StatusWalkToResolved", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, &dto.UpdateGrievanceStatusRequest{
				ReferenceID: refID,
				Status:      models.GrievanceStatusInProgress,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.NoError(t, err)

			remarks := "Replaced the bulb and fuse"
			resp, err := flow.UpdateStatus(ctx, &dto.UpdateGrievanceStatusRequest{
				ReferenceID: refID,
				Status:      models.GrievanceStatusResolved,
				Remarks:     &remarks,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.GrievanceStatusResolved, resp.Status)

			grievance, err := grievanceRepo.ByReferenceID(ctx, refID)
			require.NoError(t, err)
			assert.NotNil(t, grievance.ResolvedAt)
		})

		t.Run("InvalidTransitionRejected", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, &dto.UpdateGrievanceStatusRequest{
				ReferenceID: refID,
				Status:      models.GrievanceStatusInProgress,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidStatusTransition(err))
		})

		t.Run("UnknownStatusRejected", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, &dto.UpdateGrievanceStatusRequest{
				ReferenceID: refID,
				Status:      "REOPENED",
				PerformedBy: officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsUnknownStatus(err))
		})

		t.Run("TerminalGrievanceFrozen", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, &dto.UpdateGrievanceStatusRequest{
				ReferenceID: refID,
				Status:      models.GrievanceStatusClosed,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.AssignGrievance(ctx, &dto.AssignGrievanceRequest{
				ReferenceID: refID,
				AssigneeID:  officer.ID,
				PerformedBy: officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidStatusTransition(err))
		})

		t.Run("TimelineRecordsFullHistory", func(t *testing.T) {
			resp, err := flow.GetTimeline(ctx, refID)
			require.NoError(t, err)
			assert.Equal(t, refID, resp.ReferenceID)
			assert.Equal(t, models.TimelineEntityGrievance, resp.EntityType)

			// CREATED, ASSIGNED, then three status updates
			require.Len(t, resp.Events, 5)
			assert.Equal(t, models.TimelineActionCreated, resp.Events[0].Action)
			assert.Equal(t, models.TimelineActionAssigned, resp.Events[1].Action)
			assert.Equal(t, models.TimelineActionStatusUpdated, resp.Events[2].Action)

			last := resp.Events[len(resp.Events)-1]
			assert.Equal(t, models.GrievanceStatusClosed, last.Details["to_status"])
		})

		t.Run("TimelineOfUnknownReference", func(t *testing.T) {
			_, err := flow.GetTimeline(ctx, "GRV09999999")
			require.Error(t, err)
			assert.True(t, businessflow.IsGrievanceNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTransferGrievanceDepartment(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newGrievanceFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		grievanceRepo := repository.NewGrievanceRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		officer, err := fixtures.CreateTestStaffUser(company.ID, models.RoleDeptOfficer)
		require.NoError(t, err)
		sanitation, err := fixtures.CreateTestDepartment(company.ID, "Sanitation")
		require.NoError(t, err)

		createResp, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
			CompanyID:    company.ID,
			CitizenPhone: "+919876522222",
			Subject:      "Overflowing drain",
			Description:  "Drain overflowing near the vegetable market.",
			Channel:      "web",
		}, testMetadata())
		require.NoError(t, err)

		t.Run("Transfer", func(t *testing.T) {
			resp, err := flow.TransferDepartment(ctx, &dto.TransferGrievanceRequest{
				ReferenceID:  createResp.ReferenceID,
				DepartmentID: sanitation.ID,
				PerformedBy:  officer.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, sanitation.ID, resp.DepartmentID)

			grievance, err := grievanceRepo.ByReferenceID(ctx, createResp.ReferenceID)
			require.NoError(t, err)
			require.NotNil(t, grievance.DepartmentID)
			assert.Equal(t, sanitation.ID, *grievance.DepartmentID)

			timeline, err := flow.GetTimeline(ctx, createResp.ReferenceID)
			require.NoError(t, err)
			last := timeline.Events[len(timeline.Events)-1]
			assert.Equal(t, models.TimelineActionDepartmentTransfer, last.Action)
			assert.Equal(t, "Sanitation", last.Details["to_department_name"])
		})

		t.Run("TransferToWrongTenantRejected", func(t *testing.T) {
			otherCompany, err := fixtures.CreateTestCompany()
			require.NoError(t, err)
			otherDept, err := fixtures.CreateTestDepartment(otherCompany.ID, "Roads")
			require.NoError(t, err)

			_, err = flow.TransferDepartment(ctx, &dto.TransferGrievanceRequest{
				ReferenceID:  createResp.ReferenceID,
				DepartmentID: otherDept.ID,
				PerformedBy:  officer.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsDepartmentWrongTenant(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListGrievances(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newGrievanceFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		subjects := []string{"Broken footpath", "Illegal dumping", "Noise complaint"}
		for i, subject := range subjects {
			_, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
				CompanyID:    company.ID,
				CitizenPhone: fmt.Sprintf("+9198765300%02d", i),
				Subject:      subject,
				Description:  "Details for " + subject,
				Channel:      "web",
			}, testMetadata())
			require.NoError(t, err)
		}

		t.Run("ListAll", func(t *testing.T) {
			resp, err := flow.ListGrievances(ctx, &dto.ListGrievancesRequest{
				CompanyID: company.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(3), resp.Total)
			assert.Len(t, resp.Items, 3)
		})

		t.Run("FilterByStatus", func(t *testing.T) {
			status := models.GrievanceStatusPending
			resp, err := flow.ListGrievances(ctx, &dto.ListGrievancesRequest{
				CompanyID: company.ID,
				Status:    &status,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(3), resp.Total)

			resolved := models.GrievanceStatusResolved
			resp, err = flow.ListGrievances(ctx, &dto.ListGrievancesRequest{
				CompanyID: company.ID,
				Status:    &resolved,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(0), resp.Total)
		})

		t.Run("Pagination", func(t *testing.T) {
			resp, err := flow.ListGrievances(ctx, &dto.ListGrievancesRequest{
				CompanyID: company.ID,
				Page:      2,
				PageSize:  2,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(3), resp.Total)
			assert.Len(t, resp.Items, 1)
		})

		t.Run("TenantIsolation", func(t *testing.T) {
			otherCompany, err := fixtures.CreateTestCompany()
			require.NoError(t, err)

			resp, err := flow.ListGrievances(ctx, &dto.ListGrievancesRequest{
				CompanyID: otherCompany.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(0), resp.Total)
		})

		t.Run("InvalidDateRangeRejected", func(t *testing.T) {
			start := utils.UTCNow()
			end := start.Add(-24 * time.Hour)
			_, err := flow.ListGrievances(ctx, &dto.ListGrievancesRequest{
				CompanyID: company.ID,
				StartDate: &start,
				EndDate:   &end,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsStartDateAfterEndDate(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAssignGrievanceNotifiesCitizen(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, whatsapp := newGrievanceFlowWithWhatsApp(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		officer, err := fixtures.CreateTestStaffUser(company.ID, models.RoleDeptOfficer)
		require.NoError(t, err)

		createResp, err := flow.CreateGrievance(ctx, &dto.CreateGrievanceRequest{
			CompanyID:    company.ID,
			CitizenPhone: "+919876570001",
			Subject:      "Blocked storm drain",
			Description:  "Storm drain on Station Road is blocked with debris.",
			Channel:      "web",
		}, testMetadata())
		require.NoError(t, err)

		_, err = flow.AssignGrievance(ctx, &dto.AssignGrievanceRequest{
			ReferenceID: createResp.ReferenceID,
			AssigneeID:  officer.ID,
			PerformedBy: officer.ID,
		}, testMetadata())
		require.NoError(t, err)

		// Notification fires after commit on a separate goroutine
		assert.Eventually(t, func() bool {
			for _, m := range whatsapp.GetSentMessages() {
				if m.Recipient == "919876570001" &&
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
