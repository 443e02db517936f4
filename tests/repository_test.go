// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"sync"
	"testing"

	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	testingutil "github.com/civicmitra/seva-backend/testing"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceCounterRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSequenceCounterRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("NextStartsAtOne", func(t *testing.T) {
			value, err := repo.Next(ctx, "test_counter_a")
			require.NoError(t, err)
			assert.Equal(t, int64(1), value)
		})

		t.Run("NextIsSequential", func(t *testing.T) {
			for want := int64(1); want <= 5; want++ {
				value, err := repo.Next(ctx, "test_counter_b")
				require.NoError(t, err)
				assert.Equal(t, want, value)
			}
		})

		t.Run("CountersAreIndependent", func(t *testing.T) {
			_, err := repo.Next(ctx, models.CounterGrievance)
			require.NoError(t, err)

			value, err := repo.Next(ctx, models.CounterAppointment)
			require.NoError(t, err)
			assert.Equal(t, int64(1), value)
		})

		t.Run("Current", func(t *testing.T) {
			_, err := repo.Next(ctx, "test_counter_c")
			require.NoError(t, err)
			_, err = repo.Next(ctx, "test_counter_c")
			require.NoError(t, err)

			current, err := repo.Current(ctx, "test_counter_c")
			require.NoError(t, err)
			assert.Equal(t, int64(2), current)
		})

		t.Run("CurrentOfMissingCounterIsZero", func(t *testing.T) {
			current, err := repo.Current(ctx, "never_used")
			require.NoError(t, err)
			assert.Equal(t, int64(0), current)
		})

		t.Run("EmptyNameRejected", func(t *testing.T) {
			_, err := repo.Next(ctx, "  ")
			require.Error(t, err)
			assert.ErrorIs(t, err, repository.ErrCounterNameRequired)
		})

		t.Run("ConcurrentNextYieldsUniqueValues", func(t *testing.T) {
			const workers = 20
			values := make(chan int64, workers)

			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					value, err := repo.Next(ctx, "test_counter_concurrent")
					assert.NoError(t, err)
					values <- value
				}()
			}
			wg.Wait()
			close(values)

			seen := make(map[int64]bool, workers)
			for value := range values {
				assert.False(t, seen[value], "value %d issued twice", value)
				seen[value] = true
			}
			assert.Len(t, seen, workers)

			current, err := repo.Current(ctx, "test_counter_concurrent")
			require.NoError(t, err)
			assert.Equal(t, int64(workers), current)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSequenceCounterInitializeFromExisting(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSequenceCounterRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		citizen, err := fixtures.CreateTestCitizen(company.ID)
		require.NoError(t, err)

		t.Run("EmptyTableSeedsZero", func(t *testing.T) {
			err := repo.InitializeFromExisting(ctx, models.CounterGrievance, "grievances", "reference_id", utils.GrievanceIDPrefix)
			require.NoError(t, err)

			value, err := repo.Next(ctx, models.CounterGrievance)
			require.NoError(t, err)
			assert.Equal(t, int64(1), value)
		})

		t.Run("SeedsFromHighestExistingID", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			company, err := fixtures.CreateTestCompany()
			require.NoError(t, err)
			citizen, err := fixtures.CreateTestCitizen(company.ID)
			require.NoError(t, err)

			_, err = fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00000007")
			require.NoError(t, err)
			_, err = fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00000042")
			require.NoError(t, err)

			err = repo.InitializeFromExisting(ctx, models.CounterGrievance, "grievances", "reference_id", utils.GrievanceIDPrefix)
			require.NoError(t, err)

			value, err := repo.Next(ctx, models.CounterGrievance)
			require.NoError(t, err)
			assert.Equal(t, int64(43), value)
		})

		t.Run("ExistingCounterLeftUntouched", func(t *testing.T) {
			current, err := repo.Current(ctx, models.CounterGrievance)
			require.NoError(t, err)

			// Second run is a no-op even though higher IDs exist
			_, err = fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00009999")
			require.NoError(t, err)

			err = repo.InitializeFromExisting(ctx, models.CounterGrievance, "grievances", "reference_id", utils.GrievanceIDPrefix)
			require.NoError(t, err)

			after, err := repo.Current(ctx, models.CounterGrievance)
			require.NoError(t, err)
			assert.Equal(t, current, after)
		})

		t.Run("MalformedIDsSkipped", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			company, err := fixtures.CreateTestCompany()
			require.NoError(t, err)
			citizen, err := fixtures.CreateTestCitizen(company.ID)
			require.NoError(t, err)

			_, err = fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00000003")
			require.NoError(t, err)
			// Longer numeric suffix does not match the fixed-width format
			_, err = fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV000000099")
			require.NoError(t, err)

			err = repo.InitializeFromExisting(ctx, models.CounterGrievance, "grievances", "reference_id", utils.GrievanceIDPrefix)
			require.NoError(t, err)

			value, err := repo.Next(ctx, models.CounterGrievance)
			require.NoError(t, err)
			assert.Equal(t, int64(4), value)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTimelineEventRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTimelineEventRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		citizen, err := fixtures.CreateTestCitizen(company.ID)
		require.NoError(t, err)
		staff, err := fixtures.CreateTestStaffUser(company.ID, models.RoleDeptOfficer)
		require.NoError(t, err)
		grievance, err := fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00000001")
		require.NoError(t, err)

		t.Run("AppendAndListInOrder", func(t *testing.T) {
			created, err := models.NewTimelineEvent(models.TimelineEntityGrievance, grievance.ID, nil, models.CreatedDetails{Channel: "web"})
			require.NoError(t, err)
			require.NoError(t, repo.Append(ctx, created))

			assigned, err := models.NewTimelineEvent(models.TimelineEntityGrievance, grievance.ID, &staff.ID, models.AssignedDetails{
				ToUserID:   staff.ID,
				ToUserName: staff.FullName(),
			})
			require.NoError(t, err)
			require.NoError(t, repo.Append(ctx, assigned))

			statusUpdated, err := models.NewTimelineEvent(models.TimelineEntityGrievance, grievance.ID, &staff.ID, models.StatusUpdatedDetails{
				ToStatus: models.GrievanceStatusInProgress,
			})
			require.NoError(t, err)
			require.NoError(t, repo.Append(ctx, statusUpdated))

			events, err := repo.ListByEntity(ctx, models.TimelineEntityGrievance, grievance.ID)
			require.NoError(t, err)
			require.Len(t, events, 3)
			assert.Equal(t, models.TimelineActionCreated, events[0].Action)
			assert.Equal(t, models.TimelineActionAssigned, events[1].Action)
			assert.Equal(t, models.TimelineActionStatusUpdated, events[2].Action)
			assert.True(t, events[0].ID < events[1].ID)
			assert.True(t, events[1].ID < events[2].ID)
		})

		t.Run("AppendRejectsUnknownAction", func(t *testing.T) {
			err := repo.Append(ctx, &models.TimelineEvent{
				EntityType: models.TimelineEntityGrievance,
				EntityID:   grievance.ID,
				Action:     "REOPENED",
				Details:    []byte(`{}`),
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidTimelineAction)
		})

		t.Run("RowsAreImmutable", func(t *testing.T) {
			events, err := repo.ListByEntity(ctx, models.TimelineEntityGrievance, grievance.ID)
			require.NoError(t, err)
			require.NotEmpty(t, events)

			err = testDB.DB.Exec("UPDATE timeline_events SET action = 'ASSIGNED' WHERE id = ?", events[0].ID).Error
			assert.Error(t, err)

			err = testDB.DB.Exec("DELETE FROM timeline_events WHERE id = ?", events[0].ID).Error
			assert.Error(t, err)
		})

		t.Run("ListByEntityScopesToEntity", func(t *testing.T) {
			other, err := fixtures.CreateTestAppointment(company.ID, citizen.ID, "APT00000001")
			require.NoError(t, err)

			event, err := models.NewTimelineEvent(models.TimelineEntityAppointment, other.ID, nil, models.CreatedDetails{Channel: "walk_in"})
			require.NoError(t, err)
			require.NoError(t, repo.Append(ctx, event))

			events, err := repo.ListByEntity(ctx, models.TimelineEntityAppointment, other.ID)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, models.TimelineEntityAppointment, events[0].EntityType)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCitizenRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCitizenRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		t.Run("FindOrCreateCreatesOnFirstContact", func(t *testing.T) {
			name := "Meera Joshi"
			citizen, err := repo.FindOrCreateByPhone(ctx, company.ID, "+919876543210", &name)
			require.NoError(t, err)
			assert.NotZero(t, citizen.ID)
			assert.Equal(t, "+919876543210", citizen.Phone)
			require.NotNil(t, citizen.Name)
			assert.Equal(t, name, *citizen.Name)
		})

		t.Run("FindOrCreateReturnsExisting", func(t *testing.T) {
			first, err := repo.FindOrCreateByPhone(ctx, company.ID, "+919812345678", nil)
			require.NoError(t, err)

			second, err := repo.FindOrCreateByPhone(ctx, company.ID, "+919812345678", nil)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)

			count, err := repo.Count(ctx, models.CitizenFilter{CompanyID: &company.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("SamePhoneDifferentCompany", func(t *testing.T) {
			otherCompany, err := fixtures.CreateTestCompany()
			require.NoError(t, err)

			citizen, err := repo.FindOrCreateByPhone(ctx, otherCompany.ID, "+919876543210", nil)
			require.NoError(t, err)
			assert.Equal(t, otherCompany.ID, citizen.CompanyID)

			original, err := repo.ByPhone(ctx, company.ID, "+919876543210")
			require.NoError(t, err)
			require.NotNil(t, original)
			assert.NotEqual(t, original.ID, citizen.ID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGrievanceRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewGrievanceRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		citizen, err := fixtures.CreateTestCitizen(company.ID)
		require.NoError(t, err)

		t.Run("ByReferenceID", func(t *testing.T) {
			original, err := fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00000010")
			require.NoError(t, err)

			grievance, err := repo.ByReferenceID(ctx, "GRV00000010")
			require.NoError(t, err)
			require.NotNil(t, grievance)
			assert.Equal(t, original.ID, grievance.ID)
		})

		t.Run("ByReferenceIDNotFound", func(t *testing.T) {
			grievance, err := repo.ByReferenceID(ctx, "GRV09999999")
			assert.NoError(t, err)
			assert.Nil(t, grievance)
		})

		t.Run("ReferenceIDUnique", func(t *testing.T) {
			_, err := fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00000010")
			assert.Error(t, err)
		})

		t.Run("Update", func(t *testing.T) {
			grievance, err := fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00000011")
			require.NoError(t, err)

			err = repo.Update(ctx, grievance.ID, map[string]any{
				"status": models.GrievanceStatusAssigned,
			})
			require.NoError(t, err)

			updated, err := repo.ByID(ctx, grievance.ID)
			require.NoError(t, err)
			assert.Equal(t, models.GrievanceStatusAssigned, updated.Status)
		})

		t.Run("CountByStatus", func(t *testing.T) {
			grievance, err := fixtures.CreateTestGrievance(company.ID, citizen.ID, "GRV00000012")
			require.NoError(t, err)
			require.NoError(t, repo.Update(ctx, grievance.ID, map[string]any{
				"status": models.GrievanceStatusResolved,
			}))

			counts, err := repo.CountByStatus(ctx, company.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), counts[models.GrievanceStatusResolved])
			assert.GreaterOrEqual(t, counts[models.GrievanceStatusPending], int64(1))
		})

		return nil
	})
	require.NoError(t, err)
}
