// Package tests contains test cases for business flows to avoid circular imports
package tests

import (
	"testing"

	"github.com/civicmitra/seva-backend/app/dto"
	businessflow "github.com/civicmitra/seva-backend/business_flow"
	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	testingutil "github.com/civicmitra/seva-backend/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAdminFlow(db *gorm.DB) businessflow.AdminFlow {
	return businessflow.NewAdminFlow(
		repository.NewCompanyRepository(db),
		repository.NewDepartmentRepository(db),
		repository.NewStaffUserRepository(db),
		repository.NewStaffSessionRepository(db),
		repository.NewAuditLogRepository(db),
		bcrypt.MinCost,
		db,
	)
}

func TestCreateStaff(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAdminFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		admin, err := fixtures.CreateTestStaffUser(company.ID, models.RoleAdmin)
		require.NoError(t, err)

		t.Run("CreatesAccountWithPopulatedDTO", func(t *testing.T) {
			resp, err := flow.CreateStaff(ctx, &dto.CreateStaffRequest{
				CompanyID: company.ID,
				CreatedBy: admin.ID,
				Email:     "Meera.Joshi@Example.com",
				Password:  "StrongPass123!",
				FirstName: "Meera",
				LastName:  "Joshi",
				Role:      models.RoleDeptOfficer,
			}, testMetadata())
			require.NoError(t, err)

			assert.NotZero(t, resp.Staff.ID)
			assert.NotEmpty(t, resp.Staff.UUID)
			assert.Equal(t, "meera.joshi@example.com", resp.Staff.Email)
			assert.Equal(t, "Meera", resp.Staff.FirstName)
			assert.Equal(t, models.RoleDeptOfficer, resp.Staff.Role)
			assert.Equal(t, company.ID, resp.Staff.CompanyID)
			assert.True(t, resp.Staff.IsActive)
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			_, err := flow.CreateStaff(ctx, &dto.CreateStaffRequest{
				CompanyID: company.ID,
				CreatedBy: admin.ID,
				Email:     "meera.joshi@example.com",
				Password:  "StrongPass123!",
				FirstName: "Meera",
				LastName:  "Joshi",
				Role:      models.RoleDeptOfficer,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("OfficerCannotManageStaff", func(t *testing.T) {
			officer, err := fixtures.CreateTestStaffUser(company.ID, models.RoleDeptOfficer)
			require.NoError(t, err)

			_, err = flow.CreateStaff(ctx, &dto.CreateStaffRequest{
				CompanyID: company.ID,
				CreatedBy: officer.ID,
				Email:     "arun.nair@example.com",
				Password:  "StrongPass123!",
				FirstName: "Arun",
				LastName:  "Nair",
				Role:      models.RoleDeptOfficer,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNotAuthorized(err))
		})

		t.Run("OnlySuperAdminMintsSuperAdmin", func(t *testing.T) {
			_, err := flow.CreateStaff(ctx, &dto.CreateStaffRequest{
				CompanyID: company.ID,
				CreatedBy: admin.ID,
				Email:     "root.admin@example.com",
				Password:  "StrongPass123!",
				FirstName: "Root",
				LastName:  "Admin",
				Role:      models.RoleSuperAdmin,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNotAuthorized(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListStaff(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAdminFlow(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)
		admin, err := fixtures.CreateTestStaffUser(company.ID, models.RoleAdmin)
		require.NoError(t, err)
		_, err = fixtures.CreateTestStaffUser(company.ID, models.RoleDeptOfficer)
		require.NoError(t, err)

		t.Run("ReturnsCompanyStaff", func(t *testing.T) {
			resp, err := flow.ListStaff(ctx, &dto.ListStaffRequest{
				CompanyID: company.ID,
			})
			require.NoError(t, err)
			require.Len(t, resp.Items, 2)
			for _, item := range resp.Items {
				assert.NotZero(t, item.ID)
				assert.NotEmpty(t, item.Email)
				assert.Equal(t, company.ID, item.CompanyID)
			}
		})

		t.Run("FilterByRole", func(t *testing.T) {
			role := models.RoleAdmin
			resp, err := flow.ListStaff(ctx, &dto.ListStaffRequest{
				CompanyID: company.ID,
				Role:      &role,
			})
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, admin.ID, resp.Items[0].ID)
		})

		t.Run("TenantIsolation", func(t *testing.T) {
			otherCompany, err := fixtures.CreateTestCompany()
			require.NoError(t, err)

			resp, err := flow.ListStaff(ctx, &dto.ListStaffRequest{
				CompanyID: otherCompany.ID,
			})
			require.NoError(t, err)
			assert.Empty(t, resp.Items)
		})

		return nil
	})
	require.NoError(t, err)
}
