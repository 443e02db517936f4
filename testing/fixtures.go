// Package testing provides test utilities and database setup for testing the citizen services backend
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCompany creates a tenant company with a unique slug
func (tf *TestFixtures) CreateTestCompany() (*models.Company, error) {
	suffix := mrand.Intn(10000000)
	waPhoneID := fmt.Sprintf("1%014d", mrand.Intn(100000000))

	company := &models.Company{
		Name:                  fmt.Sprintf("Test Municipality %d", suffix),
		Slug:                  fmt.Sprintf("test-municipality-%d", suffix),
		WhatsAppPhoneNumberID: &waPhoneID,
		IsActive:              utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(company).Error; err != nil {
		return nil, fmt.Errorf("failed to create test company: %w", err)
	}

	return company, nil
}

// CreateTestDepartment creates a department inside the company
func (tf *TestFixtures) CreateTestDepartment(companyID uint, name string) (*models.Department, error) {
	if name == "" {
		name = fmt.Sprintf("Department %d", mrand.Intn(10000000))
	}

	department := &models.Department{
		CompanyID: companyID,
		Name:      name,
		IsActive:  utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(department).Error; err != nil {
		return nil, fmt.Errorf("failed to create test department: %w", err)
	}

	return department, nil
}

// CreateTestStaffUser creates a staff user with the given role. The
// password is always "TestPass123!".
func (tf *TestFixtures) CreateTestStaffUser(companyID uint, role string) (*models.StaffUser, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := mrand.Intn(10000000)
	mobile := fmt.Sprintf("+919%s", fmt.Sprintf("%09d", mrand.Intn(900000000)+100000000))

	staff := &models.StaffUser{
		CompanyID:    companyID,
		FirstName:    "Asha",
		LastName:     "Verma",
		Email:        fmt.Sprintf("asha.verma.%d.%d@example.com", companyID, suffix),
		Mobile:       &mobile,
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(staff).Error; err != nil {
		return nil, fmt.Errorf("failed to create test staff user: %w", err)
	}

	return staff, nil
}

// CreateTestCitizen creates a citizen with a unique phone number
func (tf *TestFixtures) CreateTestCitizen(companyID uint) (*models.Citizen, error) {
	phone := fmt.Sprintf("+919%s", fmt.Sprintf("%09d", mrand.Intn(900000000)+100000000))
	name := "Ravi Kumar"

	citizen := &models.Citizen{
		CompanyID: companyID,
		Phone:     phone,
		Name:      &name,
	}

	if err := tf.DB.DB.Create(citizen).Error; err != nil {
		return nil, fmt.Errorf("failed to create test citizen: %w", err)
	}

	return citizen, nil
}

// CreateTestGrievance creates a grievance with a directly assigned
// reference ID, bypassing the counter allocator. Tests that exercise the
// allocator should go through the flow or repository instead.
func (tf *TestFixtures) CreateTestGrievance(companyID, citizenID uint, referenceID string) (*models.Grievance, error) {
	grievance := &models.Grievance{
		ReferenceID: referenceID,
		CompanyID:   companyID,
		CitizenID:   citizenID,
		Subject:     "Streetlight not working",
		Description: "The streetlight near the park entrance has been out for a week.",
		Priority:    models.GrievancePriorityMedium,
		Status:      models.GrievanceStatusPending,
	}

	if err := tf.DB.DB.Create(grievance).Error; err != nil {
		return nil, fmt.Errorf("failed to create test grievance: %w", err)
	}

	return grievance, nil
}

// CreateTestAppointment creates an appointment with a directly assigned
// reference ID, bypassing the counter allocator.
func (tf *TestFixtures) CreateTestAppointment(companyID, citizenID uint, referenceID string) (*models.Appointment, error) {
	appointment := &models.Appointment{
		ReferenceID: referenceID,
		CompanyID:   companyID,
		CitizenID:   citizenID,
		Purpose:     "Birth certificate collection",
		ScheduledAt: utils.UTCNow().Add(48 * time.Hour),
		Status:      models.AppointmentStatusPending,
	}

	if err := tf.DB.DB.Create(appointment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test appointment: %w", err)
	}

	return appointment, nil
}

// GenerateSecureToken returns a URL-safe random token
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active staff session
func (tf *TestFixtures) CreateTestSession(staffUserID uint) (*models.StaffSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.StaffSession{
		CorrelationID: uuid.New(),
		StaffUserID:   staffUserID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(staffUserID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		StaffUserID: staffUserID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
