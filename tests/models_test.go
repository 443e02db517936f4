// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"encoding/json"
	"testing"

	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSequentialID(t *testing.T) {
	t.Run("FirstValue", func(t *testing.T) {
		id, err := models.FormatSequentialID(utils.GrievanceIDPrefix, 1)
		require.NoError(t, err)
		assert.Equal(t, "GRV00000001", id)
	})

	t.Run("ZeroPadding", func(t *testing.T) {
		id, err := models.FormatSequentialID(utils.AppointmentIDPrefix, 42)
		require.NoError(t, err)
		assert.Equal(t, "APT00000042", id)
	})

	t.Run("MaxValue", func(t *testing.T) {
		id, err := models.FormatSequentialID(utils.GrievanceIDPrefix, models.MaxSequentialIDValue)
		require.NoError(t, err)
		assert.Equal(t, "GRV99999999", id)
	})

	t.Run("Overflow", func(t *testing.T) {
		_, err := models.FormatSequentialID(utils.GrievanceIDPrefix, models.MaxSequentialIDValue+1)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrIDSpaceExhausted)
	})

	t.Run("NonPositive", func(t *testing.T) {
		_, err := models.FormatSequentialID(utils.GrievanceIDPrefix, 0)
		assert.Error(t, err)

		_, err = models.FormatSequentialID(utils.GrievanceIDPrefix, -7)
		assert.Error(t, err)
	})
}

func TestParseSequentialID(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		id, err := models.FormatSequentialID(utils.GrievanceIDPrefix, 1234)
		require.NoError(t, err)

		value, ok := models.ParseSequentialID(utils.GrievanceIDPrefix, id)
		assert.True(t, ok)
		assert.Equal(t, int64(1234), value)
	})

	t.Run("WrongPrefix", func(t *testing.T) {
		_, ok := models.ParseSequentialID(utils.GrievanceIDPrefix, "APT00000001")
		assert.False(t, ok)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, id := range []string{"", "GRV", "GRV1", "GRV0000000X", "GRV000000001"} {
			_, ok := models.ParseSequentialID(utils.GrievanceIDPrefix, id)
			assert.False(t, ok, "expected %q to be rejected", id)
		}
	})
}

func TestIsSequentialID(t *testing.T) {
	valid := []string{"GRV00000001", "APT99999999", "GRV12345678"}
	for _, id := range valid {
		assert.True(t, models.IsSequentialID(id), "expected %q to be valid", id)
	}

	invalid := []string{"", "GRV0000001", "GRV000000001", "XYZ00000001", "grv00000001", "GRV-0000001", "GRV00000001 "}
	for _, id := range invalid {
		assert.False(t, models.IsSequentialID(id), "expected %q to be invalid", id)
	}
}

func TestGrievanceStatusMachine(t *testing.T) {
	t.Run("ValidTransitions", func(t *testing.T) {
		assert.True(t, models.CanTransitionGrievance(models.GrievanceStatusPending, models.GrievanceStatusAssigned))
		assert.True(t, models.CanTransitionGrievance(models.GrievanceStatusAssigned, models.GrievanceStatusInProgress))
		assert.True(t, models.CanTransitionGrievance(models.GrievanceStatusInProgress, models.GrievanceStatusResolved))
		assert.True(t, models.CanTransitionGrievance(models.GrievanceStatusResolved, models.GrievanceStatusClosed))
	})

	t.Run("RejectionPaths", func(t *testing.T) {
		assert.True(t, models.CanTransitionGrievance(models.GrievanceStatusPending, models.GrievanceStatusRejected))
		assert.True(t, models.CanTransitionGrievance(models.GrievanceStatusAssigned, models.GrievanceStatusRejected))
		assert.True(t, models.CanTransitionGrievance(models.GrievanceStatusInProgress, models.GrievanceStatusRejected))
		assert.False(t, models.CanTransitionGrievance(models.GrievanceStatusResolved, models.GrievanceStatusRejected))
	})

	t.Run("NoSkippingStates", func(t *testing.T) {
		assert.False(t, models.CanTransitionGrievance(models.GrievanceStatusPending, models.GrievanceStatusResolved))
		assert.False(t, models.CanTransitionGrievance(models.GrievanceStatusPending, models.GrievanceStatusClosed))
		assert.False(t, models.CanTransitionGrievance(models.GrievanceStatusAssigned, models.GrievanceStatusResolved))
	})

	t.Run("NoBackwardTransitions", func(t *testing.T) {
		assert.False(t, models.CanTransitionGrievance(models.GrievanceStatusAssigned, models.GrievanceStatusPending))
		assert.False(t, models.CanTransitionGrievance(models.GrievanceStatusResolved, models.GrievanceStatusInProgress))
	})

	t.Run("TerminalStates", func(t *testing.T) {
		for _, status := range []string{models.GrievanceStatusClosed, models.GrievanceStatusRejected} {
			g := &models.Grievance{Status: status}
			assert.True(t, g.IsTerminal(), "expected %s to be terminal", status)
			assert.False(t, models.CanTransitionGrievance(status, models.GrievanceStatusPending))
		}

		g := &models.Grievance{Status: models.GrievanceStatusResolved}
		assert.False(t, g.IsTerminal())
	})

	t.Run("IsValidGrievanceStatus", func(t *testing.T) {
		assert.True(t, models.IsValidGrievanceStatus(models.GrievanceStatusInProgress))
		assert.False(t, models.IsValidGrievanceStatus("OPEN"))
		assert.False(t, models.IsValidGrievanceStatus("pending"))
	})
}

func TestAppointmentStatusMachine(t *testing.T) {
	t.Run("ValidTransitions", func(t *testing.T) {
		assert.True(t, models.CanTransitionAppointment(models.AppointmentStatusPending, models.AppointmentStatusConfirmed))
		assert.True(t, models.CanTransitionAppointment(models.AppointmentStatusPending, models.AppointmentStatusCancelled))
		assert.True(t, models.CanTransitionAppointment(models.AppointmentStatusConfirmed, models.AppointmentStatusCompleted))
		assert.True(t, models.CanTransitionAppointment(models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled))
		assert.True(t, models.CanTransitionAppointment(models.AppointmentStatusConfirmed, models.AppointmentStatusNoShow))
	})

	t.Run("NoShowOnlyFromConfirmed", func(t *testing.T) {
		assert.False(t, models.CanTransitionAppointment(models.AppointmentStatusPending, models.AppointmentStatusNoShow))
	})

	t.Run("NoSkippingStates", func(t *testing.T) {
		assert.False(t, models.CanTransitionAppointment(models.AppointmentStatusPending, models.AppointmentStatusCompleted))
	})

	t.Run("TerminalStates", func(t *testing.T) {
		terminal := []string{
			models.AppointmentStatusCompleted,
			models.AppointmentStatusCancelled,
			models.AppointmentStatusNoShow,
		}
		for _, status := range terminal {
			a := &models.Appointment{Status: status}
			assert.True(t, a.IsTerminal(), "expected %s to be terminal", status)
			assert.False(t, models.CanTransitionAppointment(status, models.AppointmentStatusPending))
		}

		a := &models.Appointment{Status: models.AppointmentStatusConfirmed}
		assert.False(t, a.IsTerminal())
	})
}

func TestNewTimelineEvent(t *testing.T) {
	staffID := uint(7)

	t.Run("CreatedEvent", func(t *testing.T) {
		event, err := models.NewTimelineEvent(models.TimelineEntityGrievance, 1, nil, models.CreatedDetails{Channel: "whatsapp"})
		require.NoError(t, err)
		assert.Equal(t, models.TimelineActionCreated, event.Action)
		assert.Equal(t, models.TimelineEntityGrievance, event.EntityType)
		assert.Equal(t, uint(1), event.EntityID)
		assert.True(t, event.IsSystemEvent())

		var details map[string]any
		require.NoError(t, json.Unmarshal(event.Details, &details))
		assert.Equal(t, "whatsapp", details["channel"])
	})

	t.Run("AssignedEvent", func(t *testing.T) {
		event, err := models.NewTimelineEvent(models.TimelineEntityGrievance, 1, &staffID, models.AssignedDetails{
			ToUserID:   12,
			ToUserName: "Asha Verma",
		})
		require.NoError(t, err)
		assert.Equal(t, models.TimelineActionAssigned, event.Action)
		assert.False(t, event.IsSystemEvent())
		require.NotNil(t, event.PerformedByID)
		assert.Equal(t, staffID, *event.PerformedByID)
	})

	t.Run("StatusUpdatedEvent", func(t *testing.T) {
		remarks := "Crew dispatched"
		event, err := models.NewTimelineEvent(models.TimelineEntityAppointment, 3, &staffID, models.StatusUpdatedDetails{
			ToStatus: models.AppointmentStatusConfirmed,
			Remarks:  &remarks,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TimelineActionStatusUpdated, event.Action)
		assert.Equal(t, models.TimelineEntityAppointment, event.EntityType)
	})

	t.Run("TransferEvent", func(t *testing.T) {
		event, err := models.NewTimelineEvent(models.TimelineEntityGrievance, 5, &staffID, models.TransferDetails{
			ToDepartmentID:   2,
			ToDepartmentName: "Sanitation",
		})
		require.NoError(t, err)
		assert.Equal(t, models.TimelineActionDepartmentTransfer, event.Action)
	})

	t.Run("UnknownEntityType", func(t *testing.T) {
		_, err := models.NewTimelineEvent("ticket", 1, nil, models.CreatedDetails{Channel: "web"})
		assert.Error(t, err)
	})

	t.Run("NilDetails", func(t *testing.T) {
		_, err := models.NewTimelineEvent(models.TimelineEntityGrievance, 1, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidTimelineAction)
	})

	t.Run("InvalidChannel", func(t *testing.T) {
		_, err := models.NewTimelineEvent(models.TimelineEntityGrievance, 1, nil, models.CreatedDetails{Channel: "carrier_pigeon"})
		assert.Error(t, err)
	})

	t.Run("AssignmentWithoutTarget", func(t *testing.T) {
		_, err := models.NewTimelineEvent(models.TimelineEntityGrievance, 1, &staffID, models.AssignedDetails{})
		assert.Error(t, err)
	})
}

func TestStaffRoles(t *testing.T) {
	t.Run("IsValidStaffRole", func(t *testing.T) {
		assert.True(t, models.IsValidStaffRole(models.RoleSuperAdmin))
		assert.True(t, models.IsValidStaffRole(models.RoleAdmin))
		assert.True(t, models.IsValidStaffRole(models.RoleDeptOfficer))
		assert.False(t, models.IsValidStaffRole("intern"))
		assert.False(t, models.IsValidStaffRole(""))
	})

	t.Run("CanManageStaff", func(t *testing.T) {
		superAdmin := &models.StaffUser{Role: models.RoleSuperAdmin}
		admin := &models.StaffUser{Role: models.RoleAdmin}
		officer := &models.StaffUser{Role: models.RoleDeptOfficer}

		assert.True(t, superAdmin.CanManageStaff())
		assert.True(t, admin.CanManageStaff())
		assert.False(t, officer.CanManageStaff())
	})
}
