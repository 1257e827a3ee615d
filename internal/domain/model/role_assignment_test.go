package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/codexfoods/opsboard/internal/errors"
)

func TestRoleAssignment_NetworkWide(t *testing.T) {
	assert.True(t, (&RoleAssignment{NetworkID: "n1"}).NetworkWide())
	assert.False(t, (&RoleAssignment{NetworkID: "n1", UnitID: "u1"}).NetworkWide())
	assert.False(t, (&RoleAssignment{}).NetworkWide())
}

func TestRoleAssignment_Validate(t *testing.T) {
	valid := &RoleAssignment{UserID: "u", Role: "gerente", NetworkID: "n1", UnitID: "u1"}
	require.NoError(t, valid.Validate())

	missingRole := &RoleAssignment{UserID: "u", NetworkID: "n1"}
	err := missingRole.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// unit_id absent requires network_id present
	orphan := &RoleAssignment{UserID: "u", Role: "operator"}
	err = orphan.Validate()
	require.Error(t, err)
	assert.Equal(t, "network_id", apperrors.GetField(err))

	networkWide := &RoleAssignment{UserID: "u", Role: "operator", NetworkID: "n1"}
	require.NoError(t, networkWide.Validate())
}

func TestRoleAssignment_ValidateJoinedUnit(t *testing.T) {
	a := &RoleAssignment{
		UserID: "u", Role: "operator", UnitID: "u1", NetworkID: "n1",
		Unit: &Unit{ID: "u1"},
	}
	err := a.Validate()
	require.Error(t, err)
	assert.Equal(t, "name", apperrors.GetField(err))

	a.Unit.Name = "Store 1"
	require.NoError(t, a.Validate())
}

func TestUnit_Validate(t *testing.T) {
	require.NoError(t, (&Unit{ID: "u1", Name: "Store 1", NetworkID: "n1"}).Validate())
	assert.Error(t, (&Unit{Name: "Store 1"}).Validate())
	assert.Error(t, (&Unit{ID: "u1", Name: "   "}).Validate())
}
