package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestLotTransitions(t *testing.T) {
	cases := []struct {
		from, to LotStatus
		ok       bool
	}{
		{LotDraft, LotInProgress, true},
		{LotInProgress, LotClosing, true},
		{LotInProgress, LotReadyForScan, true},
		{LotReadyForScan, LotClosing, true},
		{LotClosing, LotDone, true},
		{LotDraft, LotClosing, false},
		{LotDraft, LotDone, false},
		{LotReadyForScan, LotDone, false},
		{LotDone, LotInProgress, false},
		{LotDone, LotDone, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	require.True(t, LotDone.IsTerminal())
	require.False(t, LotStatus("ARCHIVED").Valid())
}

func TestSingleOrderTransitions(t *testing.T) {
	require.True(t, SingleOrderDraft.CanTransitionTo(SingleOrderSeparating))
	require.True(t, SingleOrderScanning.CanTransitionTo(SingleOrderDone))
	require.False(t, SingleOrderDraft.CanTransitionTo(SingleOrderScanning))
	require.False(t, SingleOrderDone.CanTransitionTo(SingleOrderDraft))

	err := CheckSingleOrderTransition("SO-1", SingleOrderReadyToScan, SingleOrderDone)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, err.Error(), "SO-1")
}

func TestErrorKindsMatchThroughWrapping(t *testing.T) {
	err := errors.Wrap(Conflictf("lot %s already exists", "12345678"), "create lot")

	require.ErrorIs(t, err, ErrConflict)
	require.NotErrorIs(t, err, ErrNotFound)

	var domainErr *Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, "lot 12345678 already exists", domainErr.Message)
}

func TestCheckLotTransition(t *testing.T) {
	require.NoError(t, CheckLotTransition("12345678", LotDraft, LotInProgress))
	err := CheckLotTransition("12345678", LotDone, LotInProgress)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestWorkModeAndAssignment(t *testing.T) {
	require.True(t, WorkModeGeneral.PreassignsSeparator())
	require.True(t, WorkModeSeparator.PreassignsSeparator())
	require.False(t, WorkModeScanner.PreassignsSeparator())
	require.False(t, WorkMode("X").Valid())
	require.True(t, AssignmentSeparated.Valid())
	require.True(t, Identity{UID: "a", Role: RoleAdmin}.IsAdmin())
}
