package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	require.True(t, RoleSystem.Valid())
	require.True(t, RoleUser.Valid())
	require.True(t, RoleAssistant.Valid())
	require.False(t, Role("tool").Valid())
	require.False(t, Role("").Valid())
}

func TestTurn_Validate(t *testing.T) {
	require.NoError(t, UserTurn("hola").Validate())

	err := Turn{Content: "hola"}.Validate()
	require.ErrorContains(t, err, "role is empty")

	err = Turn{Role: "robot", Content: "hola"}.Validate()
	require.ErrorContains(t, err, "unknown turn role")

	err = AssistantTurn("").Validate()
	require.ErrorContains(t, err, "content is empty")
}

func TestValidateTurns_ReportsIndex(t *testing.T) {
	err := ValidateTurns([]Turn{SystemTurn("be nice"), UserTurn("hola"), {Role: RoleUser}})
	require.ErrorContains(t, err, "turn 2")

	require.NoError(t, ValidateTurns(nil))
}
