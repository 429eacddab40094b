package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEventsCmd_HasExpectedSubcommands(t *testing.T) {
	cmd := NewEventsCmd()
	require.Equal(t, "events", cmd.Use)

	for _, name := range []string{"list", "prune"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.NotNil(t, sub)
		require.Equal(t, name, sub.Name())
	}
}

func TestEventsFlagSetup(t *testing.T) {
	list := newEventsListCmd()
	requireFlagExists(t, list, "kind")
	requireFlagExists(t, list, "error-kind")
	requireFlagExists(t, list, "limit")
	requireFlagExists(t, list, "since-id")
	requireFlagExists(t, list, "asc")

	prune := newEventsPruneCmd()
	requireFlagExists(t, prune, "older-than")
}

func TestNewDBCmd_HasExpectedSubcommands(t *testing.T) {
	cmd := NewDBCmd()
	require.Equal(t, "db", cmd.Use)

	for _, name := range []string{"path", "schema"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.NotNil(t, sub)
		require.Equal(t, name, sub.Name())
	}
}
