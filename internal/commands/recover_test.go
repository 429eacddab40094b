package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestRecoverCmd_RejectsUnknownKind(t *testing.T) {
	cmd := NewRecoverCmd()

	err := cmd.RunE(cmd, []string{"disk_full"})
	require.Error(t, err)
	require.EqualError(t, err, "error already printed")
	require.IsType(t, printedError{}, err)
}

func TestRecoverCmd_RequiresPathForFileKinds(t *testing.T) {
	for _, kind := range []string{"file_access", "text_busy"} {
		t.Run(kind, func(t *testing.T) {
			cmd := NewRecoverCmd()

			err := cmd.RunE(cmd, []string{kind})
			require.Error(t, err)
			require.EqualError(t, err, "error already printed")
		})
	}
}

func TestRecoverCmd_FlagSetup(t *testing.T) {
	cmd := NewRecoverCmd()
	requireFlagExists(t, cmd, "path")
	requireFlagExists(t, cmd, "destructive")
	requireFlagExists(t, cmd, "timeout")
}

func TestKindsCmd_ListsAllKinds(t *testing.T) {
	cmd := NewKindsCmd()
	require.Equal(t, "kinds", cmd.Use)
	require.NoError(t, cmd.RunE(cmd, nil))
}

func requireFlagExists(t *testing.T, cmd *cobra.Command, name string) {
	t.Helper()
	f := cmd.Flags().Lookup(name)
	require.NotNil(t, f)
}
