package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCheck(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"safe", "SELECT category FROM expenses", "SELECT category FROM expenses;\nsafe\n"},
		{"last statement wins", "SELECT 1; DROP TABLE expenses", "DROP TABLE expenses;\nrejected: not_select\n"},
		{"forbidden", "SELECT created_at FROM expenses", "SELECT created_at FROM expenses;\nrejected: forbidden_token: create\n"},
		{"empty", "  ;  ", "rejected: empty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runCheck(&buf, tt.raw))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCheckCommandReadsStdin(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("```sql\nSELECT 1\n```"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check"})
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "SELECT 1;\nsafe\n", out.String())
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"ask", "serve", "schema", "check"})
}
