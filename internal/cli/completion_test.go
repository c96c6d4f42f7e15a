package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetRootCmd creates a bare root command so generator output doesn't
// depend on what the real root has registered.
func resetRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groundctl",
		Short: "Ground station dashboard for rocket telemetry",
	}
}

func TestCompletionGeneration(t *testing.T) {
	tests := []struct {
		name     string
		generate func(cmd *cobra.Command, buf *bytes.Buffer) error
		contains []string
	}{
		{
			name:     "bash",
			generate: func(cmd *cobra.Command, buf *bytes.Buffer) error { return cmd.GenBashCompletion(buf) },
			contains: []string{"# bash completion for groundctl", "__groundctl_debug", "complete -o default -F __start_groundctl groundctl"},
		},
		{
			name:     "zsh",
			generate: func(cmd *cobra.Command, buf *bytes.Buffer) error { return cmd.GenZshCompletion(buf) },
			contains: []string{"#compdef groundctl", "_groundctl()"},
		},
		{
			name:     "fish",
			generate: func(cmd *cobra.Command, buf *bytes.Buffer) error { return cmd.GenFishCompletion(buf, true) },
			contains: []string{"fish completion for groundctl", "complete -c groundctl"},
		},
		{
			name:     "powershell",
			generate: func(cmd *cobra.Command, buf *bytes.Buffer) error { return cmd.GenPowerShellCompletion(buf) },
			contains: []string{"Register-ArgumentCompleter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.generate(resetRootCmd(), &buf))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestCompletionIncludesBuiltinCommands(t *testing.T) {
	// Cobra completes dynamically by calling the binary back with
	// __completeNoDesc, so only the scaffolding is checked here.
	var buf bytes.Buffer
	err := rootCmd.GenBashCompletion(&buf)

	require.NoError(t, err)
	output := buf.String()

	assert.Contains(t, output, "__completeNoDesc", "should use dynamic completion")
	assert.Contains(t, output, "__start_groundctl", "should have start function")
	assert.Contains(t, output, "_groundctl_root_command", "should have root command function")

	assert.Contains(t, output, "_groundctl_events()")
	assert.Contains(t, output, "_groundctl_simulate()")
	assert.Contains(t, output, "_groundctl_completion()")
}

func TestCompletionCommand_WritesToCommandOutput(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"completion", "zsh"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(buf.String(), "#compdef groundctl"))
}

func TestCompletionCommand_RejectsUnknownShell(t *testing.T) {
	err := completionCmd.Args(completionCmd, []string{"tcsh"})
	assert.Error(t, err)

	err = completionCmd.Args(completionCmd, []string{"bash", "zsh"})
	assert.Error(t, err)

	assert.NoError(t, completionCmd.Args(completionCmd, []string{"fish"}))
}
