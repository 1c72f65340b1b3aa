package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root mcpeval command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mcpeval",
		Short: "Evaluation harness for MCP tool-calling agents",
		Long: `mcpeval runs an agent against tasks served by an MCP tool server,
optionally with mocked tool operations, and validates the agent's
behavior using captors and validators.`,
	}

	// Add subcommands
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewSummaryCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
