package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mcpeval/mcpeval/pkg/task"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [tasks-dir]",
		Short: "List task groups discovered in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := task.NewRegistry()
			if err := registry.DiscoverDir(args[0]); err != nil {
				return fmt.Errorf("failed to discover tasks: %w", err)
			}

			w := cmd.OutOrStdout()
			bold := color.New(color.Bold)

			for _, group := range registry.Groups() {
				bold.Fprintf(w, "%s", group.Metadata.Name)
				fmt.Fprintf(w, " (%d tasks)\n", len(group.Tasks))
				for _, t := range group.Tasks {
					fmt.Fprintf(w, "  %s", t.ID)
					if len(t.ExpectedTools) > 0 {
						fmt.Fprintf(w, "  [expects: %v]", t.ExpectedTools)
					}
					fmt.Fprintln(w)
				}
			}

			return nil
		},
	}

	return cmd
}
