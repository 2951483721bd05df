package cmd

import (
	"fmt"

	"github.com/smazurov/forklift/internal/version"
	"github.com/spf13/cobra"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(_ *cobra.Command, _ []string) {
			info := version.Get()
			fmt.Printf("forklift %s\n", info.Version)
			fmt.Printf("  commit:  %s\n", info.GitCommit)
			fmt.Printf("  built:   %s\n", info.BuildDate)
			fmt.Printf("  go:      %s (%s)\n", info.GoVersion, info.Platform)
		},
	}
}
