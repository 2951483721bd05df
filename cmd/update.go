package cmd

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/forklift/internal/version"
	"github.com/spf13/cobra"
)

// releaseSlug is the GitHub repository releases are published from.
const releaseSlug = "smazurov/forklift"

// CreateUpdateCmd creates the self-update command.
func CreateUpdateCmd() *cobra.Command {
	var prerelease bool
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update forklift to the latest release",
		Long: `Checks GitHub releases for a newer version and replaces the ` +
			`current binary in place. Use --check to only report what is available.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
			if err != nil {
				return fmt.Errorf("creating GitHub source: %w", err)
			}
			updater, err := selfupdate.NewUpdater(selfupdate.Config{
				Source:     source,
				Prerelease: prerelease,
			})
			if err != nil {
				return fmt.Errorf("creating updater: %w", err)
			}

			repo := selfupdate.ParseSlug(releaseSlug)
			release, found, err := updater.DetectLatest(ctx, repo)
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			if !found {
				return fmt.Errorf("no releases found for %s", releaseSlug)
			}

			current := version.String()
			// dev builds are always considered outdated
			if current != "dev" && !release.GreaterThan(current) {
				fmt.Printf("forklift %s is up to date\n", current)
				return nil
			}

			fmt.Printf("update available: %s -> %s\n", current, release.Version())
			if checkOnly {
				return nil
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locating executable: %w", err)
			}
			if err := updater.UpdateTo(ctx, release, exe); err != nil {
				return fmt.Errorf("applying update: %w", err)
			}

			fmt.Printf("updated to %s\n", release.Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Consider prerelease versions")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check, do not install")
	return cmd
}
