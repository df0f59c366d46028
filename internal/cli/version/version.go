package version

import (
	"fmt"
	"gcpctl/internal/env"
	"github.com/spf13/cobra"
)

var Version = &cobra.Command{
	Use:   "version",
	Short: "Version",
	RunE: func(c *cobra.Command, _ []string) error {
		versionInfo := env.GetBuildVersion()
		fmt.Printf("%s\n%s\n", versionInfo.BuildVersion, versionInfo.Commit)
		return nil
	},
	SilenceUsage: true,
}
