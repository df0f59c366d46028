package backend

import (
	"gcpctl/internal/cli/report"
	"gcpctl/internal/connectors"
	"gcpctl/internal/env"
	"gcpctl/internal/gcp/gce"
	"gcpctl/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var Backend = &cobra.Command{
	Use:   "backend [command] [flags]",
	Short: "Backend service membership operations",
	Run: func(c *cobra.Command, _ []string) {
		if err := c.Help(); err != nil {
			log.Debug().Msgf("ignoring cobra error %q", err.Error())
		}
	},
	SilenceUsage: true,
	Aliases:      []string{"backends"},
}

var params gce.BackendMembershipParams

func newBackend(cmd *cobra.Command) (*gce.Backend, error) {
	clients, err := connectors.New(cmd.Context(), env.Config)
	if err != nil {
		return nil, err
	}
	scope := gce.Scope{Service: clients.Compute, Project: env.Config.Project, Zone: env.Config.Zone}
	return gce.NewBackend(scope, params)
}

var addInstanceGroupCmd = &cobra.Command{
	Use:   "add-instance-group [flags]",
	Short: "Ensure a backend service sends traffic to a managed instance group",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := newBackend(cmd)
		if err != nil {
			return err
		}
		result, err := backend.EnsureHasInstanceGroup(cmd.Context())
		if err != nil {
			return err
		}
		return report.Result(result)
	},
}

var removeInstanceGroupCmd = &cobra.Command{
	Use:   "remove-instance-group [flags]",
	Short: "Ensure a backend service no longer sends traffic to a managed instance group",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := newBackend(cmd)
		if err != nil {
			return err
		}
		removed, err := backend.EnsureHasntInstanceGroup(cmd.Context())
		if err != nil {
			return err
		}
		if removed {
			logging.UserSuccess("removed %s from %s", params.InstanceGroup, params.BackendService)
		} else {
			logging.UserSuccess("%s hasnt %s", params.BackendService, params.InstanceGroup)
		}
		return nil
	},
}

func init() {
	Backend.AddCommand(addInstanceGroupCmd)
	Backend.AddCommand(removeInstanceGroupCmd)

	for _, cmd := range []*cobra.Command{addInstanceGroupCmd, removeInstanceGroupCmd} {
		cmd.Flags().StringVarP(&params.BackendService, "backend-service", "b", "", "backend service name")
		cmd.Flags().StringVarP(&params.InstanceGroup, "instance-group", "g", "", "managed instance group name")
		_ = cmd.MarkFlagRequired("backend-service")
		_ = cmd.MarkFlagRequired("instance-group")
	}
	addInstanceGroupCmd.Flags().StringVar(&params.BalancingMode, "balancing-mode", "UTILIZATION", "UTILIZATION, RATE or CONNECTION")
	addInstanceGroupCmd.Flags().DurationVar(&params.Settle, "settle", gce.DefaultSettleTime, "time to wait after adding so the group starts receiving traffic")
}
