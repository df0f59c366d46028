package ensure

import (
	"gcpctl/internal/connectors"
	"gcpctl/internal/gcp/gce"
	"gcpctl/internal/resource"
	"github.com/spf13/cobra"
)

var firewallParams gce.FirewallParams

var firewallAllowCmd = &cobra.Command{
	Use:   "firewall-allow [flags]",
	Short: "Ensure a firewall rule allowing traffic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			params := firewallParams
			params.Deny = false
			return gce.NewFirewall(computeScope(clients), params)
		})
	},
}

var firewallDenyCmd = &cobra.Command{
	Use:   "firewall-deny [flags]",
	Short: "Ensure a firewall rule denying traffic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			params := firewallParams
			params.Deny = true
			return gce.NewFirewall(computeScope(clients), params)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{firewallAllowCmd, firewallDenyCmd} {
		cmd.Flags().StringVarP(&firewallParams.Name, "name", "n", "", "firewall rule name")
		cmd.Flags().StringSliceVarP(&firewallParams.SourceRanges, "source-ranges", "s", nil, "source cidr ranges, e.g. 0.0.0.0/0")
		cmd.Flags().StringSliceVarP(&firewallParams.NetworkTags, "tags", "t", nil, "network tags the rule applies to")
		cmd.Flags().IntVar(&firewallParams.Port, "port", 0, "port, 0 for all ports")
		cmd.Flags().StringVar(&firewallParams.Protocol, "proto", "tcp", "ip protocol")
		cmd.Flags().StringVar(&firewallParams.Direction, "direction", "ingress", "ingress or egress")
		cmd.Flags().Int64Var(&firewallParams.Priority, "priority", 1000, "rule priority, lower wins")
		cmd.Flags().StringVar(&firewallParams.Description, "description", "", "rule description")
		_ = cmd.MarkFlagRequired("name")
		_ = cmd.MarkFlagRequired("source-ranges")
	}
}
