package ensure

import (
	"gcpctl/internal/cli/report"
	"gcpctl/internal/connectors"
	"gcpctl/internal/env"
	"gcpctl/internal/gcp/gce"
	"gcpctl/internal/resource"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var Ensure = &cobra.Command{
	Use:   "ensure [command] [flags]",
	Short: "Create cloud resources that are missing and validate the ones that exist",
	Run: func(c *cobra.Command, _ []string) {
		if err := c.Help(); err != nil {
			log.Debug().Msgf("ignoring cobra error %q", err.Error())
		}
	},
	SilenceUsage: true,
}

func init() {
	Ensure.AddCommand(firewallAllowCmd)
	Ensure.AddCommand(firewallDenyCmd)
	Ensure.AddCommand(dnsARecordCmd)
	Ensure.AddCommand(sslCertDomainCmd)
	Ensure.AddCommand(sslCertCmd)
	Ensure.AddCommand(forwardingRuleCmd)
	Ensure.AddCommand(ipAddressCmd)
	Ensure.AddCommand(httpsProxyCmd)
	Ensure.AddCommand(httpProxyCmd)
	Ensure.AddCommand(urlMapCmd)
	Ensure.AddCommand(instanceTemplateCmd)
	Ensure.AddCommand(healthCheckCmd)
	Ensure.AddCommand(backendServiceCmd)
	Ensure.AddCommand(instanceGroupCmd)
	Ensure.AddCommand(autoscalerCmd)
}

type builder func(clients *connectors.GCP) (resource.Resource, error)

func computeScope(clients *connectors.GCP) gce.Scope {
	return gce.Scope{Service: clients.Compute, Project: env.Config.Project, Zone: env.Config.Zone}
}

func run(cmd *cobra.Command, build builder) error {
	ctx := cmd.Context()
	clients, err := connectors.New(ctx, env.Config)
	if err != nil {
		return err
	}
	r, err := build(clients)
	if err != nil {
		return err
	}
	result, err := resource.EnsureResource(ctx, r)
	if err != nil {
		return err
	}
	return report.Result(result)
}
