package ensure

import (
	"gcpctl/internal/connectors"
	"gcpctl/internal/env"
	"gcpctl/internal/gcp/clouddns"
	"gcpctl/internal/gcp/gce"
	"gcpctl/internal/resource"
	"github.com/spf13/cobra"
)

var aRecordParams clouddns.ARecordParams

var dnsARecordCmd = &cobra.Command{
	Use:   "dns-a-record [flags]",
	Short: "Ensure an A record in the managed zone of the domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return clouddns.NewARecord(clients.DNS, env.Config.Project, aRecordParams)
		})
	},
}

var sslCertDomainParams gce.SslCertDomainParams

var sslCertDomainCmd = &cobra.Command{
	Use:   "ssl-cert-domain [flags]",
	Short: "Ensure a google managed ssl certificate for a domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewSslCertDomain(computeScope(clients), sslCertDomainParams)
		})
	},
}

var sslCertParams gce.SslCertParams

var sslCertCmd = &cobra.Command{
	Use:   "ssl-cert [flags]",
	Short: "Ensure a self signed ssl certificate for an ip address",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewSslCert(computeScope(clients), sslCertParams)
		})
	},
}

func init() {
	dnsARecordCmd.Flags().StringVarP(&aRecordParams.Domain, "domain", "d", "", "record name without the trailing dot")
	dnsARecordCmd.Flags().StringVarP(&aRecordParams.Address, "address", "a", "", "ipv4 address")
	dnsARecordCmd.Flags().Int64Var(&aRecordParams.TTL, "ttl", 300, "record ttl in seconds")
	_ = dnsARecordCmd.MarkFlagRequired("domain")
	_ = dnsARecordCmd.MarkFlagRequired("address")

	sslCertDomainCmd.Flags().StringVarP(&sslCertDomainParams.Name, "name", "n", "", "certificate name")
	sslCertDomainCmd.Flags().StringVarP(&sslCertDomainParams.Domain, "domain", "d", "", "domain the certificate is issued for")
	_ = sslCertDomainCmd.MarkFlagRequired("name")
	_ = sslCertDomainCmd.MarkFlagRequired("domain")

	sslCertCmd.Flags().StringVarP(&sslCertParams.Name, "name", "n", "", "certificate name")
	sslCertCmd.Flags().StringVarP(&sslCertParams.IP, "ip", "i", "", "ip address the certificate is issued for")
	_ = sslCertCmd.MarkFlagRequired("name")
	_ = sslCertCmd.MarkFlagRequired("ip")
}
