package ensure

import (
	"gcpctl/internal/connectors"
	"gcpctl/internal/gcp/gce"
	"gcpctl/internal/resource"
	"github.com/spf13/cobra"
)

var forwardingRuleParams gce.ForwardingRuleParams

var forwardingRuleCmd = &cobra.Command{
	Use:   "forwarding-rule [flags]",
	Short: "Ensure a global forwarding rule from an ip address to a proxy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewForwardingRule(computeScope(clients), forwardingRuleParams)
		})
	},
}

var addressParams gce.AddressParams

var ipAddressCmd = &cobra.Command{
	Use:   "ip-address [flags]",
	Short: "Ensure a reserved global ipv4 address",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewGlobalAddress(computeScope(clients), addressParams)
		})
	},
}

var httpsProxyParams gce.HttpsProxyParams

var httpsProxyCmd = &cobra.Command{
	Use:   "https-proxy [flags]",
	Short: "Ensure a target https proxy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewHttpsProxy(computeScope(clients), httpsProxyParams)
		})
	},
}

var httpProxyParams gce.HttpProxyParams

var httpProxyCmd = &cobra.Command{
	Use:   "http-proxy [flags]",
	Short: "Ensure a target http proxy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewHttpProxy(computeScope(clients), httpProxyParams)
		})
	},
}

var urlMapParams gce.UrlMapParams

var urlMapCmd = &cobra.Command{
	Use:   "url-map [flags]",
	Short: "Ensure a url map sending everything to one backend service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewUrlMap(computeScope(clients), urlMapParams)
		})
	},
}

var healthCheckParams gce.HealthCheckParams

var healthCheckCmd = &cobra.Command{
	Use:   "health-check [flags]",
	Short: "Ensure an http health check",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewHealthCheck(computeScope(clients), healthCheckParams)
		})
	},
}

var backendServiceParams gce.BackendServiceParams

var backendServiceCmd = &cobra.Command{
	Use:   "backend-service [flags]",
	Short: "Ensure an external http backend service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			params := backendServiceParams
			params.DrainingTimeoutSec = params.TimeoutSec
			return gce.NewBackendService(computeScope(clients), params)
		})
	},
}

func init() {
	forwardingRuleCmd.Flags().StringVarP(&forwardingRuleParams.Name, "name", "n", "", "forwarding rule name")
	forwardingRuleCmd.Flags().StringVar(&forwardingRuleParams.Target, "proxy", "", "target proxy url")
	forwardingRuleCmd.Flags().StringVar(&forwardingRuleParams.IPAddress, "ip-address", "", "ip address url")
	forwardingRuleCmd.Flags().StringVar(&forwardingRuleParams.PortRange, "port", "443", "port or port range")
	_ = forwardingRuleCmd.MarkFlagRequired("name")
	_ = forwardingRuleCmd.MarkFlagRequired("proxy")
	_ = forwardingRuleCmd.MarkFlagRequired("ip-address")

	ipAddressCmd.Flags().StringVarP(&addressParams.Name, "name", "n", "", "address name")
	_ = ipAddressCmd.MarkFlagRequired("name")

	httpsProxyCmd.Flags().StringVarP(&httpsProxyParams.Name, "name", "n", "", "proxy name")
	httpsProxyCmd.Flags().StringSliceVar(&httpsProxyParams.SslCertificate, "ssl-cert", nil, "ssl certificate url")
	httpsProxyCmd.Flags().StringVar(&httpsProxyParams.UrlMap, "url-map", "", "url map url")
	_ = httpsProxyCmd.MarkFlagRequired("name")
	_ = httpsProxyCmd.MarkFlagRequired("ssl-cert")
	_ = httpsProxyCmd.MarkFlagRequired("url-map")

	httpProxyCmd.Flags().StringVarP(&httpProxyParams.Name, "name", "n", "", "proxy name")
	httpProxyCmd.Flags().StringVar(&httpProxyParams.UrlMap, "url-map", "", "url map url")
	_ = httpProxyCmd.MarkFlagRequired("name")
	_ = httpProxyCmd.MarkFlagRequired("url-map")

	urlMapCmd.Flags().StringVarP(&urlMapParams.Name, "name", "n", "", "url map name")
	urlMapCmd.Flags().StringVar(&urlMapParams.DefaultService, "backend-service", "", "backend service url")
	_ = urlMapCmd.MarkFlagRequired("name")
	_ = urlMapCmd.MarkFlagRequired("backend-service")

	healthCheckCmd.Flags().StringVarP(&healthCheckParams.Name, "name", "n", "", "health check name")
	healthCheckCmd.Flags().StringVar(&healthCheckParams.Path, "path", "/", "http request path")
	healthCheckCmd.Flags().Int64Var(&healthCheckParams.Port, "port", 0, "port to probe")
	healthCheckCmd.Flags().Int64Var(&healthCheckParams.IntervalSec, "interval", 15, "check interval and timeout in seconds")
	_ = healthCheckCmd.MarkFlagRequired("name")
	_ = healthCheckCmd.MarkFlagRequired("port")

	backendServiceCmd.Flags().StringVarP(&backendServiceParams.Name, "name", "n", "", "backend service name")
	backendServiceCmd.Flags().StringVar(&backendServiceParams.HealthCheck, "health-check", "", "health check url")
	backendServiceCmd.Flags().StringVar(&backendServiceParams.PortName, "port-name", "http-port", "named port of the instance groups")
	backendServiceCmd.Flags().Int64Var(&backendServiceParams.TimeoutSec, "timeout", 30, "request timeout and connection draining in seconds")
	_ = backendServiceCmd.MarkFlagRequired("name")
	_ = backendServiceCmd.MarkFlagRequired("health-check")
}
