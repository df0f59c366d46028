package ensure

import (
	"gcpctl/internal/connectors"
	"gcpctl/internal/gcp/gce"
	"gcpctl/internal/resource"
	"github.com/lithammer/dedent"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/api/compute/v1"
	"gopkg.in/yaml.v3"
	"os"
)

var instanceTemplateName string
var instanceTemplateFile string

var instanceTemplateCmd = &cobra.Command{
	Use:   "instance-template [flags]",
	Short: "Ensure an instance template",
	Long: dedent.Dedent(`
		Ensure an instance template from a file holding the template properties.

		The file is yaml or json with the fields of the compute api, for example:

		  machineType: e2-small
		  disks:
		  - boot: true
		    autoDelete: true
		    initializeParams:
		      sourceImage: projects/debian-cloud/global/images/family/debian-12
		  networkInterfaces:
		  - network: global/networks/default
		    accessConfigs:
		    - type: ONE_TO_ONE_NAT

		Templates change with every deploy, so an existing template is not validated.
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		properties, err := LoadInstanceProperties(instanceTemplateFile)
		if err != nil {
			return err
		}
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewInstanceTemplate(computeScope(clients), gce.InstanceTemplateParams{
				Name:       instanceTemplateName,
				Properties: properties,
			})
		})
	},
}

// LoadInstanceProperties reads template properties from a yaml or json file.
func LoadInstanceProperties(path string) (*compute.InstanceProperties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read instance properties")
	}
	fields := map[string]any{}
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	properties := &compute.InstanceProperties{}
	if err := resource.Decode(fields, properties); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return properties, nil
}

var instanceGroupParams gce.InstanceGroupParams

var instanceGroupCmd = &cobra.Command{
	Use:   "instance-group [flags]",
	Short: "Ensure a zonal managed instance group",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			params := instanceGroupParams
			if params.BaseInstanceName == "" {
				params.BaseInstanceName = params.Name
			}
			return gce.NewInstanceGroup(computeScope(clients), params)
		})
	},
}

var autoscalerParams gce.AutoscalerParams

var autoscalerCmd = &cobra.Command{
	Use:   "autoscaler [flags]",
	Short: "Ensure a cpu based autoscaler for a managed instance group",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(clients *connectors.GCP) (resource.Resource, error) {
			return gce.NewAutoscaler(computeScope(clients), autoscalerParams)
		})
	},
}

func init() {
	instanceTemplateCmd.Flags().StringVarP(&instanceTemplateName, "name", "n", "", "instance template name")
	instanceTemplateCmd.Flags().StringVarP(&instanceTemplateFile, "properties", "f", "", "yaml or json file with the template properties")
	_ = instanceTemplateCmd.MarkFlagRequired("name")
	_ = instanceTemplateCmd.MarkFlagRequired("properties")

	instanceGroupCmd.Flags().StringVarP(&instanceGroupParams.Name, "name", "n", "", "instance group manager name")
	instanceGroupCmd.Flags().StringVar(&instanceGroupParams.BaseInstanceName, "instance-name", "", "base name of the instances, defaults to --name")
	instanceGroupCmd.Flags().StringVar(&instanceGroupParams.HealthCheck, "health-check", "", "health check url used for auto healing")
	instanceGroupCmd.Flags().StringVar(&instanceGroupParams.InstanceTemplate, "instance-template", "", "instance template url")
	instanceGroupCmd.Flags().Int64Var(&instanceGroupParams.TargetSize, "size", 1, "target size")
	instanceGroupCmd.Flags().Int64Var(&instanceGroupParams.TargetSizeMax, "size-max", 1, "max surge during updates")
	instanceGroupCmd.Flags().StringVar(&instanceGroupParams.PortName, "port-name", "http-port", "named port")
	instanceGroupCmd.Flags().Int64Var(&instanceGroupParams.Port, "port", 0, "named port number")
	_ = instanceGroupCmd.MarkFlagRequired("name")
	_ = instanceGroupCmd.MarkFlagRequired("health-check")
	_ = instanceGroupCmd.MarkFlagRequired("instance-template")
	_ = instanceGroupCmd.MarkFlagRequired("port")

	autoscalerCmd.Flags().StringVarP(&autoscalerParams.Name, "name", "n", "", "autoscaler name")
	autoscalerCmd.Flags().StringVar(&autoscalerParams.InstanceGroup, "instance-group", "", "instance group manager url")
	autoscalerCmd.Flags().Int64Var(&autoscalerParams.TargetSize, "size", 1, "min replicas")
	autoscalerCmd.Flags().Int64Var(&autoscalerParams.TargetSizeMax, "size-max", 1, "max replicas")
	autoscalerCmd.Flags().Int64Var(&autoscalerParams.CoolDownSec, "cooldown", 30, "cool down period in seconds")
	autoscalerCmd.Flags().Float64Var(&autoscalerParams.Utilization, "utilization", 0.65, "target cpu utilization")
	_ = autoscalerCmd.MarkFlagRequired("name")
	_ = autoscalerCmd.MarkFlagRequired("instance-group")
}
