package instances

import (
	"context"
	"fmt"
	"gcpctl/internal/cli/report"
	"gcpctl/internal/connectors"
	"gcpctl/internal/env"
	"gcpctl/internal/gcp/gce"
	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/iterator"
	"strings"
)

var Instances = &cobra.Command{
	Use:   "instances [command] [flags]",
	Short: "Compute instance operations",
	Run: func(c *cobra.Command, _ []string) {
		if err := c.Help(); err != nil {
			log.Debug().Msgf("ignoring cobra error %q", err.Error())
		}
	},
	SilenceUsage: true,
	Aliases:      []string{"instance"},
}

var selectorsHelp = dedent.Dedent(`
	Selectors pick instances by shape, and all selectors of one call must be of one kind:

	  1234567890   instance id
	  10.0.0.5     ip address, private addresses match the internal ip
	  env=prod     label, several labels must all match
	  web:lb       network tag lb, several tags must all match
	  web-1        value of the name label
`)

var state string
var table bool

func list(ctx context.Context, selectors []string, each func(*compute.Instance) error) error {
	clients, err := connectors.New(ctx, env.Config)
	if err != nil {
		return err
	}
	scope := gce.Scope{Service: clients.Compute, Project: env.Config.Project, Zone: env.Config.Zone}
	it, err := gce.ListInstances(scope, selectors, state)
	if err != nil {
		return err
	}
	for {
		instance, err := it.Next(ctx)
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if err := each(instance); err != nil {
			return err
		}
	}
}

var lsCmd = &cobra.Command{
	Use:   "ls [selectors...]",
	Short: "List instances",
	Long:  "List instances of the zone.\n" + selectorsHelp,
	RunE: func(cmd *cobra.Command, selectors []string) error {
		var rows [][]string
		err := list(cmd.Context(), selectors, func(instance *compute.Instance) error {
			if table {
				rows = append(rows, gce.Columns(instance))
			} else {
				fmt.Fprintln(report.Out, gce.Format(instance))
			}
			return nil
		})
		if err != nil {
			return err
		}
		if table {
			report.RenderTable(gce.Header, rows)
		}
		return nil
	},
}

func ipCmd(use, short string, address func(*compute.Instance) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [selectors...]",
		Short: short,
		Long:  strings.TrimSuffix(short, ".") + ".\n" + selectorsHelp,
		RunE: func(cmd *cobra.Command, selectors []string) error {
			return list(cmd.Context(), selectors, func(instance *compute.Instance) error {
				ip, err := address(instance)
				if err != nil {
					return err
				}
				fmt.Fprintln(report.Out, ip)
				return nil
			})
		},
	}
}

func init() {
	Instances.AddCommand(lsCmd)
	Instances.AddCommand(ipCmd("ip", "Print public ip addresses of instances", gce.IP))
	Instances.AddCommand(ipCmd("private-ip", "Print private ip addresses of instances", gce.PrivateIP))
	Instances.AddCommand(ipCmd("smart-ip", "Print private ip addresses inside the data center and public ones outside", gce.SmartIP))

	Instances.PersistentFlags().StringVarP(&state, "state", "s", "all", "instance state: "+strings.Join(gce.States, ", "))
	lsCmd.Flags().BoolVar(&table, "table", false, "render as a table")
}
