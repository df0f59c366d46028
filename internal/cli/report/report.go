package report

import (
	"fmt"
	"gcpctl/internal/env"
	"gcpctl/internal/logging"
	"gcpctl/internal/resource"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

// DriftError is returned by commands when an existing resource differs from its desired
// config and the run is configured to fail on drift.
type DriftError struct {
	Kind       string
	Name       string
	Mismatches int
}

func (d *DriftError) Error() string {
	return fmt.Sprintf("%s %s has %d invalid fields", d.Kind, d.Name, d.Mismatches)
}

const DriftExitCode = 3

var Out io.Writer = os.Stdout

// Result prints the outcome of one ensure call.
func Result(result *resource.Result) error {
	if env.Config.Verbose && result.Remote != nil {
		dump, err := yaml.Marshal(map[string]any{result.Kind: map[string]any(result.Remote)})
		if err == nil {
			log.Info().Msg("\n" + string(dump))
		}
	}

	if result.Created {
		logging.UserSuccess("%s created: %s", result.Kind, result.Name)
	} else {
		logging.UserSuccess("%s exists: %s", result.Kind, result.Name)
		for _, c := range result.Comparisons {
			if c.Valid {
				logging.UserProgress("%s", c.String())
				continue
			}
			logging.UserWarning("%s", c.String())
			if c.Diff != "" {
				log.Debug().Str("field", c.Field).Msg("diff (-expected +actual):\n" + c.Diff)
			}
		}
		if result.Drifted() && env.Config.FailOnDrift {
			return &DriftError{Kind: result.Kind, Name: result.Name, Mismatches: len(result.Mismatches())}
		}
	}

	if url := result.Remote.URL(); url != "" {
		fmt.Fprintln(Out, url)
	}
	return nil
}

func RenderTable(fields []string, data [][]string) {
	table := tablewriter.NewWriter(Out)
	table.SetHeader(fields)
	table.SetRowLine(true)
	table.AppendBulk(data)
	table.Render()
}
