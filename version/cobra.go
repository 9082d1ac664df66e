package version

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

type Version struct {
	ClientVersion *BuildInfo `json:"clientVersion,omitempty" yaml:"clientVersion,omitempty"`
	EngineVersion *BuildInfo `json:"engineVersion,omitempty" yaml:"engineVersion,omitempty"`
}

type GetEngineVersionFunc func() (*BuildInfo, error)

// CobraOptions holds options to be passed to `CobraCommandWithOptions`
type CobraOptions struct {
	// GetEngineVersion is invoked to retrieve the version of the test engine.
	// Optional. If not set, the 'version' subcommand only reports the console
	// and the '--remote' flag is not offered.
	GetEngineVersion GetEngineVersionFunc
}

func CobraCommand() *cobra.Command {
	return CobraCommandWithOptions(CobraOptions{})
}

func CobraCommandWithOptions(options CobraOptions) *cobra.Command {
	var (
		short   bool
		output  string
		remote  bool
		version Version
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Prints out build version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && output != "yaml" && output != "json" {
				return errors.New(`--output must be 'yaml' or 'json'`)
			}

			version.ClientVersion = &Info

			if options.GetEngineVersion != nil && remote {
				engineVersion, err := options.GetEngineVersion()
				if err != nil {
					return err
				}
				version.EngineVersion = engineVersion
			}

			out := cmd.OutOrStdout()
			switch output {
			case "":
				if version.EngineVersion == nil {
					if short {
						_, _ = fmt.Fprintf(out, "%s\n", version.ClientVersion.Version)
					} else {
						_, _ = fmt.Fprintf(out, "%s\n", version.ClientVersion.LongForm())
					}
					return nil
				}
				if short {
					_, _ = fmt.Fprintf(out, "client version: %s\n", version.ClientVersion.Version)
					_, _ = fmt.Fprintf(out, "engine version: %s\n", version.EngineVersion.Version)
				} else {
					_, _ = fmt.Fprintf(out, "client version: %s\n", version.ClientVersion.LongForm())
					_, _ = fmt.Fprintf(out, "engine version: %s\n", version.EngineVersion.LongForm())
				}
			case "yaml":
				marshaled, err := yaml.Marshal(&version)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(marshaled))
			case "json":
				marshaled, err := json.MarshalIndent(&version, "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(marshaled))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Use --short=false to generate full version information")
	cmd.Flags().StringVarP(&output, "output", "o", "", "One of 'yaml' or 'json'.")
	if options.GetEngineVersion != nil {
		cmd.Flags().BoolVar(&remote, "remote", false, "Also report the version of the test engine")
	}

	return cmd
}
