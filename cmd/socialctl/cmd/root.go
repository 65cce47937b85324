package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pilab-dev/shadow-social/domain"
	"github.com/pilab-dev/shadow-social/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const AppName = "socialctl"

var (
	cfgFile   string
	output    string
	verbose   bool
	appLogger log.Logger
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: "socialctl inspects stored Facebook OAuth property values",
		Long: `A command-line tool for the Facebook OAuth property editor. It reads a
serialized property value from a file or stdin and reports on it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			appLogger = log.NewZerologAdapterWithWriter(cmd.ErrOrStderr(), level)

			switch output {
			case "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", output)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default searches /etc/shadow-social, $HOME/.shadow-social and .)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newInspectCmd(),
		newValidateCmd(),
		newPagesCmd(),
		newSelectPageCmd(),
		newDebugTokenCmd(),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// readProperty reads a serialized value from the file named by args[0], or
// from stdin when no file or "-" is given.
func readProperty(cmd *cobra.Command, args []string) (*domain.FacebookOAuthData, error) {
	var (
		raw []byte
		err error
	)

	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read property value: %w", err)
	}

	data, err := domain.DeserializeFacebookOAuthData(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, err
	}
	appLogger.Debug(cmd.Context(), "Property value loaded", log.Fields{"facebook_user_id": data.ID})

	return data, nil
}

func printValue(cmd *cobra.Command, v any) error {
	w := cmd.OutOrStdout()

	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)

	return err
}
