// Package cli implements dropzonectl, the command-line front end of the
// drop-zone scanner.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wms-platform/dropzone-service/internal/config"
	"github.com/wms-platform/dropzone-service/pkg/logging"
)

const (
	commandName = "dropzonectl"

	// configKeyAnnotation marks a flag that overrides a config key
	configKeyAnnotation = "dropzonectl/config-key"
)

// app carries state shared by every subcommand once the root pre-run has
// loaded the configuration
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *logging.Logger
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           commandName,
		Short:         "Scan warehouse drop zones and summarise their contents by destination",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.bindFlags(cmd); err != nil {
				return err
			}
			return a.load(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file (default ./dropzone.yaml if present)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	configFlag(rootCmd.PersistentFlags(), "log-level", config.KeyLogLevel)

	rootCmd.AddCommand(
		newScanCmd(a),
		newZonesCmd(a),
		newClassifyCmd(),
	)

	return rootCmd
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logConfig := logging.DefaultConfig(commandName)
	logConfig.Level = logging.LogLevel(cfg.LogLevel)
	logConfig.Environment = cfg.Environment
	logConfig.Output = stderr
	a.logger = logging.New(logConfig)
	return nil
}

// configFlag marks flag as an override for key. Binding happens for the
// executing command only, since several commands share keys.
func configFlag(flags *pflag.FlagSet, flag, key string) {
	_ = flags.SetAnnotation(flag, configKeyAnnotation, []string{key})
}

func (a *app) bindFlags(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[configKeyAnnotation]
		if !ok || len(keys) == 0 || bindErr != nil {
			return
		}
		bindErr = a.v.BindPFlag(keys[0], f)
	})
	return bindErr
}
