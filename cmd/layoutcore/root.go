package main

import (
	"github.com/npillmayer/layoutcore/config"
	"github.com/npillmayer/layoutcore/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries the state shared by all sub-commands.
type app struct {
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "layoutcore",
		Short:         "layoutcore computes styles and layout of HTML documents.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			observability.InitializeLogger(cfg.Log)
			observability.GetLogger().Debug("configuration loaded",
				zap.String("version", Version),
				zap.Int("workers", cfg.Engine.Workers))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default is ./layoutcore.yaml, if present)")
	root.SetVersionTemplate("layoutcore version {{.Version}}\n")
	root.AddCommand(newLayoutCmd(a), newVersionCmd())
	return root
}
