package main

import (
	"github.com/casualjim/interactors/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version of the checkout command
const Version = "0.1.0"

type app struct {
	v       *viper.Viper
	envFile string
	cfg     *config.Config
	log     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "checkout",
		Short: "Finalize orders with an evented interactor pipeline",
		Long: `checkout runs the order finalizer against an in-memory order and prints
the events it publishes, the notifications sent by the subscribers and the
resulting order.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnv(a.envFile); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = cfg.Logger(cmd.ErrOrStderr())
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with INTERACTORS_ settings")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("rollback", "always", "when to roll back (always, never, on-failure, on-error)")
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = a.v.BindPFlag(config.KeyRollbackPolicy, flags.Lookup("rollback"))

	root.AddCommand(newFinalizeCmd(a), newTopicsCmd(a))
	return root
}
