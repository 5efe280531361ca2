package main

import (
	"github.com/spf13/cobra"
	"github.com/vedran77/huddle/internal/clientapp"
	"github.com/vedran77/huddle/internal/config"
	"github.com/vedran77/huddle/internal/logging"
)

type rootOptions struct {
	configFile string
	serverURL  string
	dataDir    string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "huddle",
		Short:        "Terminal client for the huddle chat platform",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to client.yaml")
	cmd.PersistentFlags().StringVar(&opts.serverURL, "server", "", "Platform server URL")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory for the session and chat cache")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newProfileCmd(opts),
		newGlobalCmd(opts),
		newPrivateCmd(opts),
		newFilesCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (config.ClientConfig, error) {
	cfg, err := config.LoadClientConfig(o.configFile)
	if err != nil {
		return cfg, err
	}
	if o.serverURL != "" {
		cfg.ServerURL = o.serverURL
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

type appRunner func(cmd *cobra.Command, args []string, app *clientapp.App) error

// withApp builds the client, restores the session and closes the client
// once fn returns.
func (o *rootOptions) withApp(fn appRunner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := o.load()
		if err != nil {
			return err
		}
		logging.Setup(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})

		app, err := clientapp.New(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Start(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd, args, app)
	}
}
