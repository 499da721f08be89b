package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kobzarvs/qstock/internal/app"
)

func main() {
	var (
		configDir string
		opts      app.Options
	)
	flags := pflag.NewFlagSet("qstock", pflag.ContinueOnError)
	flags.StringVar(&configDir, "config-dir", "", "directory holding config.toml and themes")
	flags.StringVar(&opts.DataPath, "data", "", "inventory file (default $XDG_STATE_HOME/qstock/inventory.json)")
	flags.IntVar(&opts.Seed, "seed", 0, "run on `N` demo records in memory; nothing is saved")
	flags.BoolVar(&opts.Debug, "debug", false, "log at debug level")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: qstock [flags]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}
	if configDir != "" {
		if err := os.Setenv("QSTOCK_CONFIG_HOME", configDir); err != nil {
			fmt.Fprintln(os.Stderr, "qstock:", err)
			os.Exit(1)
		}
	}
	if err := app.New(opts).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "qstock:", err)
		os.Exit(1)
	}
}
