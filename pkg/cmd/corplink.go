/*
Copyright 2020 The arhat.dev Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"fmt"
	"net"

	"arhat.dev/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"arhat.dev/corplink/pkg/conf"
	"arhat.dev/corplink/pkg/constant"
	"arhat.dev/corplink/pkg/metrics"
	"arhat.dev/corplink/pkg/tunnel"
)

func NewCorplinkCmd() *cobra.Command {
	var (
		appCtx       context.Context
		configFile   string
		config       = conf.NewConfig()
		cliLogConfig = new(log.Config)
	)

	corplinkCmd := &cobra.Command{
		Use:           "corplink",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Use == "version" {
				return nil
			}

			var err error
			appCtx, err = conf.ReadConfig(cmd.Flags(), &configFile, cliLogConfig, config)
			if err != nil {
				return err
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(appCtx, config)
		},
	}

	flags := corplinkCmd.PersistentFlags()
	// config file
	flags.StringVarP(&configFile, "config", "c", constant.DefaultCorplinkConfigFile, "path to the corplink config file")
	// log config options
	flags.AddFlagSet(log.FlagsForLogConfig("log.", cliLogConfig))
	// app and wireguard options
	flags.AddFlagSet(conf.FlagsForCorplinkConfig(config))

	corplinkCmd.AddCommand(
		newCheckCmd(&appCtx, config),
		newStatusCmd(&appCtx, config),
		newVersionCmd(),
	)

	return corplinkCmd
}

func run(appCtx context.Context, config *conf.CorplinkConfig) error {
	logger := log.Log.WithName("corplink")

	ctx, cancel := context.WithCancel(appCtx)
	defer cancel()

	m := metrics.New()
	mgr, err := tunnel.NewManager(ctx, config, m)
	if err != nil {
		return err
	}

	srvErrCh := make(chan error, 1)
	if addr := config.Corplink.Metrics.Listen; addr != "" {
		l, err2 := net.Listen("tcp", addr)
		if err2 != nil {
			return fmt.Errorf("failed to listen metrics address %s: %w", addr, err2)
		}

		logger.I("serving metrics", log.String("listen", l.Addr().String()))
		go func() {
			srvErrCh <- metrics.Serve(ctx, l, metrics.NewRouter(m, mgr.Health))
		}()
	}

	mgrErrCh := make(chan error, 1)
	go func() {
		mgrErrCh <- mgr.Start()
	}()

	select {
	case err = <-mgrErrCh:
		cancel()
	case err = <-srvErrCh:
		if err != nil {
			err = fmt.Errorf("metrics server exited: %w", err)
		}

		cancel()
		err = multierr.Append(err, <-mgrErrCh)
	}

	return err
}
