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

package conf

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"arhat.dev/pkg/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ReadConfig reads config file into config, overrides values with flags
// set explicitly and setup default logger, the returned context is
// cancelled on SIGINT or SIGTERM
func ReadConfig(
	flags *pflag.FlagSet,
	configFile *string,
	cliLogConfig *log.Config,
	config *CorplinkConfig,
) (context.Context, error) {
	flagConfig := *config

	configBytes, err := os.ReadFile(*configFile)
	if err != nil {
		if !os.IsNotExist(err) || flags.Changed("config") {
			return nil, fmt.Errorf("failed to read config file %s: %w", *configFile, err)
		}
	} else {
		err = yaml.Unmarshal(configBytes, config)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file %s: %w", *configFile, err)
		}
	}

	overrideWithFlags(flags, &flagConfig, config)

	if len(config.Corplink.Log) > 0 {
		if flags.Changed("log.format") {
			config.Corplink.Log[0].Format = cliLogConfig.Format
		}

		if flags.Changed("log.level") {
			config.Corplink.Log[0].Level = cliLogConfig.Level
		}
	} else {
		config.Corplink.Log = append(config.Corplink.Log, *cliLogConfig)
	}

	err = log.SetDefaultLogger(config.Corplink.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set default logger: %w", err)
	}

	appCtx, exit := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		exitCount := 0
		for sig := range sigCh {
			switch sig {
			case os.Interrupt, syscall.SIGTERM:
				exitCount++
				if exitCount == 1 {
					exit()
				} else {
					os.Exit(1)
				}
			}
		}
	}()

	return appCtx, nil
}

// overrideWithFlags applies flag values in flagConfig to config when the
// flag was set explicitly, so config file values win over flag defaults
func overrideWithFlags(flags *pflag.FlagSet, flagConfig, config *CorplinkConfig) {
	if flags.Changed("metrics.listen") {
		config.Corplink.Metrics.Listen = flagConfig.Corplink.Metrics.Listen
	}

	if flags.Changed("restartDelay") {
		config.Corplink.RestartDelay = flagConfig.Corplink.RestartDelay
	}

	if flags.Changed("wg.executable") {
		config.WireGuard.Executable = flagConfig.WireGuard.Executable
	}

	if flags.Changed("wg.interface") {
		config.WireGuard.Interface = flagConfig.WireGuard.Interface
	}

	if flags.Changed("wg.withLog") {
		config.WireGuard.WithLog = flagConfig.WireGuard.WithLog
	}
}
