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

	"arhat.dev/pkg/log"
	"github.com/spf13/cobra"

	"arhat.dev/corplink/pkg/conf"
	"arhat.dev/corplink/pkg/tunnel"
)

func newCheckCmd(appCtx *context.Context, config *conf.CorplinkConfig) *cobra.Command {
	checkCmd := &cobra.Command{
		Use:           "check [args...]",
		Short:         "check the wireguard implementation can be executed",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"--version"}
			}

			exe := config.WireGuard.Executable
			if !tunnel.CommandExists(*appCtx, log.Log.WithName("check"), exe, args...) {
				return fmt.Errorf("%s is not usable", exe)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s is usable\n", exe)
			return err
		},
	}

	return checkCmd
}
