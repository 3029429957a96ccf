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
	"io"
	"time"

	"arhat.dev/pkg/log"
	"github.com/spf13/cobra"

	"arhat.dev/corplink/pkg/conf"
	"arhat.dev/corplink/pkg/tunnel"
)

func newStatusCmd(appCtx *context.Context, config *conf.CorplinkConfig) *cobra.Command {
	statusCmd := &cobra.Command{
		Use:           "status",
		Short:         "query last handshake of the running tunnel",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := tunnel.NewDialer(log.Log.WithName("status"))
			return runStatus(*appCtx, cmd.OutOrStdout(), d, config.WireGuard.Interface, time.Now())
		},
	}

	return statusCmd
}

func runStatus(ctx context.Context, out io.Writer, d tunnel.ChannelDialer, ifname string, now time.Time) error {
	conn, err := d.Dial(ctx, ifname)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	value, found, err := tunnel.QueryHandshake(conn)
	if err != nil {
		return err
	}

	if !found {
		_, err = fmt.Fprintf(out, "%s: no peer\n", ifname)
		return err
	}

	lastHandshake, err := tunnel.ParseHandshake(value)
	if err != nil {
		return err
	}

	if lastHandshake.IsZero() {
		_, err = fmt.Fprintf(out, "%s: no handshake yet\n", ifname)
		return err
	}

	_, err = fmt.Fprintf(out, "%s: last handshake at %s (%s ago)\n",
		ifname,
		lastHandshake.Local().Format(time.RFC3339),
		now.Sub(lastHandshake).Truncate(time.Second),
	)
	return err
}
