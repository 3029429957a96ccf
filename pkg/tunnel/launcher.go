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

package tunnel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"arhat.dev/pkg/log"

	"arhat.dev/corplink/pkg/conf"
	"arhat.dev/corplink/pkg/constant"
)

type LaunchOptions struct {
	// Executable of the userspace wireguard implementation
	Executable string
	// Interface name passed to the implementation
	Interface string

	Protocol        int
	ProtocolVersion string

	// WithLog keeps stdout and stderr of the implementation, they are
	// discarded otherwise
	WithLog bool
}

func LaunchOptionsFromConfig(c *conf.WireGuardConfig) LaunchOptions {
	return LaunchOptions{
		Executable:      c.Executable,
		Interface:       c.Interface,
		Protocol:        c.Protocol,
		ProtocolVersion: c.ProtocolVersion,
		WithLog:         c.WithLog,
	}
}

// Launch starts the wireguard implementation, the returned process is
// owned by the caller
func Launch(logger log.Interface, opts LaunchOptions) (*exec.Cmd, error) {
	env := launchEnv(opts.Protocol, opts.ProtocolVersion)
	cmd := newLaunchCmd(opts, env)

	logger.I("launching wireguard implementation",
		log.String("cmd", opts.Executable),
		log.String("ifname", opts.Interface),
		log.Any("env", env),
	)

	err := cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", opts.Executable, err)
	}

	return cmd, nil
}

func newLaunchCmd(opts LaunchOptions, env []string) *exec.Cmd {
	// nolint:gosec
	cmd := exec.Command(opts.Executable, launchArgs(opts.Interface)...)
	cmd.SysProcAttr = sysProcAttr()

	// inherited selectors never reach the child, absent entries mean default
	cmd.Env = append(filterEnv(os.Environ()), env...)

	// nil stdout/stderr are connected to the null device
	if opts.WithLog {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	return cmd
}

// launchEnv returns env entries selecting non default behavior of the
// implementation, absent entries keep the default
func launchEnv(protocol int, protocolVersion string) []string {
	var env []string

	if protocolVersion == constant.ProtocolVersionV2 {
		env = append(env, constant.EnvKeyProtocolVersion+"="+constant.ProtocolVersionV2)
	}

	// TODO: replace the 0xff selector once the server reports tcp tunnel as a real protocol
	if protocol == constant.ProtocolTCP {
		env = append(env, constant.EnvKeyNetworkType+"="+constant.NetworkTypeTCP)
	}

	return env
}

// filterEnv drops inherited selectors so only launchEnv decides them
func filterEnv(environ []string) []string {
	ret := make([]string, 0, len(environ))
	for _, e := range environ {
		if strings.HasPrefix(e, constant.EnvKeyProtocolVersion+"=") ||
			strings.HasPrefix(e, constant.EnvKeyNetworkType+"=") {
			continue
		}

		ret = append(ret, e)
	}

	return ret
}

// CommandExists runs the command with stdio discarded and reports whether
// it exited successfully
func CommandExists(ctx context.Context, logger log.Interface, name string, args ...string) bool {
	cmd := exec.CommandContext(ctx, name, args...)

	err := cmd.Start()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			logger.D("command not found", log.String("cmd", name))
			return false
		}

		logger.I("failed to check command existence", log.String("cmd", name), log.Error(err))
		return false
	}

	err = cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.D("command exited with failure", log.String("cmd", name), log.Error(err))
			return false
		}

		logger.I("command exists but cannot execute correctly", log.String("cmd", name), log.Error(err))
		return false
	}

	return true
}
