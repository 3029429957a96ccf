package tunnel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"arhat.dev/pkg/log"

	"arhat.dev/corplink/pkg/conf"
	"arhat.dev/corplink/pkg/metrics"
)

type State string

const (
	StateStarting   State = "starting"
	StateLive       State = "live"
	StateRestarting State = "restarting"
	StateStopped    State = "stopped"
)

// Manager keeps one tunnel running: launch, configure and monitor, then
// restart after RestartDelay when the link is down
type Manager struct {
	ctx     context.Context
	logger  log.Interface
	config  *conf.WireGuardConfig
	metrics *metrics.Metrics

	restartDelay time.Duration
	state        atomic.Value

	dialer  ChannelDialer
	launch  func(opts LaunchOptions) (*exec.Cmd, error)
	monitor func(name string) *Monitor
}

func NewManager(
	ctx context.Context,
	config *conf.CorplinkConfig,
	m *metrics.Metrics,
) (*Manager, error) {
	err := config.WireGuard.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid wireguard config: %w", err)
	}

	logger := log.Log.WithName("tunnel")
	dialer := NewDialer(logger)

	mgr := &Manager{
		ctx:     ctx,
		logger:  logger,
		config:  &config.WireGuard,
		metrics: m,

		restartDelay: config.Corplink.RestartDelay,

		dialer: dialer,
		launch: func(opts LaunchOptions) (*exec.Cmd, error) {
			return Launch(logger, opts)
		},
	}
	mgr.monitor = func(name string) *Monitor {
		return NewMonitor(name, mgr.dialer, mgr.logger)
	}
	mgr.setState(StateStarting)

	return mgr, nil
}

func (m *Manager) State() State {
	return m.state.Load().(State)
}

func (m *Manager) setState(s State) {
	m.state.Store(s)
}

// Health reports the tunnel live when the monitor is running
func (m *Manager) Health() (string, bool) {
	s := m.State()
	return string(s), s == StateLive
}

// Start runs the tunnel until the manager context is done
func (m *Manager) Start() error {
	defer m.setState(StateStopped)

	for {
		res, err := m.runOnce()
		if err != nil {
			m.logger.I("tunnel failed", log.String("ifname", m.config.Interface), log.Error(err))
		} else {
			m.logger.I("tunnel monitor exited",
				log.String("ifname", m.config.Interface),
				log.String("reason", res.Reason.String()),
				log.Error(res.Err),
			)
		}

		if m.ctx.Err() != nil {
			return nil
		}

		m.setState(StateRestarting)
		m.logger.D("restarting tunnel", log.Any("delay", m.restartDelay))

		select {
		case <-m.ctx.Done():
			return nil
		case <-time.After(m.restartDelay):
		}
	}
}

func (m *Manager) runOnce() (_ Result, err error) {
	ifname := m.config.Interface

	m.setState(StateStarting)
	cmd, err := m.launch(LaunchOptionsFromConfig(m.config))
	m.metrics.ObserveLaunch(ifname, err)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithCancel(m.ctx)
	exited := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = cmd.Wait()
		close(exited)
		cancel()
	}()

	defer func() {
		cancel()
		m.stopProcess(cmd, exited)
	}()

	err = Configure(ctx, m.dialer, m.config, m.logger)
	m.metrics.ObserveConfigPush(ifname, err)
	if err != nil {
		return Result{}, fmt.Errorf("failed to configure %s: %w", ifname, err)
	}

	m.logger.I("tunnel configured", log.String("ifname", ifname))
	m.setState(StateLive)

	mon := m.monitor(ifname)
	mon.OnSample = func(s Sample) {
		m.metrics.ObserveHandshake(ifname, s.LastHandshake, s.Elapsed)
	}

	res := mon.Run(ctx)
	if res.Reason == ReasonStopped && m.ctx.Err() == nil {
		// cancelled by process exit
		<-exited
		res.Reason = ReasonConnectionLost
		res.Err = fmt.Errorf("wireguard implementation exited: %v", waitErr)
	}

	m.metrics.ObserveMonitorExit(ifname, res.Reason.String())
	return res, nil
}

// stopProcess kills the implementation if still running and waits for
// its exit
func (m *Manager) stopProcess(cmd *exec.Cmd, exited <-chan struct{}) {
	select {
	case <-exited:
		return
	default:
	}

	err := cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		m.logger.I("failed to kill wireguard implementation", log.Error(err))
	}

	<-exited
}
