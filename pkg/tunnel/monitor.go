package tunnel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"arhat.dev/pkg/log"

	"arhat.dev/corplink/pkg/constant"
	"arhat.dev/corplink/pkg/uapi"
)

const keyLastHandshakeTimeSec = "last_handshake_time_sec"

type Reason int

const (
	// ReasonStopped means the monitor was cancelled by its caller
	ReasonStopped Reason = iota
	// ReasonTimedOut means no handshake happened within the timeout
	ReasonTimedOut
	// ReasonConnectionLost means the control channel failed
	ReasonConnectionLost
)

func (r Reason) String() string {
	switch r {
	case ReasonStopped:
		return "stopped"
	case ReasonTimedOut:
		return "timed_out"
	case ReasonConnectionLost:
		return "connection_lost"
	default:
		return "unknown"
	}
}

// Result is the terminal state of a monitor run
type Result struct {
	Reason Reason

	// LastHandshake and Elapsed are set when timed out
	LastHandshake time.Time
	Elapsed       time.Duration

	Err error
}

// Sample is a successful liveness observation
type Sample struct {
	Time time.Time

	// LastHandshake is zero when no handshake happened yet
	LastHandshake time.Time
	Elapsed       time.Duration
}

type Monitor struct {
	Name string

	// Interval between two checks
	Interval time.Duration
	// Timeout for the last handshake, defaults to Interval
	Timeout time.Duration

	// MaxFailures is the count of consecutive channel failures
	// tolerated before giving up, at least 1
	MaxFailures int

	// OnSample is called for every successful check
	OnSample func(Sample)

	dialer ChannelDialer
	logger log.Interface

	now       func() time.Time
	newTicker func(d time.Duration) (<-chan time.Time, func())
}

func NewMonitor(name string, dialer ChannelDialer, logger log.Interface) *Monitor {
	return &Monitor{
		Name:        name,
		Interval:    constant.DefaultCheckInterval,
		MaxFailures: 1,

		dialer: dialer,
		logger: logger,

		now: time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			tk := time.NewTicker(d)
			return tk.C, tk.Stop
		},
	}
}

// Run checks the last handshake every Interval until the link timed out,
// the control channel failed or ctx is done
//
// the first check happens one Interval after start, so the link has time
// to establish
func (m *Monitor) Run(ctx context.Context) Result {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = m.Interval
	}

	maxFailures := m.MaxFailures
	if maxFailures < 1 {
		maxFailures = 1
	}

	tick, stop := m.newTicker(m.Interval)
	defer stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return Result{Reason: ReasonStopped, Err: ctx.Err()}
		case <-tick:
		}

		sample, err := m.check(ctx)
		if err != nil {
			if stopErr := m.stopped(ctx); stopErr != nil {
				return Result{Reason: ReasonStopped, Err: stopErr}
			}

			failures++
			m.logger.I("failed to check last handshake",
				log.String("ifname", m.Name),
				log.Any("failures", failures),
				log.Error(err),
			)

			if failures >= maxFailures {
				return Result{Reason: ReasonConnectionLost, Err: err}
			}

			continue
		}

		failures = 0
		if m.OnSample != nil {
			m.OnSample(sample)
		}

		if sample.LastHandshake.IsZero() {
			continue
		}

		localTime := sample.LastHandshake.Local().Format(time.RFC3339)
		if sample.Elapsed > timeout {
			m.logger.I("last handshake timed out",
				log.String("ifname", m.Name),
				log.Any("handshake", sample.LastHandshake.Unix()),
				log.String("local", localTime),
				log.Any("elapsedSeconds", sample.Elapsed.Seconds()),
				log.Any("timeoutSeconds", timeout.Seconds()),
			)

			return Result{
				Reason:        ReasonTimedOut,
				LastHandshake: sample.LastHandshake,
				Elapsed:       sample.Elapsed,
			}
		}

		m.logger.D("last handshake",
			log.String("ifname", m.Name),
			log.String("local", localTime),
			log.Any("elapsedSeconds", sample.Elapsed.Seconds()),
		)
	}
}

// stopped reports why ctx ended, socket deadlines derived from ctx can
// expire slightly before ctx itself reports it
func (m *Monitor) stopped(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dl, ok := ctx.Deadline(); ok && !m.now().Before(dl) {
		return context.DeadlineExceeded
	}

	return nil
}

// check queries the last handshake over a fresh channel, an invalid
// timestamp is logged and treated as no handshake
func (m *Monitor) check(ctx context.Context) (Sample, error) {
	conn, err := m.dialer.Dial(ctx, m.Name)
	if err != nil {
		return Sample{}, err
	}
	defer closeOnDone(ctx, conn)()

	applyDeadline(ctx, conn)

	value, found, err := QueryHandshake(conn)
	if err != nil {
		return Sample{}, err
	}

	now := m.now()
	sample := Sample{Time: now}
	if !found {
		return sample, nil
	}

	sample.LastHandshake, err = ParseHandshake(value)
	if err != nil {
		m.logger.I("failed to parse last handshake", log.String("ifname", m.Name), log.Error(err))
		return sample, nil
	}

	if !sample.LastHandshake.IsZero() {
		sample.Elapsed = now.Sub(sample.LastHandshake)
	}

	return sample, nil
}

// QueryHandshake sends a get request over conn and returns the raw value of
// last_handshake_time_sec, found is false if the response ended without it
func QueryHandshake(conn Conn) (value string, found bool, err error) {
	_, err = uapi.NewGetRequest().WriteTo(conn)
	if err != nil {
		return "", false, fmt.Errorf("failed to send uapi get request: %w", err)
	}

	err = conn.Flush()
	if err != nil {
		return "", false, fmt.Errorf("failed to flush uapi get request: %w", err)
	}

	value, found, err = uapi.NewScanner(conn).Find(keyLastHandshakeTimeSec)
	if err != nil {
		return "", false, fmt.Errorf("failed to read uapi get response: %w", err)
	}

	return value, found, nil
}

var errInvalidHandshake = errors.New("invalid last handshake time")

// ParseHandshake parses the unix timestamp, zero means no handshake and
// results in zero time.Time
func ParseHandshake(value string) (time.Time, error) {
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", errInvalidHandshake, value, err)
	}

	if sec == 0 {
		return time.Time{}, nil
	}

	return time.Unix(sec, 0), nil
}
