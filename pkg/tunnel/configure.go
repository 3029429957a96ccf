package tunnel

import (
	"context"
	"fmt"
	"strconv"

	"arhat.dev/pkg/log"

	"arhat.dev/corplink/pkg/conf"
	"arhat.dev/corplink/pkg/constant"
	"arhat.dev/corplink/pkg/uapi"
	"arhat.dev/corplink/pkg/util"
)

// BuildSetRequest generates the full configuration of the tunnel
//
// replace_peers precedes the peer fields it applies to, and up=true comes
// after address and mtu, routes are sent both as allowed ips and as
// forwarding entries
func BuildSetRequest(c *conf.WireGuardConfig) (*uapi.Request, error) {
	privateKey, err := util.B64ToHex(c.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key: %w", err)
	}

	publicKey, err := util.B64ToHex(c.PeerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to convert peer key: %w", err)
	}

	routes := util.NormalizeRoutes(c.Route)

	// standard wireguard uapi operations
	req := uapi.NewSetRequest().
		Set("private_key", privateKey).
		SetBool("replace_peers", true).
		Set("public_key", publicKey).
		SetBool("replace_allowed_ips", true).
		Set("endpoint", c.PeerAddress).
		SetInt("persistent_keepalive_interval", constant.DefaultPersistentKeepalive)
	for _, r := range routes {
		req.Set("allowed_ip", r)
	}

	// extended operations of wg-corplink
	req.Set("address", c.Address+"/"+strconv.Itoa(c.Mask)).
		SetInt("mtu", c.MTU).
		SetBool("up", true)
	for _, r := range routes {
		req.Set("route", r)
	}

	return req, nil
}

// Push sends the full configuration over conn and checks the
// acknowledgement, a *uapi.RejectedError is returned if the implementation
// did not answer errno=0
func Push(ctx context.Context, conn Conn, c *conf.WireGuardConfig, logger log.Interface) error {
	req, err := BuildSetRequest(c)
	if err != nil {
		return err
	}

	applyDeadline(ctx, conn)

	logger.D("sending config to uapi", log.String("ifname", c.Interface))
	_, err = req.WriteTo(conn)
	if err != nil {
		return fmt.Errorf("failed to send uapi config: %w", err)
	}

	err = conn.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush uapi config: %w", err)
	}

	return uapi.CheckSetResponse(uapi.NewScanner(conn))
}

// Configure opens a control channel to the tunnel interface and pushes the
// configuration
func Configure(ctx context.Context, dialer ChannelDialer, c *conf.WireGuardConfig, logger log.Interface) error {
	conn, err := dialer.Dial(ctx, c.Interface)
	if err != nil {
		return err
	}
	defer closeOnDone(ctx, conn)()

	err = Push(ctx, conn, c, logger)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("config push interrupted: %w", ctx.Err())
	}

	return err
}
