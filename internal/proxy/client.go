package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	netproxy "golang.org/x/net/proxy"

	"mailscope/internal/config"
)

// Client executes HTTP requests either directly or through a SOCKS5
// anonymizing proxy. When routing through the proxy it rotates the egress
// circuit on a timed interval, so long probe runs against the same
// third-party services are not correlated to a single exit identity.
//
// The rotation timestamp is shared by every goroutine using the client;
// maybeRotate claims the rotation window under a mutex so concurrent
// workers cannot trigger redundant rotations.
type Client struct {
	cfg    config.Proxy
	routed *http.Client
	direct *http.Client

	mu           sync.Mutex
	lastRotation time.Time

	// now is swapped out in tests.
	now func() time.Time
}

// NewClient builds a Client from the proxy configuration. The direct path
// is always available; the routed path tunnels through the configured
// SOCKS5 endpoint when Enabled is true and falls back to the direct path
// otherwise.
func NewClient(cfg config.Proxy) *Client {
	connectTimeout := time.Duration(cfg.ConnectTimeoutMs) * time.Millisecond
	readTimeout := time.Duration(cfg.ReadTimeoutMs) * time.Millisecond

	direct := &http.Client{
		Timeout: readTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	c := &Client{
		cfg:          cfg,
		routed:       direct,
		direct:       direct,
		lastRotation: time.Now(),
		now:          time.Now,
	}

	if cfg.Enabled {
		c.routed = &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext:     socksDialContext(cfg, connectTimeout),
				IdleConnTimeout: 90 * time.Second,
			},
		}
	}

	return c
}

// socksDialContext adapts the x/net/proxy SOCKS5 dialer, which only
// exposes Dial, to the DialContext shape http.Transport wants.
func socksDialContext(cfg config.Proxy, timeout time.Duration) func(context.Context, string, string) (net.Conn, error) {
	socksAddr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialer, err := netproxy.SOCKS5("tcp", socksAddr, nil, &net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		if cd, ok := dialer.(netproxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, addr)
		}
		return dialer.Dial(network, addr)
	}
}

// IsProxyEnabled reports whether requests issued with Execute are routed
// through the SOCKS5 proxy.
func (c *Client) IsProxyEnabled() bool {
	return c.cfg.Enabled
}

// Execute sends the request on the proxy-routed path. The circuit TTL is
// checked before the request goes out, never after, so a stale circuit is
// never reused past its rotation interval.
func (c *Client) Execute(req *http.Request) (*http.Response, error) {
	if c.cfg.Enabled {
		c.maybeRotate()
	}
	return c.routed.Do(req)
}

// ExecuteDirect sends the request on the direct path. No rotation is ever
// attempted here.
func (c *Client) ExecuteDirect(req *http.Request) (*http.Response, error) {
	return c.direct.Do(req)
}

// maybeRotate rotates the circuit if the rotation interval has elapsed.
// The window is claimed under the lock before the control-channel dial,
// so sustained use attempts at most one rotation per interval even when
// the control port is unreachable.
func (c *Client) maybeRotate() {
	interval := time.Duration(c.cfg.RotationIntervalMs) * time.Millisecond

	c.mu.Lock()
	if c.now().Sub(c.lastRotation) < interval {
		c.mu.Unlock()
		return
	}
	c.lastRotation = c.now()
	c.mu.Unlock()

	c.RotateCircuit()
}

// RotateCircuit asks the proxy's control channel for a fresh egress
// identity. Failure is logged and otherwise ignored: analysis correctness
// does not depend on anonymity, so requests proceed on the old circuit.
func (c *Client) RotateCircuit() {
	if !c.cfg.Enabled {
		return
	}

	if err := c.signalNewCircuit(); err != nil {
		log.Printf("[WARN-PROXY] circuit rotation failed, keeping current circuit: %v", err)
		return
	}

	c.mu.Lock()
	c.lastRotation = c.now()
	c.mu.Unlock()
	log.Printf("[DEBUG-PROXY] circuit rotated via control port %d", c.cfg.ControlPort)
}

// ForceRotateCircuit zeroes the rotation timestamp so the next routed
// request rotates regardless of elapsed time.
func (c *Client) ForceRotateCircuit() {
	c.mu.Lock()
	c.lastRotation = time.Time{}
	c.mu.Unlock()
}

// signalNewCircuit speaks the control protocol: authenticate, request a
// new circuit, quit. Each command must be acknowledged with a 250 line.
func (c *Client) signalNewCircuit() error {
	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.ControlPort))
	connectTimeout := time.Duration(c.cfg.ConnectTimeoutMs) * time.Millisecond

	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return fmt.Errorf("control port dial: %w", err)
	}
	defer conn.Close()

	deadline := time.Duration(c.cfg.ReadTimeoutMs) * time.Millisecond
	if err := conn.SetDeadline(time.Now().Add(deadline)); err != nil {
		return fmt.Errorf("control port deadline: %w", err)
	}

	reader := bufio.NewReader(conn)
	for _, cmd := range []string{`AUTHENTICATE ""`, "SIGNAL NEWNYM", "QUIT"} {
		if _, err := fmt.Fprintf(conn, "%s\r\n", cmd); err != nil {
			return fmt.Errorf("control command %q: %w", cmd, err)
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("control response to %q: %w", cmd, err)
		}
		if len(line) < 3 || line[:3] != "250" {
			return errors.New("control port rejected " + cmd)
		}
	}
	return nil
}
