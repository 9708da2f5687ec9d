package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/config"
	"github.com/customeros/mailsorter/interfaces"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/logger"
	"github.com/customeros/mailsorter/internal/tracing"
)

const logoutTimeout = 5 * time.Second

// Client owns one IMAP session for the configured mailbox.
type Client struct {
	cfg *config.MailboxConfig
	log logger.Logger
	now func() time.Time
	c   *client.Client
}

func NewClient(cfg *config.MailboxConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: log,
		now: time.Now,
	}
}

// NewClientFactory returns a factory handing out a fresh client per run.
func NewClientFactory(cfg *config.MailboxConfig, log logger.Logger) interfaces.MailboxClientFactory {
	return func() interfaces.MailboxClient {
		return NewClient(cfg, log)
	}
}

func (m *Client) address() string {
	return fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
}

// Connect dials the server and logs in. Every failure wraps ErrConnection.
func (m *Client) Connect(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxClient.Connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", m.cfg.Host)
	span.SetTag("port", m.cfg.Port)
	span.SetTag("tls", m.cfg.TLS)

	if m.c != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(mserrors.ErrConnection, "connect aborted: %v", err)
	}

	serverAddr := m.address()
	dialer := &net.Dialer{
		Timeout:   m.cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error
	if m.cfg.TLS {
		c, err = client.DialWithDialerTLS(dialer, serverAddr, &tls.Config{ServerName: m.cfg.Host})
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		err = errors.Wrapf(mserrors.ErrConnection, "failed to connect to %s: %v", serverAddr, err)
		tracing.TraceErr(span, err)
		return err
	}

	c.Timeout = m.cfg.ConnectTimeout
	if err = c.Login(m.cfg.Username, m.cfg.Password); err != nil {
		_ = c.Logout()
		err = errors.Wrapf(mserrors.ErrConnection, "failed to login as %s: %v", m.cfg.Username, err)
		tracing.TraceErr(span, err)
		return err
	}
	c.Timeout = 0

	m.c = c
	m.log.Infof("Connected to mailbox %s as %s", serverAddr, m.cfg.Username)
	return nil
}

// Close logs out within a bounded time. It is safe to call on an unconnected client.
func (m *Client) Close() error {
	if m.c == nil {
		return nil
	}
	c := m.c
	m.c = nil

	c.Timeout = logoutTimeout
	done := make(chan error, 1)
	go func() {
		done <- c.Logout()
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, client.ErrAlreadyLoggedOut) {
			m.log.Warnf("Error during logout from %s: %v", m.address(), err)
			return err
		}
		return nil
	case <-time.After(logoutTimeout):
		m.log.Warnf("Logout from %s timed out", m.address())
		return c.Terminate()
	}
}
