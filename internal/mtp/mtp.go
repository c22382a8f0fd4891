// Package mtp is the telegram client that provides the chats, the search of
// the user messages and the deletion for the cleaning pipeline.
package mtp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bluele/gcache"
	"github.com/gotd/contrib/storage"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/mattn/go-colorable"
	"github.com/rusq/dlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rusq/tgcleaner/internal/mtp/authflow"
	"github.com/rusq/tgcleaner/internal/session"
)

const (
	defBatchSize  = 100
	defCacheEvict = 10 * time.Minute
	defCacheSz    = 16
)

var (
	// ErrAlreadyRunning is returned if the attempt is made to start the client,
	// while there's another instance running asynchronously.
	ErrAlreadyRunning = errors.New("already running asynchronously, stop the running instance first")
	// ErrNoCredentials is returned if API ID or hash were not provided and
	// could not be loaded or requested.
	ErrNoCredentials = errors.New("no API credentials")
)

type Client struct {
	cl *telegram.Client

	cache   gcache.Cache // dialog storage freshness
	storage storage.PeerStorage
	peers   *peerCache
	creds   credsStorage

	stop stopFunc

	auth         authflow.FullAuthFlow
	sendcodeOpts auth.SendCodeOptions
	telegramOpts telegram.Options
}

// cache keys
type cacheKey int

const (
	cacheDlgStorage cacheKey = iota
)

type Option func(c *Client)

func WithMTPOptions(opts telegram.Options) Option {
	return func(c *Client) {
		c.telegramOpts = opts
	}
}

// WithSessionFile sets the encrypted session file.
func WithSessionFile(path string) Option {
	return func(c *Client) {
		c.telegramOpts.SessionStorage = &session.FileStorage{Path: path}
	}
}

// WithPeerStorage allows to specify a custom storage for peer data.
func WithPeerStorage(s storage.PeerStorage) Option {
	return func(c *Client) {
		if s == nil {
			return
		}
		c.storage = s
	}
}

// WithAuth allows to override the authorization flow
func WithAuth(flow authflow.FullAuthFlow) Option {
	return func(c *Client) {
		c.auth = flow
	}
}

// WithApiCredsFile sets the file where API ID and hash are cached.
func WithApiCredsFile(path string) Option {
	return func(c *Client) {
		c.creds = credsStorage{filename: path}
	}
}

// WithDebug enables the telegram library debug log.
func WithDebug(enable bool) Option {
	return func(c *Client) {
		if !enable {
			c.telegramOpts.Logger = nil
			return
		}
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		c.telegramOpts.Logger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(cfg),
			zapcore.AddSync(colorable.NewColorableStderr()),
			zapcore.DebugLevel,
		))
	}
}

func New(appID int, appHash string, opts ...Option) (*Client, error) {
	var c = Client{
		cache:   gcache.New(defCacheSz).LRU().Expiration(defCacheEvict).Build(),
		storage: NewMemStorage(),
		peers:   newPeerCache(),

		auth: authflow.TermAuth{},

		telegramOpts: telegram.Options{},
	}

	for _, opt := range opts {
		opt(&c)
	}

	if (appID == 0 || appHash == "") && c.creds.IsAvailable() {
		var err error
		appID, appHash, err = c.loadCredentials()
		if err != nil {
			return nil, err
		}
	}
	if appID == 0 || appHash == "" {
		return nil, ErrNoCredentials
	}

	c.cl = telegram.NewClient(appID, appHash, c.telegramOpts)

	return &c, nil
}

// loadCredentials loads the API credentials from the file, or asks the user
// and saves them, if the file is not there.
func (c *Client) loadCredentials() (int, string, error) {
	apiID, apiHash, err := c.creds.Load()
	if err == nil && apiID > 0 && apiHash != "" {
		return apiID, apiHash, nil
	}
	dlog.Debugf("warning: error loading credentials file, requesting manual input: %s", err)
	apiID, apiHash, err = c.auth.GetAPICredentials(context.Background())
	if err != nil {
		fmt.Println()
		if errors.Is(err, io.EOF) {
			return 0, "", errors.New("exit")
		}
		return 0, "", err
	}
	if err := c.creds.Save(apiID, apiHash); err != nil {
		// not a fatal error
		dlog.Debugf("failed to save credentials: %s", err)
	}
	return apiID, apiHash, nil
}

// Start connects to telegram in background and authenticates, if necessary.
func (c *Client) Start(ctx context.Context) error {
	if c.stop != nil {
		return ErrAlreadyRunning
	}

	stop, err := connect(ctx, c.cl)
	if err != nil {
		return err
	}
	c.stop = stop

	flow := auth.NewFlow(c.auth, c.sendcodeOpts)
	if err := c.cl.Auth().IfNecessary(ctx, flow); err != nil {
		if err := c.Stop(); err != nil {
			dlog.Debugf("error stopping: %s", err)
		}
		return err
	}
	dlog.Debug("auth success")

	return nil
}

// Stop disconnects the client.
func (c *Client) Stop() error {
	if c.stop == nil {
		return nil
	}
	stop := c.stop
	c.stop = nil
	return stop()
}
