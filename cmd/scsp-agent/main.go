package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/dmitrymomot/scsp/client"
	"github.com/dmitrymomot/scsp/core/logger"
)

const (
	modeStream = "stream"
	modePoll   = "poll"
)

var errInvalidMode = errors.New("mode must be stream or poll")

type options struct {
	host     string
	port     int
	clientID string
	channel  string
	mode     string
	write    string
	logLevel string
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("scsp-agent", pflag.ContinueOnError)
	fs.StringVarP(&opts.host, "host", "h", "http://127.0.0.1", "server base url")
	fs.IntVarP(&opts.port, "port", "p", 6872, "server port")
	fs.StringVarP(&opts.clientID, "client-id", "c", "client-1", `client identity, "random" generates one`)
	fs.StringVarP(&opts.channel, "channel", "n", "development", "channel to subscribe or write to")
	fs.StringVarP(&opts.mode, "mode", "m", modeStream, "delivery mode: stream or poll")
	fs.StringVarP(&opts.write, "write", "w", "", "publish this text to the channel and exit")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.mode != modeStream && opts.mode != modePoll {
		return options{}, fmt.Errorf("%w: %q", errInvalidMode, opts.mode)
	}
	if opts.clientID == "random" {
		opts.clientID = uuid.NewString()
	}
	return opts, nil
}

// baseURL appends the port unless host already carries one.
func (o options) baseURL() string {
	host := strings.TrimSuffix(o.host, "/")
	u, err := url.Parse(host)
	if err != nil || u.Host == "" || u.Port() != "" {
		return host
	}
	u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(o.port))
	return u.String()
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.New(logger.WithTextFormatter(), logger.WithLevelName(opts.logLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("agent stopped", logger.Component("agent"), logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *slog.Logger) error {
	c, err := client.New(opts.baseURL(), client.WithLogger(log))
	if err != nil {
		return err
	}

	if opts.write != "" {
		if err := c.Write(ctx, opts.channel, []byte(opts.write)); err != nil {
			return err
		}
		log.Info("message written",
			logger.Component("agent"),
			logger.Channel(opts.channel),
			logger.PayloadSize(len(opts.write)),
		)
		return nil
	}

	log.Info("registering",
		logger.Component("agent"),
		logger.Channel(opts.channel),
		logger.ClientID(opts.clientID),
		slog.String("mode", opts.mode),
	)

	onMessage := func(ctx context.Context, msg []byte) error {
		log.InfoContext(ctx, "message received",
			logger.Component("agent"),
			logger.Channel(opts.channel),
			logger.PayloadSize(len(msg)),
		)
		return nil
	}

	if opts.mode == modePoll {
		return c.Poll(ctx, opts.clientID, opts.channel, onMessage)
	}
	return c.Stream(ctx, opts.clientID, opts.channel, onMessage)
}
