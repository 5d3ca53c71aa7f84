package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ajenda/ajenda/internal/client/authstate"
	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/config"
	"github.com/ajenda/ajenda/internal/client/publish"
	"github.com/ajenda/ajenda/internal/client/services"
	"github.com/ajenda/ajenda/internal/client/session"
	"github.com/ajenda/ajenda/internal/client/token"
	"github.com/ajenda/ajenda/internal/logging"
)

// onSessionChange is a test seam called after the watcher handles a value.
var onSessionChange = func(bool) {}

// sessionFeed is the part of the auth state the app watches.
type sessionFeed interface {
	LoggedIn(ctx context.Context) <-chan bool
}

type App struct {
	config         *config.Config
	log            logging.Logger
	authService    services.AuthService
	eventService   services.EventService
	publishService services.PublishService
	session        sessionFeed
	reader         *bufio.Reader
	out            io.Writer
	closers        []func() error

	// set right before a user-requested logout so the watcher stays quiet
	quietLogout atomic.Bool
}

// NewApp wires the session store, auth state, authorizing transport, API
// client and services from cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	store, err := session.Open(ctx, cfg.SessionDSN)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	validator := token.NewValidator()
	state := authstate.New(ctx, store, validator, log)

	authorizer := client.NewAuthorizer(http.DefaultTransport, store, state, validator, log)
	apiClient, err := client.NewHTTPClient(cfg.ServerURL,
		client.WithHTTPClient(&http.Client{Transport: authorizer}),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		state.Close()
		_ = store.Close()
		return nil, err
	}

	var publisher services.Publisher
	if cfg.Publish.Enabled() {
		p, err := publish.NewS3Publisher(ctx, publish.Settings{
			Endpoint:        cfg.Publish.Endpoint,
			Region:          cfg.Publish.Region,
			Bucket:          cfg.Publish.Bucket,
			AccessKeyID:     cfg.Publish.AccessKeyID,
			SecretAccessKey: cfg.Publish.SecretAccessKey,
			LinkTTL:         cfg.Publish.LinkTTL,
		}, log)
		if err != nil {
			log.Warn(ctx, "publishing disabled", "err", err)
		} else {
			publisher = p
		}
	}

	as := services.NewAuthService(apiClient, store, state, validator, log)
	es := services.NewEventService(apiClient, as, log)
	ps := services.NewPublishService(es, as, publisher, "", log)

	app := newApp(cfg, log, as, es, ps, state, os.Stdin, os.Stdout)
	app.closers = []func() error{
		func() error { return as.Close(context.Background()) },
		func() error { state.Close(); return nil },
		store.Close,
	}
	return app, nil
}

func newApp(cfg *config.Config, log logging.Logger, as services.AuthService, es services.EventService,
	ps services.PublishService, feed sessionFeed, in io.Reader, out io.Writer) *App {
	return &App{
		config:         cfg,
		log:            log,
		authService:    as,
		eventService:   es,
		publishService: ps,
		session:        feed,
		reader:         bufio.NewReader(in),
		out:            &syncWriter{w: out},
	}
}

// Run starts the background watchers and blocks in the REPL until the user
// exits, stdin ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to ajenda (type 'help' for commands)")

	go a.watchSession(ctx)
	go a.authService.WatchExpiry(ctx, a.config.ExpiryCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)

	cancel()
	return a.Close()
}

// Close releases the API client, the auth state and the session store.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// watchSession prints a notice whenever the session ends on its own: token
// expiry, a 401 from the server or an unusable stored token.
func (a *App) watchSession(ctx context.Context) {
	was := false
	for in := range a.session.LoggedIn(ctx) {
		if was && !in && !a.quietLogout.CompareAndSwap(true, false) {
			a.println("\nSession ended. Please log in again.")
		}
		was = in
		onSessionChange(in)
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsLoggedIn()
}

func (a *App) getStatus() string {
	u := a.authService.CurrentUser()
	if u == nil {
		return "(guest)"
	}
	return "(" + u.Username + ")"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// syncWriter serializes writes from the REPL and the session watcher.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
