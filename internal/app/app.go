package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/relaybot/core/bootstrap"
	coredatabase "github.com/m3rciful/relaybot/core/database"
	"github.com/m3rciful/relaybot/core/logger"
	tg "github.com/m3rciful/relaybot/core/telegram"
	tghelpers "github.com/m3rciful/relaybot/core/telegram/helpers"
	"github.com/m3rciful/relaybot/core/telegram/router"
	"github.com/m3rciful/relaybot/core/telegram/sender"
	relaybot "github.com/m3rciful/relaybot/internal/bot"
	"github.com/m3rciful/relaybot/internal/health"
	"github.com/m3rciful/relaybot/internal/metrics"
	"github.com/m3rciful/relaybot/internal/payout"
	"github.com/m3rciful/relaybot/internal/relay"
)

// App owns every long-lived component of the relay bot.
type App struct {
	cfg   *Config
	texts relay.Texts

	infra *bootstrap.Result
	redis *redis.Client

	requests payout.StateStore
	forwards relay.ForwardingStore
	router   *relay.Router
	service  *relay.Service

	bot        *tele.Bot
	dispatcher *sender.Dispatcher
	registry   *tg.Registry

	health     *health.Server
	healthStop context.CancelFunc
	healthDone chan struct{}
	jobs       *Jobs

	closeOnce sync.Once
}

// Bootstrap initialises logging, storage and the Telegram bot from cfg.
func Bootstrap(ctx context.Context, cfg *Config) (_ *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	a := &App{cfg: cfg, texts: relay.DefaultTexts()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	var db *coredatabase.Config
	if cfg.Storage.Forwards == StoragePostgres {
		db = &cfg.Database
	}
	if a.infra, err = bootstrap.Run(ctx, bootstrap.Options{Config: &cfg.Config, Database: db}); err != nil {
		return nil, err
	}
	metrics.MustRegister(nil)

	if err = a.openStores(ctx); err != nil {
		return nil, err
	}

	tracker := payout.NewTracker(a.requests, cfg.Policy())
	a.router = relay.NewRouter(a.forwards, cfg.Support.GroupID, cfg.Retention())
	if cfg.Support.GroupID == 0 {
		logger.Warn(ctx, "app", "relay.staff_chat.missing",
			slog.String("hint", "set SUPPORT_GROUP_ID; /where in the staff group prints its id"),
		)
	}

	if a.bot, err = tg.NewBot(&cfg.Config); err != nil {
		return nil, err
	}
	a.dispatcher = sender.NewDispatcher(sender.Options{MaxRetries: 2})
	messenger := relaybot.NewMessenger(a.bot, a.dispatcher, a.texts)
	a.service = relay.NewService(tracker, a.router, messenger, a.texts)

	a.registry = tg.NewRegistry()
	if err = relaybot.NewHandlers(a.service).Register(a.registry); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}

	if cfg.HTTP.Listen != HTTPDisabled {
		if a.health, err = health.Listen(cfg.HTTP.Listen, prometheus.DefaultGatherer); err != nil {
			return nil, err
		}
	}
	if cfg.Retention() > 0 {
		if a.jobs, err = NewJobs(a.router, cfg.Storage.PruneInterval); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "app", "bootstrap.done",
		slog.String("requests_store", cfg.Storage.Requests),
		slog.String("forwards_store", cfg.Storage.Forwards),
		slog.Int64("staff_chat_id", cfg.Support.GroupID),
		slog.Duration("forward_retention", cfg.Retention()),
	)
	return a, nil
}

func (a *App) openStores(ctx context.Context) error {
	switch a.cfg.Storage.Requests {
	case StorageRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("app: redis ping %s: %w", a.cfg.Redis.Addr, err)
		}
		a.requests = payout.NewRedisStore(a.redis, a.cfg.Storage.RequestTTL)
	default:
		a.requests = payout.NewMemoryStore()
	}

	switch a.cfg.Storage.Forwards {
	case StoragePostgres:
		if a.infra == nil || a.infra.DB == nil {
			return fmt.Errorf("app: postgres forwards store without a database")
		}
		a.forwards = relay.NewPostgresForwardingStore(a.infra.DB)
	default:
		a.forwards = relay.NewMemoryForwardingStore()
	}
	return nil
}

// TelegramRunOptions assembles middlewares, routes and lifecycle hooks for the runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a.bot == nil || a.registry == nil {
		return tg.RunOptions{}, fmt.Errorf("app: not bootstrapped")
	}
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.MessageRoutes(a.registry, router.MessageOptions{})...)

	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    a.registry,
		Bot:         a.bot,
		Dispatcher:  a.dispatcher,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, a.onRateLimited),
		Routes:      routes,
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

func (a *App) onRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return tghelpers.Notify(c, a.texts.RateLimited)
	}
	return tghelpers.SendHTML(c, a.texts.RateLimited)
}

func (a *App) start(ctx context.Context, _ tg.Runtime) error {
	if a.health != nil {
		hctx, cancel := context.WithCancel(ctx)
		a.healthStop = cancel
		a.healthDone = make(chan struct{})
		go func() {
			defer close(a.healthDone)
			if err := a.health.Run(hctx); err != nil {
				logger.Error(hctx, "http", "http.serve.fail", slog.String("err", err.Error()))
			}
		}()
	}
	if a.jobs != nil {
		a.jobs.Start()
	}
	return nil
}

func (a *App) stop(context.Context, tg.Runtime) error {
	var errs []error
	if a.jobs != nil {
		errs = append(errs, a.jobs.Shutdown())
	}
	if a.healthStop != nil {
		a.healthStop()
		<-a.healthDone
	}
	return errors.Join(errs...)
}

// Close releases storage connections. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		if a.health != nil && a.healthDone == nil {
			errs = append(errs, a.health.Close())
		}
		if a.redis != nil {
			errs = append(errs, a.redis.Close())
		}
		if a.infra != nil {
			errs = append(errs, a.infra.Close())
		}
	})
	return errors.Join(errs...)
}
