package appcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/api"
	"github.com/RoyceAzure/lab/storefront/internal/infra/cache"
	"github.com/RoyceAzure/lab/storefront/internal/infra/changefeed"
	"github.com/RoyceAzure/lab/storefront/internal/infra/persist"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/rs/zerolog"
)

const publisherCloseTimeout = 15 * time.Second

type ApplicationContext struct {
	Cf             *config.Config
	Logger         *zerolog.Logger
	Client         *api.Client
	Store          *store.Store
	Persist        *persist.Adapter
	Publisher      *changefeed.Publisher
	AuthService    *service.AuthService
	CatalogService *service.CatalogService
	CartService    *service.CartService
	OrderService   *service.OrderService

	detach  []func()
	closers []func() error
}

// NewApplicationContext 建立所有依賴，並在回傳前完成 store 還原
func NewApplicationContext(ctx context.Context, cf *config.Config, logger *zerolog.Logger) (*ApplicationContext, error) {
	if cf == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	app := ApplicationContext{
		Cf:     cf,
		Logger: logger,
	}
	if err := app.Init(ctx); err != nil {
		app.Shutdown(ctx)
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	app.setUpClient()
	app.setUpStore()

	if err := app.setUpPersistence(ctx); err != nil {
		return err
	}
	app.setUpChangefeed()
	app.setUpServices()
	return nil
}

func (app *ApplicationContext) setUpClient() {
	app.Client = api.NewClient(app.Cf.ApiBaseUrl,
		api.WithTimeout(app.Cf.HttpTimeout),
		api.WithLogger(app.Logger),
	)
}

func (app *ApplicationContext) setUpStore() {
	app.Store = store.New(
		store.WithOrdersFetcher(app.Client),
		store.WithStaleGuard(app.Cf.DiscardStaleOrders),
		store.WithLogger(app.Logger),
	)
}

// 先還原再掛上 write-through，避免還原本身又寫回一次
func (app *ApplicationContext) setUpPersistence(ctx context.Context) error {
	backend, err := app.newBackend(ctx)
	if err != nil {
		return err
	}
	if backend == nil {
		app.Logger.Debug().Msg("persistence disabled")
		return nil
	}

	app.Persist = persist.NewAdapter(backend, app.Cf.PersistNamespace, app.Logger)
	if err := app.Persist.Rehydrate(ctx, app.Store); err != nil {
		return err
	}
	app.detach = append(app.detach, app.Persist.Attach(app.Store))
	return nil
}

func (app *ApplicationContext) newBackend(ctx context.Context) (persist.Backend, error) {
	switch app.Cf.PersistBackend {
	case config.PersistNone:
		return nil, nil
	case config.PersistFile:
		return persist.NewFileBackend(app.Cf.PersistDir)
	case config.PersistRedis:
		addr := app.Cf.RedisAddr
		client := cache.GetRedisClient(addr,
			cache.WithPassword(app.Cf.RedisPassword),
			cache.WithDB(app.Cf.RedisDB),
		)
		app.closers = append(app.closers, func() error {
			return cache.CloseRedisClient(addr)
		})
		c := cache.NewRedisCache(client, "storefront")
		// 啟動時先確認連線，避免錯誤延後到 rehydrate 才出現
		if _, err := c.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping redis %s: %w", addr, err)
		}
		return persist.NewRedisBackend(c), nil
	case config.PersistPostgres:
		db, err := persist.OpenPostgres(app.Cf.PostgresDsn)
		if err != nil {
			return nil, err
		}
		backend, err := persist.NewDBBackend(db)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, backend.Close)
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown persist backend %q", app.Cf.PersistBackend)
	}
}

func (app *ApplicationContext) setUpChangefeed() {
	brokers := app.Cf.Brokers()
	if len(brokers) == 0 {
		return
	}
	w := changefeed.NewKafkaWriter(changefeed.Config{
		Brokers: brokers,
		Topic:   app.Cf.KafkaTopic,
	}, app.Logger)
	app.Publisher = changefeed.NewPublisher(w, app.Logger)
	app.Publisher.Start()
	app.detach = append(app.detach, app.Store.Subscribe(app.Publisher.Listener()))
	app.Logger.Info().Strs("brokers", brokers).Str("topic", app.Cf.KafkaTopic).Msg("change feed enabled")
}

func (app *ApplicationContext) setUpServices() {
	app.AuthService = service.NewAuthService(app.Store, app.Client, app.Logger)
	app.CatalogService = service.NewCatalogService(app.Store, app.Client, app.Logger)
	app.CartService = service.NewCartService(app.Store, app.Client, app.Logger)
	app.OrderService = service.NewOrderService(app.Store, app.Client, app.Cf.DeliveryChargeDecimal(), app.Logger)
}

// Shutdown 取消訂閱後關閉外部資源
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	for _, d := range app.detach {
		d()
	}
	app.detach = nil

	var errs []error
	if app.Publisher != nil {
		timeout := publisherCloseTimeout
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := app.Publisher.Close(timeout); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range app.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
