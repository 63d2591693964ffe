package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/pantry/internal/adapter/handler"
	"github.com/rl1809/pantry/internal/adapter/memory"
	"github.com/rl1809/pantry/internal/adapter/storage"
	"github.com/rl1809/pantry/internal/config"
	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/core/service"
	"github.com/rl1809/pantry/internal/metrics"
	"github.com/rl1809/pantry/internal/port"
)

// DemoUserID is the user created when running on the in-memory store.
const DemoUserID = "00000000-0000-0000-0000-000000000001"

// UserAdmin extends the user directory with the writes used by seeding.
type UserAdmin interface {
	port.UserDirectory
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) error
}

// App holds the wired services and the resources they depend on.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Services  handler.Services
	Generator *service.RecipeGenerator
	Users     UserAdmin
	Registry  *prometheus.Registry

	closers []func() error
}

type backend struct {
	products  port.ProductStore
	index     port.SearchIndex
	pantry    port.PantryRepository
	recipes   port.RecipeRepository
	favorites port.FavoriteRepository
	users     UserAdmin
}

// New connects the configured store and wires the services on top of it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{Config: cfg, Logger: logger, Registry: reg}

	var (
		b   backend
		err error
	)
	switch cfg.Store {
	case "memory":
		b, err = a.memoryBackend(ctx)
	default:
		b, err = a.mysqlBackend(ctx)
	}
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []service.Option{service.WithLogger(logger), service.WithMetrics(metrics.New(reg))}
	resolver := service.NewProductResolver(b.products, b.index, opts...)
	recipes := service.NewRecipeService(b.users, b.recipes, b.pantry, resolver, cfg.Match.TopN, opts...)

	a.Users = b.users
	a.Generator = service.NewRecipeGenerator(recipes, nil)
	a.Services = handler.Services{
		Resolver:  resolver,
		Pantry:    service.NewPantryService(b.users, b.pantry, resolver, opts...),
		Recipes:   recipes,
		Favorites: service.NewFavoriteService(b.users, b.recipes, b.favorites),
	}
	return a, nil
}

func (a *App) memoryBackend(ctx context.Context) (backend, error) {
	products := memory.NewProductStore()
	recipes := memory.NewRecipeStore()
	users := memory.NewUserStore()
	demo := domain.User{ID: DemoUserID, Email: "demo@example.com", FullName: "Demo User", CreatedAt: time.Now().UTC()}
	if err := users.Create(ctx, demo); err != nil {
		return backend{}, fmt.Errorf("create demo user: %w", err)
	}
	a.Logger.Info("using in-memory store", zap.String("demo_user_id", DemoUserID))

	return backend{
		products:  products,
		index:     memory.NewSearchIndex(),
		pantry:    memory.NewPantryStore(products),
		recipes:   recipes,
		favorites: memory.NewFavoriteStore(recipes),
		users:     users,
	}, nil
}

func (a *App) mysqlBackend(ctx context.Context) (backend, error) {
	db, err := storage.OpenMySQL(ctx, a.Config.MySQL)
	if err != nil {
		return backend{}, err
	}
	a.closers = append(a.closers, db.Close)
	a.Logger.Info("connected to mysql")

	rdb := storage.NewRedisClient(a.Config.Redis)
	a.closers = append(a.closers, rdb.Close)
	index := storage.NewRedisSearchIndex(rdb, a.Config.Search)
	if err := rdb.Ping(ctx).Err(); err != nil {
		// resolution degrades to store-only lookups while redis is down
		a.Logger.Warn("redis unavailable, product search disabled until it recovers", zap.Error(err))
	} else if err := index.EnsureIndex(ctx); err != nil {
		a.Logger.Warn("search index not created", zap.Error(err))
	} else {
		a.Logger.Info("connected to redis", zap.String("index", a.Config.Search.Index))
	}

	m := storage.NewMySQLAdapter(db)
	return backend{
		products:  m.Products,
		index:     index,
		pantry:    m.Pantry,
		recipes:   m.Recipes,
		favorites: m.Favorites,
		users:     m.Users,
	}, nil
}

// HTTPHandler returns the chi router with /metrics served from the app registry.
func (a *App) HTTPHandler() http.Handler {
	metricsHandler := promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry})
	return handler.NewHTTPHandler(a.Services, a.Logger, a.Config.Request.Timeout).Router(metricsHandler)
}

// GRPCServer returns a server with the pantry service registered.
func (a *App) GRPCServer() *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryInterceptor(a.Logger, a.Config.Request.Timeout)))
	handler.RegisterPantryServer(srv, handler.NewGRPCHandler(a.Services, a.Logger))
	return srv
}

// EnsureUser returns the user registered under email, creating it when missing.
func (a *App) EnsureUser(ctx context.Context, email, fullName string) (domain.User, error) {
	u, err := a.Users.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("find user %s: %w", email, err)
	}

	u = domain.User{ID: uuid.NewString(), Email: email, FullName: fullName, CreatedAt: time.Now().UTC()}
	err = a.Users.Create(ctx, u)
	if errors.Is(err, domain.ErrConflict) {
		return a.Users.FindByEmail(ctx, email)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user %s: %w", email, err)
	}
	return u, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
