package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartController "github.com/latienda/backend/cart/controller"
	cartService "github.com/latienda/backend/cart/service"
	categoryController "github.com/latienda/backend/category/controller"
	categoryService "github.com/latienda/backend/category/service"
	"github.com/latienda/backend/internal/blacklist"
	"github.com/latienda/backend/internal/config"
	"github.com/latienda/backend/internal/constants"
	"github.com/latienda/backend/internal/infra"
	"github.com/latienda/backend/internal/log"
	"github.com/latienda/backend/internal/middleware"
	inOtel "github.com/latienda/backend/internal/otel"
	"github.com/latienda/backend/internal/repository"
	orderController "github.com/latienda/backend/order/controller"
	"github.com/latienda/backend/order/payment"
	orderService "github.com/latienda/backend/order/service"
	productController "github.com/latienda/backend/product/controller"
	productService "github.com/latienda/backend/product/service"
	userController "github.com/latienda/backend/user/controller"
	userService "github.com/latienda/backend/user/service"
)

func runServer(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "runServer")
	defer span.End()

	cfg := config.Get(c, constants.AppTienda)

	logger := log.Get(filepath.Join("/var/log/", constants.AppTienda+".log"), cfg.Application).
		With().
		Str(log.KeyAppName, constants.AppTienda).
		Str(log.KeyTag, "main runServer").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppTienda, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = inOtel.ShutdownOtel(c, shutdownFuncs)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "closing database").Logger()
		logger.Info().Msg("closing database")
		db.Close()
		logger.Info().Msg("closed database")
	}()
	queries := repository.New(db)
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "closing cache").Logger()
		logger.Info().Msg("closing cache")
		err = cache.Close()
		if err != nil {
			err = fmt.Errorf("failed closing cache with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("closed cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Use(
		otelmux.Middleware(constants.AppTienda),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	store := blacklist.NewStore(cache, time.Duration(cfg.Cache.BlacklistTtlSec)*time.Second)
	auth := mux.MiddlewareFunc(middleware.Auth(store))

	usrService := userService.NewUserService(db, queries, store, cfg.Application)
	crtService := cartService.NewCartService(db, queries)
	prdService := productService.NewProductService(db, queries, cache)
	ctgService := categoryService.NewCategoryService(db, queries)
	ordService := orderService.NewOrderService(
		db,
		queries,
		cache,
		payment.NewAuthorizer(cfg.Payment.AuthorizeURL),
	)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing controllers").Logger()
	logger.Info().Msg("initializing controllers")
	userController.AttachUserController(router, usrService, auth)
	cartController.AttachCartController(router, crtService, auth)
	productController.AttachProductController(router, prdService, auth)
	categoryController.AttachCategoryController(router, ctgService, auth)
	orderController.AttachOrderController(router, ordService, auth)
	logger.Info().Msg("initialized controllers")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext: func(net.Listener) context.Context {
			lg := logger.With().
				Reset().
				Timestamp().
				Caller().
				Stack().
				Str(log.KeyAppName, constants.AppTienda).
				Logger()
			c = lg.WithContext(c)
			return c
		},
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "shutting down server").Logger()
		logger.Info().Msg("shutting down server")
		err = server.Shutdown(c)
		if err != nil {
			err = fmt.Errorf("failed shutting down server with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown server")
	}()
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running server", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown server")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interruption signal shutting down")
}
