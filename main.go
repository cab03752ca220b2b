package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"baluarte/api"
	"baluarte/config"
	"baluarte/database"
	"baluarte/logger"
	"baluarte/middleware"
	"baluarte/queue"
	"baluarte/router"
	"baluarte/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// @title Baluarte API
// @version 1.0
// @description Finanzas para pequeños negocios: categorías, transacciones, dashboard mensual y Plan PRO con Mercado Pago
// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "1.0.0"

var (
	configFile  string
	port        string
	showVersion bool
	testEmail   string
)

func init() {
	flag.StringVar(&configFile, "config", "", "external config file (optional)")
	flag.StringVar(&configFile, "c", "", "external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 5000 or :5000")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
	flag.StringVar(&testEmail, "test-email", "", "send a test email to this address and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("baluarte", version)
		return
	}

	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
	}

	log := logger.Setup(cfg.Log.Level, cfg.Server.Mode)
	config.PrintConfig(cfg)

	if testEmail != "" {
		if err := service.NewEmailService(&cfg.Email).SendTestEmail(testEmail); err != nil {
			log.Fatal().Err(err).Str("to", testEmail).Msg("test email failed")
		}
		log.Info().Str("to", testEmail).Msg("test email sent")
		return
	}

	if err := database.Init(cfg); err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	defer database.Close()

	middleware.InitJWT(cfg)

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway := service.NewMercadoPagoClient(cfg.MercadoPago.AccessToken,
		service.WithBaseURL(cfg.MercadoPago.BaseURL),
		service.WithTimeout(cfg.MercadoPago.Timeout),
		service.WithRateLimit(cfg.MercadoPago.RateLimit),
		service.WithLogger(log.With().Str("component", "mercadopago").Logger()),
	)
	if cfg.MercadoPago.AccessToken == "" {
		log.Warn().Msg("MP_ACCESS_TOKEN not set, checkout will fail")
	}

	emails := service.NewEmailService(&cfg.Email)
	upgrades := service.NewUpgradeService(gateway, emails, service.PlanCharge{
		Amount:   cfg.MercadoPago.PlanPrice,
		Currency: cfg.MercadoPago.Currency,
	}, log.With().Str("component", "upgrade").Logger())

	var (
		queueClient *queue.Client
		publisher   api.NotificationPublisher
	)
	if cfg.Queue.Enabled {
		c, err := queue.NewClient(cfg.Queue.URL, cfg.Queue.Exchange, cfg.Queue.Queue,
			log.With().Str("component", "queue").Logger())
		if err != nil {
			return fmt.Errorf("init queue: %w", err)
		}
		defer c.Close()
		queueClient = c
		publisher = c
	}

	payments := api.NewPaymentHandler(cfg.MercadoPago, gateway, upgrades, publisher,
		log.With().Str("component", "payments").Logger())

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.SetupRouter(cfg, log, payments),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("swagger", cfg.Server.BaseURL+"/swagger/index.html").
			Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if queueClient != nil {
		g.Go(func() error {
			return queueClient.ConsumePaymentNotifications(gctx, payments.HandleNotification)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
