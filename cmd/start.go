package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/racedirector/client"
	"github.com/luma/racedirector/director"
	"github.com/luma/racedirector/internal/env"
	"github.com/luma/racedirector/internal/meta"
	"github.com/luma/racedirector/storage"
	"github.com/luma/racedirector/transport"
)

var (
	// The local address to receive datagrams on, overrides ACCD_BIND_ADDR
	bindAddr string

	// The broadcasting server, overrides ACCD_DESTINATION_ADDR
	destinationAddr string

	// The address to listen for http requests on
	httpAddr string
)

func init() {
	flags := StartCmd.PersistentFlags()

	flags.StringVarP(&bindAddr, "bind", "b", "", "The local host:port to receive datagrams on")
	flags.StringVarP(&destinationAddr, "destination", "d", "", "The host:port of the broadcasting server")
	flags.StringVar(&httpAddr, "http-addr", "0.0.0.0:7362", "The host:port to listen to HTTP requests on")
}

var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Connect to a broadcasting server and start directing",
	Long: `Connect to a broadcasting server and start directing

Usage
	racedirector start --destination 127.0.0.1:9000

`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer signalStop()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		if bindAddr != "" {
			conf.BindAddr = bindAddr
		}

		if destinationAddr != "" {
			conf.DestinationAddr = destinationAddr
		}

		log, err := env.MakeLogger(conf.Debug)
		if err != nil {
			return err
		}

		defer func() {
			_ = log.Sync()
		}()

		// Restore default behavior on the interrupt signal once shutdown starts
		go func() {
			<-ctx.Done()
			signalStop()
		}()

		return serve(ctx, conf, httpAddr, log)
	},
}

// serve runs a session until ctx is done or the session fails. A session that
// cannot even send its registration request is a failure.
func serve(ctx context.Context, conf *env.Config, httpAddr string, log *zap.Logger) (err error) {
	host, portStr, err := net.SplitHostPort(conf.BindAddr)
	if err != nil {
		return fmt.Errorf("Invalid bind address '%s': %w", conf.BindAddr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("Invalid bind port '%s': %w", portStr, err)
	}

	socket, err := transport.Listen(transport.Options{
		Host:      host,
		Port:      port,
		Reuseport: conf.Reuseport,
		Log:       log.Named("transport"),
	})
	if err != nil {
		return err
	}

	conn, err := client.New(client.Config{
		ProtocolVersion:    conf.ProtocolVersion,
		DisplayName:        conf.DisplayName,
		ConnectionPassword: conf.ConnectionPassword,
		CommandPassword:    conf.CommandPassword,
		UpdateInterval:     conf.UpdateInterval,
		Destination:        conf.DestinationAddr,
		ResyncInterval:     conf.ResyncInterval,
		Trace:              conf.Trace,
	}, socket, log.Named("client"))
	if err != nil {
		return multierr.Append(err, socket.Close())
	}

	store := storage.NewInmemoryStore(log.Named("storage"))
	defer store.Close()

	dir := director.New(conn, store, log.Named("director"))
	handlers := []transport.Handler{dir}

	if conf.NATSURL != "" {
		nc, err := director.DialNATS(conf.NATSURL, log.Named("nats"))
		if err != nil {
			return multierr.Append(fmt.Errorf("Failed to connect to NATS: %w", err), socket.Close())
		}

		defer func() {
			if err := nc.Drain(); err != nil {
				log.Warn("NATS connection did not drain cleanly", zap.Error(err))
			}
		}()

		handlers = append(handlers, director.NewPublisher(nc, conf.NATSSubject, log.Named("nats")))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	loop := transport.NewLoop(conn, socket, transport.NewMetrics(registry), log.Named("loop"), handlers...)

	router := setupRouter(conf.DebugHTTP, log)

	// Ping test
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, meta.GetInfo())
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	dir.RegisterRoutes(router)

	s := &http.Server{
		Addr:    httpAddr,
		Handler: router,
	}

	// Initializing the server in a goroutine so that
	// it won't block the graceful shutdown handling below
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Http server errored", zap.Error(err))
		}
	}()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(loopCtx)
	}()

	log.Info("Listening",
		zap.String("bind", conf.BindAddr),
		zap.String("destination", conf.DestinationAddr),
		zap.String("httpAddr", httpAddr),
		zap.String("version", meta.Version))

	if err = conn.RequestConnection(); err != nil {
		log.Error("Failed to request a connection", zap.Error(err))

		stopLoop()
		err = multierr.Append(err, <-loopDone)
	} else {
		// Listen for the interrupt signal, or for the loop dying on us.
		select {
		case <-ctx.Done():
			log.Info("Shutting down gracefully, press Ctrl+C again to force")

			conn.Disconnect()
			stopLoop()
			err = multierr.Append(err, <-loopDone)

		case loopErr := <-loopDone:
			log.Error("Receive loop stopped", zap.Error(loopErr))
			err = multierr.Append(err, loopErr)
		}
	}

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.SetKeepAlivesEnabled(false)

	if serr := s.Shutdown(shutdownCtx); serr != nil {
		log.Error("Http server forced to shutdown", zap.Error(serr))
		err = multierr.Append(err, serr)
	}

	log.Info("Exiting")
	return err
}

func setupRouter(debugHTTP bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - RFC3339 with UTC time format.
	r.Use(ginzap.GinzapWithConfig(log.Named("http"), &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping", "/metrics"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}
