// mpdgoweb serves a browser dashboard for an MPD daemon: library browsing,
// playback control, album art, and live status and queue updates pushed
// over websockets.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"mpdgoweb/internal/artcache"
	"mpdgoweb/internal/config"
	"mpdgoweb/internal/daemon"
	"mpdgoweb/internal/web"
)

var version = "dev"

const (
	placeholderName = "lp.png"
	artTTL          = 30 * 24 * time.Hour
	shutdownGrace   = 5 * time.Second
)

func main() {
	var (
		f           config.Flags
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&f.ConfigPath, "config", "", "path to config file")
	flag.StringVar(&f.MPDHost, "mpdhost", "", "MPD host <address>")
	flag.IntVar(&f.MPDPort, "mpdport", 0, "MPD host <port>")
	flag.StringVar(&f.MPDSocket, "mpdsocket", "", "MPD unix socket <path>")
	flag.StringVar(&f.MPDPass, "mpdpass", "", "MPD server password")
	flag.StringVar(&f.Listen, "listen", "", "HTTP listen <address:port>")
	flag.StringVar(&f.Assets, "assets", "", "static assets <dir>")
	flag.StringVar(&f.LogPath, "log", "", "write logs to file instead of stderr")
	flag.BoolVar(&f.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&showHelp, "help", false, "Print help and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("mpdgoweb version %s\n", version)
		return
	}
	if showHelp {
		fmt.Printf("mpdgoweb version %s\n\n", version)
		fmt.Println("Usage: mpdgoweb [flags]")
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// must come before any other log line
	if cfg.LogPath != "" {
		lf, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("failed to open log file %s: %v", cfg.LogPath, err)
		}
		defer lf.Close()
		log.SetOutput(lf)
	}

	if cfg.File.Exists {
		log.Printf("[main] config: %s", cfg.File.Path)
	} else if cfg.Verbose {
		log.Printf("[main] config: %s not found", cfg.File.Path)
	}
	log.Printf("[main] mpd at %s", cfg.MPDAddr())

	connector := daemon.NewConnector(cfg.MPDAddr(), cfg.MPDPass)
	connector.Verbose = cfg.Verbose

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []artcache.Option{
		artcache.WithPlaceholder(artcache.LoadPlaceholder(filepath.Join(cfg.Assets, placeholderName))),
		artcache.WithVerbose(cfg.Verbose),
	}
	if store := openRedis(ctx, cfg); store != nil {
		defer store.Close()
		opts = append(opts, artcache.WithStore(store))
	}
	art := artcache.New(daemon.ArtSource{Dialer: connector}, opts...)

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: web.NewRouter(&web.Server{
			Dialer:  connector,
			Art:     art,
			Assets:  cfg.Assets,
			Verbose: cfg.Verbose,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] listening on %s", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("[main] shutdown requested")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Printf("[main] shutdown: %v", err)
		}
	}
	log.Println("[main] exiting")
} // func main()

// openRedis returns the persistent art tier, or nil when it is not
// configured or not reachable. The server runs without it either way.
func openRedis(ctx context.Context, cfg *config.Config) *artcache.RedisStore {
	if !cfg.RedisEnabled() {
		return nil
	}
	client, err := artcache.DialRedis(ctx, artcache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Printf("[main] redis disabled: %v", err)
		return nil
	}
	log.Printf("[main] art store: redis %s:%d/%d", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)
	return artcache.NewRedisStore(client, artTTL)
}
