package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/leonardcser/kvcache/internal/cache"
	"github.com/leonardcser/kvcache/internal/config"
	"github.com/leonardcser/kvcache/internal/logger"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cached: %v\n", err)
		os.Exit(1)
	}

	if cfg.Log != "" {
		err = logger.Init(cfg.Log)
	} else {
		err = logger.InitFromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cached: init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	policy, err := cfg.EvictionPolicy()
	if err != nil {
		logger.Errorf("eviction policy: %v", err)
		os.Exit(1)
	}
	store := cache.New[[]byte](cfg.Capacity, cache.WithPolicy(policy))

	// Ensure socket dir exists and remove stale socket
	_ = os.MkdirAll(filepath.Dir(cfg.Socket), 0o755)
	_ = os.Remove(cfg.Socket)

	l, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		logger.Errorf("listen %s: %v", cfg.Socket, err)
		os.Exit(1)
	}
	_ = os.Chmod(cfg.Socket, 0o600)

	logger.Infof("cached listening on %s (capacity=%d policy=%s)", cfg.Socket, cfg.Capacity, cfg.Policy)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		cache.Serve(l, cache.NewLocal(store))
	}()

	if interval := time.Duration(cfg.StatsInterval); interval > 0 {
		go statsLoop(store, interval, done)
	}

	<-stop
	logger.Infof("shutting down")
	_ = l.Close()
	<-done
	_ = os.Remove(cfg.Socket)
}

// statsLoop periodically logs occupancy. It observes, never expires: entries
// only leave the cache through reads, deletes, and eviction.
func statsLoop(store *cache.Cache[[]byte], interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			logger.Infof("stats: entries=%d", store.Len())
		}
	}
}
