// Command snapshot renders one dashboard view in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"TraderExplorer/internal/presenter"
	"TraderExplorer/internal/services/analytics"
	"TraderExplorer/internal/usecase"
	"TraderExplorer/pkg/config"
	applogger "TraderExplorer/pkg/logger"
	"TraderExplorer/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	view := flag.String("view", presenter.ViewOverview, "view to render: overview|archetypes|footprint|labels|topics")
	trader := flag.String("trader", "", "trader id for the topics view")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// Diagnostics go to stderr so stdout carries only the rendered view.
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	fm, err := presenter.NewFormatter(cfg.Display.Locale)
	if err != nil {
		log.Fatalf("formatter: %v", err)
	}

	recorder := usecase.NewFetchRecorder(cfg.Upstream.BaseURL, metrics.New(prometheus.NewRegistry()), l, nil)
	catalog := presenter.NewCatalog(analytics.NewClient(cfg), fm, recorder)

	v, err := catalog.New(*view)
	if err != nil {
		l.Error("unknown view", applogger.Error(err), applogger.String("available", strings.Join(catalog.Names(), ", ")))
		return 2
	}
	defer v.Unmount()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	render := func(p presenter.Page) {
		mu.Lock()
		defer mu.Unlock()
		if err := presenter.WriteText(os.Stdout, p); err != nil {
			l.Error("write page error", applogger.Error(err))
		}
		fmt.Println()
	}
	unsubscribe := v.Subscribe(render)

	v.Mount(ctx)
	if v.Manual() {
		v.Trigger(ctx, presenter.TopicParams(*trader))
	}

	page, err := v.Wait(ctx)
	unsubscribe()
	if err != nil {
		l.Error("interrupted before the view settled", applogger.Error(err))
		return 130
	}
	if page.Failed() {
		return 1
	}
	return 0
}
