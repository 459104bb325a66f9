package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mydiaerrors "github.com/alxayo/mydia-p2p/internal/errors"
	"github.com/alxayo/mydia-p2p/internal/logger"
	"github.com/alxayo/mydia-p2p/internal/p2p/host"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		// flag package already printed usage/error
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	logger.Init()
	if err := logger.SetLevel(cfg.logLevel); err != nil {
		fmt.Printf("Warning: invalid log level %q, using default\n", cfg.logLevel)
	}
	log := logger.Logger().With("component", "cli")

	h, nodeID, err := host.New(host.Config{
		RelayURL:    cfg.relayURL,
		BindPort:    int(cfg.bindPort),
		KeypairPath: cfg.keypairPath,
	})
	if err != nil {
		log.Error("failed to start host", "error", mydiaerrors.Reduce(err))
		os.Exit(1)
	}

	log.Info("host started", "node_id", nodeID, "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range h.Events() {
			printEvent(ev)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h.Close()
	select {
	case <-done:
		log.Info("host stopped cleanly")
	case <-shutdownCtx.Done():
		log.Error("forced exit after timeout")
	}
}

// printEvent writes straight to stdout rather than through slog's default
// logger: the host's log bridge forwards every record logged through
// slog.Default as a Log event, so printing events back through it would
// feed them into the bridge and loop forever. Embedders that want structured
// sinks for these events are expected to consume Events() directly and
// wire their own sink.
func printEvent(ev host.Event) {
	fmt.Fprintln(os.Stdout, ev.String())
}
