// Command docgraph-web serves the docgraph JSON API and websocket feed.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/docgraph/internal/config"
	"github.com/scrypster/docgraph/internal/logging"
	"github.com/scrypster/docgraph/internal/server"
	"github.com/scrypster/docgraph/internal/services"
	"github.com/scrypster/docgraph/internal/storage/memory"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults plus DOCGRAPH_* environment when empty)")
	samples := flag.Bool("samples", false, "load the sample bank policies when the graph is empty")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, addr, err := startServer(ctx, cfg, *samples)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	log.Printf("docgraph API running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	if err := svc.Save(""); err != nil {
		log.Printf("Failed to save graph: %v", err)
	}
	cancel()
	time.Sleep(500 * time.Millisecond) // let in-flight requests finish
}

// startServer loads the persisted graph, optionally the samples, and starts
// serving. The assistant is optional: a configuration error disables chat
// instead of failing startup.
func startServer(ctx context.Context, cfg *config.Config, loadSamples bool) (*services.GraphService, string, error) {
	store := memory.NewGraphStore()
	assistant, err := services.NewAssistant(cfg.LLM, store)
	if err != nil {
		log.Printf("chat disabled: %v", err)
	}
	svc := services.NewGraphService(cfg, store, assistant)

	if _, err := svc.Load(""); err != nil {
		return nil, "", err
	}
	if loadSamples && store.Stats().EntityCount == 0 {
		if _, err := svc.LoadSamples(""); err != nil {
			return nil, "", err
		}
	}

	addr, _, err := server.Start(ctx, cfg, svc)
	if err != nil {
		return nil, "", err
	}
	return svc, addr, nil
}
