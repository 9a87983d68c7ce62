package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/nexuslabs/nexus-agents/ai"
	"github.com/nexuslabs/nexus-agents/api"
	"github.com/nexuslabs/nexus-agents/config"
	"github.com/nexuslabs/nexus-agents/core"
	"github.com/nexuslabs/nexus-agents/hcs"
	"github.com/nexuslabs/nexus-agents/simulation"
	"github.com/nexuslabs/nexus-agents/storage"
)

func main() {
	apiPort := flag.Int("api-port", 3000, "API server port")
	natsPort := flag.Int("nats-port", 4222, "Embedded NATS server port")
	dataDir := flag.String("data-dir", "", "Data directory (default $NEXUS_DATA_DIR or ./data)")
	fresh := flag.Bool("fresh", false, "Ignore any persisted snapshot and start clean")
	flag.Parse()

	config.Load()

	dir := *dataDir
	if dir == "" {
		dir = config.DataDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Embedded NATS server: the simulated HCS topic lives in-process, no
	// external daemon required.
	ns, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   *natsPort,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		log.Fatalf("Failed to create NATS server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		log.Fatalf("NATS server did not become ready")
	}
	defer ns.Shutdown()

	messenger, err := hcs.NewMessenger(ns.ClientURL())
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer messenger.Close()

	store, err := storage.Open(dir)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer store.Close()

	hub := api.NewHub()
	generator := ai.NewGenerator(config.OpenAIKey())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sim := simulation.New(simulation.DefaultConfig(), generator, rng,
		simulation.WithNotifier(hub),
		simulation.WithHCSMessenger(messenger),
		simulation.WithSaver(func(snap *core.Snapshot) {
			if err := store.Save(snap); err != nil {
				log.Printf("Failed to save snapshot: %v", err)
			}
		}),
	)

	if !*fresh {
		snap, err := store.Load()
		if err != nil {
			log.Printf("Ignoring unreadable snapshot: %v", err)
		} else if snap != nil {
			sim.Restore(snap)
			log.Printf("Restored snapshot from %s (%d agents)", snap.SavedAt.Format(time.RFC3339), len(snap.Agents))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sim.Run(ctx)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		// Give the loop a moment to flush its final snapshot.
		time.Sleep(500 * time.Millisecond)
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *apiPort)
	log.Printf("Nexus Agents simulation node listening on %s (NATS on %s)", addr, ns.ClientURL())
	server := api.NewServer(sim, hub)
	if err := server.Run(addr); err != nil {
		log.Fatalf("API server failed: %v", err)
	}
}
