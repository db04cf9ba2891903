package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/y-maeda1116/FlowPrint/internal/config"
	"github.com/y-maeda1116/FlowPrint/internal/serverapp"
)

func main() {
	configPath := flag.String("config", "flowprint.yml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg = config.FromEnv(cfg)

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("flowprint listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, handler))
}
