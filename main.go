package main

import (
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/seismic-health/telemed-signaling/pkg/config"
	"github.com/seismic-health/telemed-signaling/pkg/signaling"
	"github.com/seismic-health/telemed-signaling/pkg/upload"
	"github.com/seismic-health/telemed-signaling/pkg/util"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; the browser client is served elsewhere.
		return true
	},
}

// corsMiddleware allows cross-origin requests from the web client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	util.Init()
	cfg := config.Load()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	registry := signaling.NewRegistry(cfg.AutoCreateRooms)
	controller := signaling.NewController(registry, []string{cfg.STUNServer})
	go controller.Run()

	var store upload.BlobStore
	if cfg.AzureConnectionString != "" {
		azure, err := upload.NewAzureStore(cfg.AzureConnectionString, cfg.AzureContainer)
		if err != nil {
			util.Fatal("Blob storage setup failed: %v", err)
		}
		store = azure
	} else {
		util.Warn("No storage connection string configured, keeping uploads in memory")
		store = upload.NewMemoryStore()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(registry.ActiveRooms())
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			util.Error("WebSocket upgrade failed: %v", err)
			return
		}
		peerID := uuid.NewString()
		signaling.NewClient(peerID, conn, controller)
		util.Info("WebSocket connection established: peer %s from %s", peerID, r.RemoteAddr)
	})
	mux.Handle("POST /upload-chunk/{sessionId}/{chunkIndex}", upload.NewHandler(store))

	addr := ":" + cfg.Port
	util.Info("Starting signaling server on %s", addr)
	go func() {
		if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
			util.Fatal("Error starting server: %v", err)
		}
	}()

	<-stop
	util.Info("Shutting down server...")
}
