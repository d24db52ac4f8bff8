package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/infrastructure/httpapi"
	"github.com/shekharshaurya-coder/finalWork/infrastructure/ws"
	"github.com/shekharshaurya-coder/finalWork/internal"
	"github.com/shekharshaurya-coder/finalWork/moderation"
	"github.com/shekharshaurya-coder/finalWork/repositories"
	"github.com/shekharshaurya-coder/finalWork/runtime"
	"github.com/shekharshaurya-coder/finalWork/runtime/workers"
	"github.com/shekharshaurya-coder/finalWork/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so that every defer executes before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censoredChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge index...")
		_ = writer.Close()
	}()

	// 3. Moderation
	loader := runtime.NewCensoredLoader()
	censored, err := loader.LoadAll("censored")
	if err != nil {
		return fmt.Errorf("loading censored words failed: %w", err)
	}
	log.Info("Censored words loaded", "languages", censored.Languages, "count", len(censored.Words))

	moderator, err := moderation.NewModerator(censored.Words, censoredChar)
	if err != nil {
		return fmt.Errorf("building moderator failed: %w", err)
	}

	// 4. Core wiring
	registry := runtime.NewRegistry()
	presence := runtime.NewPresence(log, registry)
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	index := repositories.NewMessageIndex(writer, log)

	offline := make(chan domain.Message, config.OfflineHookSize)

	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)
	messageService := services.NewMessageService(log, messageRepository, userRepository,
		index, registry, &moderator, offline, config.MaxContentLength)
	receiptService := services.NewReceiptService(log, messageRepository, registry)
	conversationService := services.NewConversationService(log, messageRepository,
		userRepository, receiptService)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers
	sup := workers.NewSupervisor(log)
	sup.Add(
		workers.NewNotifierWorker(log, offline, workers.LogNotifier{Log: log}),
		workers.NewHealthMonitoringWorker(log, config.MetricInterval),
	)
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 7. HTTP + websocket surface
	wsServer := ws.NewServer(log, authService, presence, messageService, receiptService,
		config.ConnectionBufferSize, config.WriteTimeout)
	api := httpapi.NewServer(log, authService, messageService, conversationService, index)

	mux := api.Routes()
	mux.Handle("GET /ws", wsServer)

	if config.DebugPort != nil {
		internal.StartDebugServer(db, *config.DebugPort, nil, func() map[string]any {
			return map[string]any{"online_users": len(registry.Snapshot())}
		})
		log.Info("Debug inspector started", "port", *config.DebugPort)
	}

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
