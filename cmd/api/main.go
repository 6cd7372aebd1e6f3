// Package main (in api-subfolder) provides launch of the whole application except worker
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pixelmint/genmark/internal/kafka"
	"github.com/pixelmint/genmark/internal/mwlogger"
	"github.com/pixelmint/genmark/internal/repository"
	"github.com/pixelmint/genmark/internal/service"
	"github.com/pixelmint/genmark/internal/storage"
	"github.com/pixelmint/genmark/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	strg := storage.NewImgStorage(appConfig, 10*time.Second)
	repo := repository.NewPostgresGenerationRepo(dbConn)
	settingsRepo := repository.NewPostgresSettingsRepo(dbConn)

	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitKafkaReady(broker)
	topic := appConfig.GetString("KAFKA_TOPIC")
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	var svc GenerationAPIService = service.NewGenerationService(
		repo, pub, strg,
		appConfig.GetString("SOURCE_KEY"),
		appConfig.GetString("RESULT_KEY"),
	)
	settingsSvc := service.NewSettingsService(settingsRepo)
	inspector := service.NewInspector(repo, strg, appConfig.GetString("PUBLIC_BASE_URL"))

	handlers := transport.NewGenerationHandler(svc, settingsSvc, inspector, appConfig.GetString("ADMIN_TOKEN"))

	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/generations", handlers.Create)
	engine.GET("/generations/:id", handlers.LoadResult)
	engine.GET("/generations", handlers.GetAllGenerations) // paginated, sortable
	engine.DELETE("/generations/:id", handlers.Delete)

	engine.GET("/admin/watermarks", handlers.GetWatermarkSettings)
	engine.PUT("/admin/watermarks", handlers.PutWatermarkSettings)
	engine.GET("/admin/images/watermark", handlers.InspectWatermark)

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// background sweep re-queues generations stuck without a worker
	go recoveryLoop(ctx, svc)

	<-ctx.Done()

	shutdown(pub, dbConn)
	log.Println("Exiting app...")
}

func recoveryLoop(ctx context.Context, svc GenerationAPIService) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Recovery loop crashed:", r)
		}
	}()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.ReviveOrphans(context.Background(), 20)
		}
	}
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
