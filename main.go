package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"dm-service/internal/auth"
	"dm-service/internal/db"
	"dm-service/internal/handlers"
	"dm-service/internal/middleware"
	"dm-service/internal/observability"
	"dm-service/internal/presence"
	"dm-service/internal/rabbitmq"
	"dm-service/internal/repositories"
	"dm-service/internal/router"
	"dm-service/internal/telemetry"
	"dm-service/internal/ws"
)

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := telemetry.InitTracing(context.Background(), "dm-service", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""))
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	amqpURL := getEnv("AMQP_URL", "")
	if eventsPublisher, err := observability.NewAMQPPublisher(amqpURL, getEnv("AMQP_EXCHANGE", "dm_events")); err != nil {
		log.Printf("ws event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventsPublisher)
		defer eventsPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(amqpURL, getEnv("AUDIT_EXCHANGE", "audit"))
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit_log.dm", "dm-service", getEnv("ENVIRONMENT", "dev"))

	verifier := auth.NewVerifier(getEnv("JWT_SECRET", "dev-secret"))

	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)

	registry := presence.NewRegistry()
	msgRouter := router.New(messageRepo, registry)

	messageHandler := handlers.NewMessageHandler(msgRouter, messageRepo)
	contactsHandler := handlers.NewContactsHandler(userRepo, registry)
	gateway := ws.NewGatewayHandler(registry, verifier)

	r := gin.Default()

	// middlewares
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("dm-service"))
	r.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	r.GET("/contacts", authMiddleware, contactsHandler.ListContacts)
	r.GET("/conversations/:peer_id/messages", authMiddleware, messageHandler.GetConversation)
	r.POST("/messages", authMiddleware, messageHandler.SendMessage)

	r.GET("/ws", gateway.Handle)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(r, auditEmitter, getEnv("DEBUG_ROUTES", "") == "1")

	port := getEnv("PORT", "8083")
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
