package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/Arlan-Askar/Messenger_Hub/internal/config"
	"github.com/Arlan-Askar/Messenger_Hub/internal/database"
	"github.com/Arlan-Askar/Messenger_Hub/internal/handlers"
	"github.com/Arlan-Askar/Messenger_Hub/internal/realtime"
	"github.com/Arlan-Askar/Messenger_Hub/internal/repository"
	"github.com/Arlan-Askar/Messenger_Hub/internal/repository/memory"
	"github.com/Arlan-Askar/Messenger_Hub/internal/scheduler"
	"github.com/Arlan-Askar/Messenger_Hub/internal/services"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
	"github.com/rs/cors"
)

func main() {
	useMemory := flag.Bool("mem", false, "run with in-memory stores instead of MongoDB")
	flag.Parse()

	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// --- Stores ---
	var (
		userStore    services.UserStore
		recordStore  services.FriendRecordStore
		requestStore services.FriendRequestStore
		messageStore services.MessageStore
	)
	if *useMemory {
		logger.Log.Info("Running with in-memory stores")
		userStore = memory.NewUsers()
		recordStore = memory.NewFriendRecords()
		requestStore = memory.NewFriendRequests()
		messageStore = memory.NewMessages()
	} else {
		db, err := database.ConnectDB(cfg)
		if err != nil {
			log.Fatalf("Database connection error: %v", err)
		}
		userStore = repository.NewUserRepository(db)
		recordStore = repository.NewFriendRecordRepository(db)
		requestStore = repository.NewFriendRequestRepository(db)
		messageStore = repository.NewMessageRepository(db)
	}

	// --- Realtime ---
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)

	// --- Services ---
	userService := services.NewUserService(userStore)
	friendService := services.NewFriendService(userStore, recordStore, requestStore, dispatcher)
	messageService := services.NewMessageService(messageStore, recordStore, dispatcher)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg.JWTSecret)
	friendHandler := handlers.NewFriendHandler(friendService)
	messageHandler := handlers.NewMessageHandler(messageService)
	chatHandler := handlers.NewChatHandler(messageService, registry, cfg.JWTSecret)

	router := handlers.NewRouter(userHandler, friendHandler, messageHandler, chatHandler, cfg.JWTSecret)

	// Background sweep of settled friend requests
	scheduler.StartMaintenanceJobs(friendService, cfg.RequestPurgeAge)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
