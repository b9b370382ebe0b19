package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"hsse_platform/internal/global"
	"hsse_platform/internal/logger"
	"hsse_platform/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Khởi tạo logger với cấu hình mặc định
	// Logger sẽ tự động đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server trên main goroutine
func main_thread() {
	app := InitFiberApp()

	cfg := global.ServerConfig
	log := logger.GetAppLogger()

	log.WithFields(map[string]interface{}{
		"address":  cfg.Address,
		"protocol": "HTTP",
	}).Info("Starting Fiber server...")

	if err := app.Listen(cfg.Address, fiber.ListenConfig{}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục (config, validator, database, firebase)
	InitGlobal()

	// Khởi tạo registry collections
	InitRegistry()

	// Khởi tạo dữ liệu mặc định (templates, senders)
	InitDefaultData()

	// Wire evaluator từ các service và channel sender
	InitEvaluator()

	log := logger.GetAppLogger()

	// Chạy Escalation Worker (background - quét rules và bắn notification định kỳ)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := time.Duration(global.ServerConfig.EscalationIntervalSeconds) * time.Second
	escalationWorker := worker.NewEscalationWorker(Evaluator, interval)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("🚨 [ESCALATION] Worker goroutine panic, worker đã dừng")
			}
		}()

		escalationWorker.Start(ctx)
	}()
	log.Info("🚨 [ESCALATION] Escalation Worker started successfully")

	// Chạy Fiber server trên main thread
	main_thread()
}
