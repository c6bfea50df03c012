package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qrattend/internal/config"
	"qrattend/internal/export"
	"qrattend/internal/queue"
	"qrattend/internal/record"
	"qrattend/internal/store"
)

// Worker consumes accepted-mark messages, appends each record to the xlsx
// attendance register, and bumps a per-date counter for ops visibility.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "qrattend:marks")
	}

	register := export.NewRegister(cfg.RegisterPath)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for marks...")
	for msg := range messages {
		if msg.Type != queue.TypeMark {
			continue
		}

		var rec record.Record
		if err := json.Unmarshal(msg.Body, &rec); err != nil {
			log.Printf("bad mark message: %v", err)
			continue
		}
		log.Printf("registering %s for %s", rec.StudentID, rec.Date)

		if err := register.Append(rec); err != nil {
			log.Printf("register append failed for %s: %v", rec.StudentID, err)
		}

		if err := redisClient.Client.Incr(ctx, "qrattend:count:"+rec.Date).Err(); err != nil {
			log.Printf("count incr failed: %v", err)
		}
	}

	log.Println("worker stopped")
}
