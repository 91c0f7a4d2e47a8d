package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"threads-autoposter/internal/config"
	"threads-autoposter/internal/logger"
	"threads-autoposter/internal/schedule"
	"threads-autoposter/internal/state"
	"threads-autoposter/models"
	"threads-autoposter/services"
)

// lastRun is what /status reports. Only the scheduler goroutine writes
// it; the mutex covers the status endpoint reads.
type lastRun struct {
	mu        sync.Mutex
	At        time.Time `json:"at"`
	RunID     string    `json:"run_id"`
	MediaType string    `json:"media_type"`
	PostID    string    `json:"post_id,omitempty"`
	Stage     string    `json:"stage"`
	Error     string    `json:"error,omitempty"`
}

func main() {
	mediaTypeFlag := flag.String("type", "auto", "media type to post: text, image, video, poll, auto")
	flag.Parse()

	mediaType, err := models.ParseMediaType(strings.ToUpper(*mediaTypeFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -type: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger.InitLogger(cfg)

	poster := services.NewPoster(cfg)
	status := &lastRun{}

	runOnce := func() error {
		result := poster.Run(context.Background(), mediaType)

		// The day counter tracks scheduled executions, successful or
		// not, so tomorrow's run picks tomorrow's assets.
		day, err := state.ReadCounter(cfg.CounterFile)
		if err == nil {
			if err := state.WriteCounter(cfg.CounterFile, day+1); err != nil {
				logger.Warn("Incrementing day counter failed", "error", err)
			}
		} else {
			logger.Warn("Reading day counter for increment failed", "error", err)
		}

		status.mu.Lock()
		status.At = time.Now()
		status.RunID = result.RunID
		status.MediaType = string(result.MediaType)
		status.PostID = result.PostID
		status.Stage = string(result.Stage)
		if result.Err != nil {
			status.Error = result.Err.Error()
		} else {
			status.Error = ""
		}
		status.mu.Unlock()
		return result.Err
	}

	scheduler := schedule.NewScheduler()
	if err := scheduler.ScheduleCron("daily-post", cfg.ScheduleCron, runOnce); err != nil {
		log.Fatal("Failed to schedule posting job: ", err)
	}
	scheduler.Start()
	logger.Info("Posting scheduler started", "cron", cfg.ScheduleCron, "media_type", string(mediaType))

	// Status server
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	router.GET("/status", func(c *gin.Context) {
		status.mu.Lock()
		defer status.mu.Unlock()
		if status.RunID == "" {
			c.JSON(http.StatusOK, gin.H{"status": "no runs yet"})
			return
		}
		c.JSON(http.StatusOK, status)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Status server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start status server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down scheduler")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Status server forced to shutdown: ", err)
	}
}
