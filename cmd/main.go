package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"threads-autoposter/internal/config"
	"threads-autoposter/internal/logger"
	"threads-autoposter/models"
	"threads-autoposter/services"
)

// Exit codes per failure stage. The deployed predecessor communicated
// outcomes through console messages only; cron and systemd need codes.
const (
	exitOK              = 0
	exitConfig          = 1
	exitContainerCreate = 3
	exitPublish         = 4
)

func main() {
	mediaTypeFlag := flag.String("type", "text", "media type to post: text, image, video, poll, auto")
	flag.Parse()

	mediaType, err := models.ParseMediaType(strings.ToUpper(*mediaTypeFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -type: %v\n", err)
		os.Exit(exitConfig)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger.InitLogger(cfg)

	poster := services.NewPoster(cfg)
	result := poster.Run(context.Background(), mediaType)

	if result.Succeeded() {
		os.Exit(exitOK)
	}
	switch result.Stage {
	case models.StagePublish:
		os.Exit(exitPublish)
	default:
		os.Exit(exitContainerCreate)
	}
}
