package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Threads Graph API
	AppID              string
	AppSecret          string
	APIVersion         string
	ThreadsUserID      string
	ThreadsAccessToken string
	ThreadsBaseURL     string

	// LLM endpoint (OpenAI-compatible)
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// Rendered media asset hosting
	RenderBaseImageURL string
	RenderBaseVideoURL string

	// Local state files
	EnvFile       string
	CounterFile   string
	CaptionPrompt string
	PollPrompt    string

	// Behaviour
	RefreshThresholdDays int
	ProcessingWaitSec    int
	PollPublishWaitSec   int
	MaxImageProbes       int
	HTTPTimeoutSec       int

	// Scheduler / status server
	Port         string
	GinMode      string
	ScheduleCron string
}

func LoadConfig() (*Config, error) {
	// Load the env file if it exists
	envFile := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading %s file: %v", envFile, err)
		}
	}

	cfg := &Config{
		AppID:              getEnv("APP_ID", ""),
		AppSecret:          getEnv("APP_SECRET", ""),
		APIVersion:         getEnv("API_VERSION", "v1.0"),
		ThreadsUserID:      getEnv("THREADS_USER_ID", ""),
		ThreadsAccessToken: getEnv("THREADS_ACCESS_TOKEN", ""),
		ThreadsBaseURL:     getEnv("THREADS_BASE_URL", "https://graph.threads.net"),

		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMBaseURL: getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:   getEnv("LLM_MODEL", "deepseek/deepseek-chat-v3-0324:free"),

		RenderBaseImageURL: getEnv("RENDER_BASE_IMAGE_URL", ""),
		RenderBaseVideoURL: getEnv("RENDER_BASE_VIDEO_URL", ""),

		EnvFile:       envFile,
		CounterFile:   getEnv("COUNTER_FILE", "counter.txt"),
		CaptionPrompt: getEnv("CAPTION_PROMPT_FILE", "prompts/prompt_image_video.txt"),
		PollPrompt:    getEnv("POLL_PROMPT_FILE", "prompts/prompt_polls.txt"),

		RefreshThresholdDays: getEnvInt("TOKEN_REFRESH_THRESHOLD_DAYS", 2),
		ProcessingWaitSec:    getEnvInt("PROCESSING_WAIT_SECONDS", 30),
		PollPublishWaitSec:   getEnvInt("POLL_PUBLISH_WAIT_SECONDS", 60),
		MaxImageProbes:       getEnvInt("MAX_IMAGE_PROBES", 20),
		HTTPTimeoutSec:       getEnvInt("HTTP_TIMEOUT_SECONDS", 30),

		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "release"),
		ScheduleCron: getEnv("SCHEDULE_CRON", "0 9 * * *"),
	}

	// Validate required fields
	if cfg.ThreadsUserID == "" {
		return nil, fmt.Errorf("THREADS_USER_ID is required")
	}

	if cfg.ThreadsAccessToken == "" {
		return nil, fmt.Errorf("THREADS_ACCESS_TOKEN is required")
	}

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
