package services

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"threads-autoposter/internal/ai"
	"threads-autoposter/internal/config"
	"threads-autoposter/internal/logger"
	"threads-autoposter/internal/media"
	"threads-autoposter/internal/state"
	"threads-autoposter/internal/threads"
	"threads-autoposter/models"
)

// Poster runs the posting pipeline end to end:
// token guard -> content generation (+ media resolution) ->
// container creation -> processing wait -> publish.
//
// Runs are strictly sequential; a single concurrent run is the only
// supported scenario. The credential and counter files are opened
// without locking.
type Poster struct {
	cfg       *config.Config
	llm       *ai.Client
	resolver  *media.Resolver
	guard     *threads.Guard
	publisher *threads.Publisher
}

func NewPoster(cfg *config.Config) *Poster {
	creds := threads.NewCredentialStore(cfg.ThreadsAccessToken, cfg.EnvFile)
	client := threads.NewClient(cfg, creds)

	return &Poster{
		cfg:      cfg,
		llm:      ai.NewClient(cfg),
		resolver: media.NewResolver(cfg),
		guard:    threads.NewGuard(client, cfg.RefreshThresholdDays),
		publisher: threads.NewPublisher(
			client,
			threads.FixedDelayWait{Delay: time.Duration(cfg.ProcessingWaitSec) * time.Second},
			time.Duration(cfg.PollPublishWaitSec)*time.Second,
		),
	}
}

// Run executes one pipeline run for the requested media type. Image
// and carousel requests share one path: the day's resolved asset count
// decides between a single image post, a carousel, or a text fallback.
func (p *Poster) Run(ctx context.Context, mediaType models.MediaType) models.RunResult {
	runID := uuid.NewString()
	log := logger.With("run_id", runID)

	day, err := state.ReadCounter(p.cfg.CounterFile)
	if err != nil {
		log.Warn("Reading day counter failed, using 0", "error", err)
		day = 0
	}
	log.Info("Starting post run", "media_type", string(mediaType), "day", day)

	p.guard.EnsureFresh(ctx)

	draft := p.buildDraft(ctx, log, mediaType, day)

	postID, stage, err := p.publisher.Publish(ctx, draft)
	result := models.RunResult{
		RunID:     runID,
		MediaType: draft.MediaType,
		PostID:    postID,
		Stage:     stage,
		Err:       err,
	}

	if result.Succeeded() {
		log.Info("✅ Post published successfully", "post_id", postID, "media_type", string(draft.MediaType))
	} else {
		log.Error("❌ Post run failed", "stage", string(stage), "error", err)
	}
	return result
}

// buildDraft assembles the immutable draft for this run. Generation
// and media resolution never abort a run: missing assets degrade the
// draft (image/video fall back to a text post) and malformed poll
// output is replaced with a default poll.
func (p *Poster) buildDraft(ctx context.Context, log *slog.Logger, mediaType models.MediaType, day int) *models.Draft {
	if mediaType == models.MediaTypeAuto {
		choices := []models.MediaType{models.MediaTypeText, models.MediaTypeImage, models.MediaTypeVideo}
		mediaType = choices[rand.Intn(len(choices))]
		log.Info("Selected media type at random", "media_type", string(mediaType))
	}

	switch mediaType {
	case models.MediaTypePoll:
		prompt := state.ReadPrompt(p.cfg.PollPrompt)
		text := p.llm.Generate(ctx, prompt)
		poll, err := ai.ParsePoll(text)
		if err != nil {
			log.Warn("Generated poll unusable, using default poll", "error", err)
			poll = ai.DefaultPoll()
		}
		return &models.Draft{MediaType: models.MediaTypePoll, Poll: poll}

	case models.MediaTypeImage, models.MediaTypeCarousel:
		text := ai.SanitizeText(p.llm.GenerateCaption(ctx, state.ReadPrompt(p.cfg.CaptionPrompt)))
		urls := p.resolver.ImagesForDay(ctx, day)
		log.Info("Resolved image assets", "day", day, "count", len(urls))
		switch {
		case len(urls) == 1:
			return &models.Draft{MediaType: models.MediaTypeImage, Text: text, MediaURLs: urls}
		case len(urls) >= 2:
			return &models.Draft{MediaType: models.MediaTypeCarousel, Text: text, MediaURLs: urls}
		default:
			log.Warn("No image assets for the day, falling back to text post", "day", day)
			return &models.Draft{MediaType: models.MediaTypeText, Text: text}
		}

	case models.MediaTypeVideo:
		text := ai.SanitizeText(p.llm.GenerateCaption(ctx, state.ReadPrompt(p.cfg.CaptionPrompt)))
		url := p.resolver.VideoForDay(ctx, day)
		if url == "" {
			log.Warn("No video asset for the day, falling back to text post", "day", day)
			return &models.Draft{MediaType: models.MediaTypeText, Text: text}
		}
		return &models.Draft{MediaType: models.MediaTypeVideo, Text: text, MediaURLs: []string{url}}

	default:
		text := ai.SanitizeText(p.llm.GenerateCaption(ctx, state.ReadPrompt(p.cfg.CaptionPrompt)))
		return &models.Draft{MediaType: models.MediaTypeText, Text: text}
	}
}
