package threads

import (
	"context"
	"fmt"
	"time"

	"threads-autoposter/internal/logger"
	"threads-autoposter/models"
)

// WaitPolicy decides how long to wait for the platform to finish
// asynchronous processing of a created container. The platform offers
// no completion callback or ready-poll endpoint, so the default policy
// is a fixed sleep; swapping in real status polling only needs a new
// implementation here.
type WaitPolicy interface {
	AwaitProcessing(ctx context.Context, containerID string) error
}

// FixedDelayWait sleeps a constant duration regardless of container.
type FixedDelayWait struct {
	Delay time.Duration
}

func (w FixedDelayWait) AwaitProcessing(ctx context.Context, containerID string) error {
	logger.Info("Waiting for container processing", "container_id", containerID, "delay", w.Delay.String())
	select {
	case <-time.After(w.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoWait skips the processing wait. Used by tests.
type NoWait struct{}

func (NoWait) AwaitProcessing(ctx context.Context, containerID string) error { return nil }

// Publisher drives a draft through the publication state machine:
//
//	DRAFTED -> CONTAINER_CREATED -> PROCESSING_WAIT -> PUBLISHED
//
// with FAILED absorbing any transition. Container-creation and publish
// failures are terminal for the run; individual carousel items are the
// only partial-failure the machine tolerates.
type Publisher struct {
	client          *Client
	wait            WaitPolicy
	pollSettleDelay time.Duration
}

func NewPublisher(client *Client, wait WaitPolicy, pollSettleDelay time.Duration) *Publisher {
	return &Publisher{
		client:          client,
		wait:            wait,
		pollSettleDelay: pollSettleDelay,
	}
}

// Publish runs the state machine for the draft and returns the
// published post id, or the stage at which the run failed.
func (p *Publisher) Publish(ctx context.Context, draft *models.Draft) (string, models.RunStage, error) {
	if draft.MediaType == models.MediaTypeCarousel {
		return p.publishCarousel(ctx, draft)
	}

	containerID, err := p.client.CreateContainer(ctx, draft)
	if err != nil {
		return "", models.StageContainerCreate, err
	}
	logger.Info("Media container created", "container_id", containerID, "media_type", string(draft.MediaType))

	if err := p.wait.AwaitProcessing(ctx, containerID); err != nil {
		return "", models.StageContainerCreate, err
	}

	postID, err := p.client.PublishContainer(ctx, containerID)
	if err != nil {
		return "", models.StagePublish, err
	}

	if draft.MediaType == models.MediaTypePoll && p.pollSettleDelay > 0 {
		// Poll posts get an extra settle delay after publish before the
		// process exits.
		logger.Info("Waiting for poll post to settle", "delay", p.pollSettleDelay.String())
		select {
		case <-time.After(p.pollSettleDelay):
		case <-ctx.Done():
		}
	}

	return postID, models.StageDone, nil
}

// publishCarousel creates one item container per child URL, tolerating
// individual failures, then wraps the survivors in a parent container
// and publishes it. Zero surviving items fails the run before any
// parent container is attempted.
func (p *Publisher) publishCarousel(ctx context.Context, draft *models.Draft) (string, models.RunStage, error) {
	var itemIDs []string
	for _, u := range draft.MediaURLs {
		itemID, err := p.client.CreateItemContainer(ctx, u)
		if err != nil {
			logger.Warn("Skipping failed carousel item", "url", u, "error", err)
			continue
		}
		logger.Info("Carousel item container created", "container_id", itemID, "url", u)
		itemIDs = append(itemIDs, itemID)
	}

	if len(itemIDs) == 0 {
		return "", models.StageContainerCreate, fmt.Errorf("error creating media container: no carousel item containers were created")
	}

	if err := p.wait.AwaitProcessing(ctx, "carousel-items"); err != nil {
		return "", models.StageContainerCreate, err
	}

	carouselID, err := p.client.CreateCarouselContainer(ctx, itemIDs, draft.Text)
	if err != nil {
		return "", models.StageContainerCreate, err
	}
	logger.Info("Carousel container created", "container_id", carouselID, "items", len(itemIDs))

	if err := p.wait.AwaitProcessing(ctx, carouselID); err != nil {
		return "", models.StageContainerCreate, err
	}

	postID, err := p.client.PublishContainer(ctx, carouselID)
	if err != nil {
		return "", models.StagePublish, err
	}
	return postID, models.StageDone, nil
}
