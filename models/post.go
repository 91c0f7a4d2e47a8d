package models

import "fmt"

// MediaType selects the container parameter set for a post.
type MediaType string

const (
	MediaTypeText     MediaType = "TEXT"
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeCarousel MediaType = "CAROUSEL"
	MediaTypePoll     MediaType = "POLL"

	// MediaTypeAuto asks the pipeline to pick a postable type at
	// random for the run. It never reaches the container builder.
	MediaTypeAuto MediaType = "AUTO"
)

func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaTypeText, MediaTypeImage, MediaTypeVideo, MediaTypeCarousel, MediaTypePoll, MediaTypeAuto:
		return MediaType(s), nil
	}
	return "", fmt.Errorf("unknown media type %q", s)
}

// Poll is a question with 2-4 labeled options keyed option_a..option_d.
type Poll struct {
	Question string
	Options  map[string]string
}

// Draft is the generated content for one run. It is immutable once
// handed to the container builder.
type Draft struct {
	Text      string
	MediaType MediaType
	MediaURLs []string
	Poll      *Poll
}

// RunStage tags where in the pipeline a run succeeded or failed.
type RunStage string

const (
	StageTokenGuard      RunStage = "token_guard"
	StageGeneration      RunStage = "generation"
	StageMediaResolution RunStage = "media_resolution"
	StageContainerCreate RunStage = "container_create"
	StagePublish         RunStage = "publish"
	StageDone            RunStage = "done"
)

// RunResult is the terminal outcome of one pipeline run.
type RunResult struct {
	RunID     string
	MediaType MediaType
	PostID    string
	Stage     RunStage
	Err       error
}

func (r RunResult) Succeeded() bool {
	return r.Err == nil && r.PostID != ""
}
