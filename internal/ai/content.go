package ai

import (
	"errors"
	"math/rand"
	"strings"

	"threads-autoposter/models"
)

// ErrInvalidPollFormat is returned when generated poll text has no
// question or fewer than two options. Callers substitute a default
// poll instead of failing the run.
var ErrInvalidPollFormat = errors.New("invalid poll format: a question and at least two options are required")

// SanitizeText removes markdown emphasis and quoting artifacts the
// platform may treat specially. Idempotent.
func SanitizeText(text string) string {
	filtered := strings.ReplaceAll(text, "*", "")
	filtered = strings.ReplaceAll(filtered, "\"", "")
	return filtered
}

var pollOptionPrefixes = []struct {
	prefix string
	key    string
}{
	{"Option A:", "option_a"},
	{"Option B:", "option_b"},
	{"Option C:", "option_c"},
	{"Option D:", "option_d"},
}

// ParsePoll scans generated text line by line for "Question:" and
// "Option A:".."Option D:" prefixes. Options are keyed
// option_a..option_d in encounter order.
func ParsePoll(text string) (*models.Poll, error) {
	var question string
	options := make(map[string]string)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Question:") {
			question = strings.TrimSpace(strings.TrimPrefix(line, "Question:"))
			continue
		}
		for _, p := range pollOptionPrefixes {
			if strings.HasPrefix(line, p.prefix) {
				options[p.key] = strings.TrimSpace(strings.TrimPrefix(line, p.prefix))
				break
			}
		}
	}

	if question == "" || len(options) < 2 {
		return nil, ErrInvalidPollFormat
	}

	return &models.Poll{Question: question, Options: options}, nil
}

// Fallback content used when generation fails or produces unparseable
// output. Kept as immutable package data so deployments can swap the
// lists without touching pipeline logic.
var fallbackCaptions = []string{
	"Some days you just have to create your own sunshine. ☀️",
	"Plot twist: today is going to be a good day.",
	"Collecting small joys like they are going out of style.",
	"Less scrolling, more living. Right after this post.",
	"Current status: caffeinated and unstoppable.",
	"Here is your sign to do the thing you keep putting off.",
	"Good things take time. Great things take coffee.",
	"Romanticizing the ordinary, one day at a time.",
}

var defaultPolls = []models.Poll{
	{
		Question: "Coffee or tea to start the day?",
		Options: map[string]string{
			"option_a": "Coffee",
			"option_b": "Tea",
			"option_c": "Both, no judgement",
		},
	},
	{
		Question: "Early bird or night owl?",
		Options: map[string]string{
			"option_a": "Early bird",
			"option_b": "Night owl",
		},
	},
	{
		Question: "Perfect weekend plan?",
		Options: map[string]string{
			"option_a": "Stay in",
			"option_b": "Go out",
			"option_c": "Road trip",
			"option_d": "Sleep",
		},
	},
	{
		Question: "Pick one for the rest of the year:",
		Options: map[string]string{
			"option_a": "More money",
			"option_b": "More free time",
		},
	},
	{
		Question: "Texting or calling?",
		Options: map[string]string{
			"option_a": "Texting",
			"option_b": "Calling",
			"option_c": "Voice notes",
		},
	},
}

// FallbackCaption returns a uniformly-chosen caption from the static
// fallback list.
func FallbackCaption() string {
	return fallbackCaptions[rand.Intn(len(fallbackCaptions))]
}

// DefaultPoll returns a uniformly-chosen poll from the static default
// list. The returned poll shares no state with the list.
func DefaultPoll() *models.Poll {
	p := defaultPolls[rand.Intn(len(defaultPolls))]
	options := make(map[string]string, len(p.Options))
	for k, v := range p.Options {
		options[k] = v
	}
	return &models.Poll{Question: p.Question, Options: options}
}
