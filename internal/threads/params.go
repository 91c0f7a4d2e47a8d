package threads

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"threads-autoposter/models"
)

// Container parameter shaping per media type. This is the single
// source of truth for which parameters each container kind carries:
//
//	TEXT           text
//	IMAGE          image_url, text
//	VIDEO          video_url, text
//	carousel item  image_url, is_carousel_item=true (no text)
//	CAROUSEL       children=<comma-joined ids>, text (optional)
//	POLL           text, poll_attachment=<2-4 option JSON mapping>

func draftParams(draft *models.Draft) (url.Values, error) {
	params := url.Values{}
	params.Set("media_type", string(draft.MediaType))

	switch draft.MediaType {
	case models.MediaTypeText:
		params.Set("text", draft.Text)

	case models.MediaTypeImage:
		if len(draft.MediaURLs) != 1 {
			return nil, fmt.Errorf("image draft requires exactly one URL, got %d", len(draft.MediaURLs))
		}
		params.Set("image_url", draft.MediaURLs[0])
		params.Set("text", draft.Text)

	case models.MediaTypeVideo:
		if len(draft.MediaURLs) != 1 {
			return nil, fmt.Errorf("video draft requires exactly one URL, got %d", len(draft.MediaURLs))
		}
		params.Set("video_url", draft.MediaURLs[0])
		params.Set("text", draft.Text)

	case models.MediaTypePoll:
		if draft.Poll == nil {
			return nil, fmt.Errorf("poll draft has no poll")
		}
		if n := len(draft.Poll.Options); n < 2 || n > 4 {
			return nil, fmt.Errorf("poll must have between 2 and 4 options, got %d", n)
		}
		attachment, err := json.Marshal(draft.Poll.Options)
		if err != nil {
			return nil, fmt.Errorf("serializing poll options: %w", err)
		}
		params.Set("media_type", string(models.MediaTypeText))
		params.Set("text", draft.Poll.Question)
		params.Set("poll_attachment", string(attachment))

	case models.MediaTypeCarousel:
		return nil, fmt.Errorf("carousel parents are built from item container ids, not drafts")

	default:
		return nil, fmt.Errorf("unknown media type %q", draft.MediaType)
	}

	return params, nil
}

func carouselItemParams(imageURL string) url.Values {
	params := url.Values{}
	params.Set("media_type", string(models.MediaTypeImage))
	params.Set("is_carousel_item", "true")
	params.Set("image_url", imageURL)
	return params
}

func carouselParams(children []string, text string) url.Values {
	params := url.Values{}
	params.Set("media_type", string(models.MediaTypeCarousel))
	params.Set("children", strings.Join(children, ","))
	if text != "" {
		params.Set("text", text)
	}
	return params
}
