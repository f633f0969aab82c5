package harvest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/courtside-ml/takeforge/pkg/corpus"
	"github.com/courtside-ml/takeforge/pkg/logging"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

// DetailExpander fetches the top comments of a post that crossed the
// engagement threshold and maps them to comment RawItems. An unavailable
// comments resource simply yields no comments; the post itself is kept.
type DetailExpander struct {
	fetcher *Fetcher
	config  *pipeline.HarvestConfig
	logger  zerolog.Logger
}

// NewDetailExpander creates an expander sharing the crawler's fetcher
func NewDetailExpander(fetcher *Fetcher, config *pipeline.HarvestConfig) *DetailExpander {
	return &DetailExpander{
		fetcher: fetcher,
		config:  config,
		logger:  logging.GetLogger("expander"),
	}
}

// FetchComments retrieves up to CommentsPerPost top-scoring comments for a
// post. The comments endpoint returns a two-element array: the post listing
// followed by the comment listing.
func (e *DetailExpander) FetchComments(ctx context.Context, subreddit, postID, postTitle string) ([]corpus.RawItem, error) {
	endpoint := fmt.Sprintf("%s/r/%s/comments/%s.json", e.config.BaseURL, subreddit, postID)
	params := url.Values{
		"sort":  {"top"},
		"limit": {strconv.Itoa(e.config.CommentsPerPost)},
	}

	payload, err := e.fetcher.FetchJSON(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	listings, ok := payload.([]any)
	if !ok || len(listings) < 2 {
		if payload != nil {
			e.logger.Warn().
				Str("post_id", postID).
				Msg("Unexpected comments payload shape, skipping")
		}
		return nil, nil
	}

	var comments []corpus.RawItem
	for _, child := range ListingChildren(listings[1]) {
		comment, ok := ExtractComment(child, postTitle)
		if !ok {
			continue
		}
		comments = append(comments, comment)
		if len(comments) >= e.config.CommentsPerPost {
			break
		}
	}
	return comments, nil
}
