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

// WorkUnit is one labelled crawl task: a search query or a sorted feed,
// tracked independently for completion and resumption
type WorkUnit struct {
	Label     string
	Subreddit string
	Endpoint  string
	Params    url.Values
}

// BuildWorkUnits expands a campaign into its concrete work units
func BuildWorkUnits(baseURL string, campaign pipeline.CampaignConfig) []WorkUnit {
	units := make([]WorkUnit, 0, len(campaign.Searches)+len(campaign.Feeds))

	for _, search := range campaign.Searches {
		units = append(units, WorkUnit{
			Label:     fmt.Sprintf("%s:%s", search.Subreddit, search.Query),
			Subreddit: search.Subreddit,
			Endpoint:  fmt.Sprintf("%s/r/%s/search.json", baseURL, search.Subreddit),
			Params: url.Values{
				"q":           {search.Query},
				"restrict_sr": {"on"},
				"sort":        {"top"},
				"t":           {"all"},
			},
		})
	}

	for _, feed := range campaign.Feeds {
		window := feed.TimeWindow
		if window == "" {
			window = "all"
		}
		units = append(units, WorkUnit{
			Label:     fmt.Sprintf("%s:__%s__", feed.Subreddit, feed.Sort),
			Subreddit: feed.Subreddit,
			Endpoint:  fmt.Sprintf("%s/r/%s/%s.json", baseURL, feed.Subreddit, feed.Sort),
			Params:    url.Values{"t": {window}},
		})
	}

	return units
}

// Crawler walks each work unit of one campaign page by page, streaming new
// raw items to the corpus sink. Execution is strictly sequential; the only
// shared mutable state is the checkpoint and the sink, both touched by this
// single thread of control.
type Crawler struct {
	fetcher  *Fetcher
	expander *DetailExpander
	store    *CheckpointStore
	config   *pipeline.HarvestConfig
	campaign pipeline.CampaignConfig
	logger   zerolog.Logger
}

// NewCrawler creates a crawler for one campaign
func NewCrawler(config *pipeline.HarvestConfig, campaign pipeline.CampaignConfig) *Crawler {
	fetcher := NewFetcher(config)
	return &Crawler{
		fetcher:  fetcher,
		expander: NewDetailExpander(fetcher, config),
		store:    NewCheckpointStore(campaign.CheckpointFile),
		config:   config,
		campaign: campaign,
		logger:   logging.GetLogger("crawler"),
	}
}

// Run executes every work unit of the campaign, skipping those already
// exhausted by a previous run. A failing unit is abandoned for this run with
// its progress checkpointed; the label stays incomplete so a future run
// retries it.
func (c *Crawler) Run(ctx context.Context) error {
	state, err := c.store.Load()
	if err != nil {
		return err
	}

	sink, err := OpenCorpusSink(c.campaign.OutputFile)
	if err != nil {
		return err
	}
	defer sink.Close()

	units := BuildWorkUnits(c.config.BaseURL, c.campaign)
	c.logger.Info().
		Str("campaign", c.campaign.Name).
		Int("work_units", len(units)).
		Int("seen_ids", state.SeenCount()).
		Int("completed", state.DoneCount()).
		Msg("Starting campaign")

	for _, unit := range units {
		if state.LabelDone(unit.Label) {
			c.logger.Info().Str("label", unit.Label).Msg("Skipping completed work unit")
			continue
		}

		unitLogger := logging.GetHarvestLogger(c.campaign.Name, unit.Label)
		unitLogger.Info().Msg("Crawling work unit")

		if err := c.crawlUnit(ctx, unit, state, sink); err != nil {
			if ctx.Err() != nil {
				// Best-effort preservation before shutdown
				c.saveProgress(state, sink)
				return err
			}
			unitLogger.Error().Err(err).Msg("Work unit failed, preserving progress")
			c.saveProgress(state, sink)
			continue
		}

		// Durability point: flush the corpus before the checkpoint so
		// seen_ids can never overstate what reached disk
		if err := sink.Flush(); err != nil {
			return err
		}
		if err := c.store.Save(state); err != nil {
			return err
		}
		unitLogger.Info().Int("total_items", state.SeenCount()).Msg("Work unit done")
	}

	c.logger.Info().
		Str("campaign", c.campaign.Name).
		Int("total_items", state.SeenCount()).
		Msg("Campaign finished")
	return nil
}

// crawlUnit pages through one listing until exhaustion, an unavailable page,
// or the page ceiling. Only an exhausted listing marks the label complete;
// hitting the ceiling saves the cursor for a deeper resume next run.
func (c *Crawler) crawlUnit(ctx context.Context, unit WorkUnit, state *CheckpointState, sink *CorpusSink) error {
	after := state.Cursor(unit.Label)
	exhausted := false

	for page := 0; page < c.campaign.MaxPages; page++ {
		params := clone(unit.Params)
		params.Set("limit", strconv.Itoa(c.config.PageSize))
		if after != "" {
			params.Set("after", after)
		}

		payload, err := c.fetcher.FetchJSON(ctx, unit.Endpoint, params)
		if err != nil {
			return err
		}
		if payload == nil {
			// Unavailable page: abandon the unit for this run, keep the
			// cursor so a future run retries from here
			return nil
		}

		children := ListingChildren(payload)
		if len(children) == 0 {
			exhausted = true
			break
		}

		for _, child := range children {
			post, ok := ExtractPost(child)
			if !ok {
				continue
			}
			if state.Seen(post.ID) {
				continue
			}
			post.Source = c.campaign.SourceTag

			if err := sink.Write(post); err != nil {
				return err
			}
			state.MarkSeen(post.ID)

			if post.NumComments >= c.campaign.CommentThreshold {
				if err := c.expandPost(ctx, unit, post, state, sink); err != nil {
					return err
				}
			}
		}

		if err := sink.Flush(); err != nil {
			return err
		}

		after = ListingAfter(payload)
		state.SetCursor(unit.Label, after)
		if after == "" {
			exhausted = true
			break
		}

		c.logger.Info().
			Str("label", unit.Label).
			Int("page", page+1).
			Int("total_items", state.SeenCount()).
			Msg("Page done")

		// Politeness interval between pages
		if err := sleepCtx(ctx, c.config.PageDelay); err != nil {
			return err
		}
	}

	if exhausted {
		state.MarkDone(unit.Label)
	}
	return nil
}

// expandPost fetches a post's top comments and emits the unseen ones
func (c *Crawler) expandPost(ctx context.Context, unit WorkUnit, post corpus.RawItem, state *CheckpointState, sink *CorpusSink) error {
	// Fixed delay before each detail fetch to avoid bursting
	if err := sleepCtx(ctx, c.config.DetailDelay); err != nil {
		return err
	}

	comments, err := c.expander.FetchComments(ctx, unit.Subreddit, post.ID, post.Title)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		if state.Seen(comment.ID) {
			continue
		}
		comment.Source = c.campaign.SourceTag
		if err := sink.Write(comment); err != nil {
			return err
		}
		state.MarkSeen(comment.ID)
	}
	return nil
}

// saveProgress flushes the sink then checkpoints, logging rather than
// failing: this runs on paths that are already abandoning a work unit
func (c *Crawler) saveProgress(state *CheckpointState, sink *CorpusSink) {
	if err := sink.Flush(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to flush corpus while preserving progress")
		return
	}
	if err := c.store.Save(state); err != nil {
		c.logger.Error().Err(err).Msg("Failed to save checkpoint while preserving progress")
	}
}

func clone(params url.Values) url.Values {
	copied := make(url.Values, len(params))
	for key, values := range params {
		copied[key] = append([]string(nil), values...)
	}
	return copied
}
