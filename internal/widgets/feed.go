package widgets

import (
	"context"

	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/infrastructure/logging"
)

// ClassFeed identifies the external headline feed widget.
const ClassFeed = "reportdeck/widgets/feed"

// Item limits accepted by the feed widget.
const (
	minFeedLimit     = 1
	maxFeedLimit     = 20
	defaultFeedLimit = 5
)

// Item is one headline of a fetched feed.
type Item struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Fetcher retrieves the feed document behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]Item, error)
}

// Feed shows headlines pulled from an external JSON feed. A widget must
// always render, so fetch failures degrade to an empty item list with an
// error note instead of failing the surrounding request.
type Feed struct {
	widget.Base
	fetcher Fetcher
	logger  *logging.Logger
}

// NewFeed creates a feed widget. fetcher may be nil, which renders the feed
// as disabled.
func NewFeed(fetcher Fetcher, logger *logging.Logger) *Feed {
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Feed{fetcher: fetcher, logger: logger}
	w.Base = widget.NewBase([]widget.PropertyDef{
		{Name: "title", Params: map[string]interface{}{
			"label": "Title", "type": "text", "default": "Headlines",
		}},
		{Name: "source_url", Params: map[string]interface{}{
			"label": "Feed URL", "type": "text", "default": "",
		}},
		{Name: "limit", Params: map[string]interface{}{
			"label": "Items shown", "type": "text", "default": defaultFeedLimit,
		}},
	})
	return w
}

// Render fetches and trims the feed.
func (w *Feed) Render(ctx context.Context) (widget.Fragment, error) {
	url := w.StringProp("source_url", "")
	limit := w.IntProp("limit", defaultFeedLimit)
	if limit < minFeedLimit {
		limit = minFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	data := map[string]interface{}{
		"items":  []Item{},
		"source": url,
	}
	fragment := widget.Fragment{
		Kind:  "feed",
		Title: w.StringProp("title", "Headlines"),
		Data:  data,
	}

	switch {
	case url == "":
		data["error"] = "no feed URL configured"
	case w.fetcher == nil:
		data["error"] = "feed fetching is disabled"
	default:
		items, err := w.fetcher.Fetch(ctx, url)
		if err != nil {
			w.logger.Warn("Feed fetch failed",
				zap.String("url", url),
				zap.Error(err))
			data["error"] = "feed unavailable"
			break
		}
		if len(items) > limit {
			items = items[:limit]
		}
		data["items"] = items
	}

	return fragment, nil
}

// FeedDefinition returns the registry entry.
func FeedDefinition(fetcher Fetcher, logger *logging.Logger) widget.Definition {
	return widget.Definition{
		Class:       ClassFeed,
		Title:       "Headlines",
		Description: "Headlines from an external feed",
		New:         func() widget.Widget { return NewFeed(fetcher, logger) },
	}
}
