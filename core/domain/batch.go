package domain

import "time"

// Batch is what one ingestion hands to the storage layer.
// Feed documents fill Document; OPML subscription lists fill Subscriptions.
type Batch struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"final_url,omitempty"`
	Format        Format        `json:"format"`
	Document      *FeedDocument `json:"document,omitempty"`
	Subscriptions []OpmlOutline `json:"subscriptions,omitempty"`
	FetchedAt     time.Time     `json:"fetched_at"`
}

// ItemCount returns the number of feed items in the batch
func (b *Batch) ItemCount() int {
	if b == nil || b.Document == nil {
		return 0
	}
	return len(b.Document.Items)
}
