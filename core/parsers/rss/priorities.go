package rss

// Candidate element names for timestamps, most preferred first.
// Matching is case-insensitive, see record.Resolve.
var (
	publishedKeys = []string{
		"pubDate",
		"published",
		"dc:date",
		"atom:published",
		"dcterms:issued",
		"dcterms:created",
		"issued",
		"created",
	}

	updatedKeys = []string{
		"atom:updated",
		"updated",
		"dc:modified",
		"dcterms:modified",
		"modified",
		"lastBuildDate",
	}
)

// PublishedPriority returns the candidate names used for publishedAt
func PublishedPriority() []string {
	return append([]string(nil), publishedKeys...)
}

// UpdatedPriority returns the candidate names used for updatedAt
func UpdatedPriority() []string {
	return append([]string(nil), updatedKeys...)
}
