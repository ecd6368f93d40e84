// Package subscription defines feed subscription models.
package subscription

import "time"

// Subscription represents a single feed subscription.
type Subscription struct {
	URL   string
	Group string
}

// FeedGroup represents a named collection of feed URLs.
type FeedGroup struct {
	Name  string   `yaml:"name"`
	Feeds []string `yaml:"feeds"`
}

// FeedList is a parsed subscription-list document.
type FeedList struct {
	Title   *string
	Entries []FeedEntry
}

// TitleText returns the title, or an empty string when absent.
func (l FeedList) TitleText() string {
	return deref(l.Title)
}

// FeedEntry is one subscribable feed reference from a FeedList.
// Every field is optional.
type FeedEntry struct {
	Label   *string
	FeedURL *string
	// Category is the text of the enclosing outline, if any.
	Category *string
}

// LabelText returns the label, or an empty string when absent.
func (e FeedEntry) LabelText() string {
	return deref(e.Label)
}

// URLText returns the feed URL, or an empty string when absent.
func (e FeedEntry) URLText() string {
	return deref(e.FeedURL)
}

// CategoryText returns the category, or an empty string when absent.
func (e FeedEntry) CategoryText() string {
	return deref(e.Category)
}

// ImportRun records the outcome of importing one document.
type ImportRun struct {
	ID          string
	Source      string
	Title       string
	Entries     int
	Added       int
	Duplicates  int
	Invalid     int
	Unreachable int
	DryRun      bool
	ImportedAt  time.Time
}

// FlattenGroups returns grouped feeds first, then ungrouped feeds.
func FlattenGroups(groups []FeedGroup, ungrouped []string) []string {
	total := len(ungrouped)
	for _, group := range groups {
		total += len(group.Feeds)
	}
	result := make([]string, 0, total)
	for _, group := range groups {
		result = append(result, group.Feeds...)
	}
	result = append(result, ungrouped...)
	return result
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
