// Package usecase contains application-level services.
package usecase

import (
	"fmt"
	"strings"

	"github.com/tesso57/feedlist/internal/domain/subscription"
)

// SubscriptionRepository abstracts persistence for feed subscriptions.
type SubscriptionRepository interface {
	List() ([]string, error)
	Add(url string) error
	Remove(index int) error
}

// GroupedSubscriptionRepository is implemented by repositories that persist feed groups.
type GroupedSubscriptionRepository interface {
	SubscriptionRepository
	ListGroups() ([]subscription.FeedGroup, error)
	ReplaceFeedGroups(groups []subscription.FeedGroup, ungrouped []string) error
}

// SubscriptionService provides subscription-related operations.
type SubscriptionService struct {
	Repo SubscriptionRepository
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository) SubscriptionService {
	return SubscriptionService{Repo: repo}
}

// List returns all ungrouped feed URLs.
func (s SubscriptionService) List() ([]string, error) {
	return s.Repo.List()
}

// Add registers a new feed URL and returns the updated list.
func (s SubscriptionService) Add(url string) ([]string, error) {
	trimmed, err := normalizeFeedURL(url)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Add(trimmed); err != nil {
		return nil, err
	}
	return s.Repo.List()
}

// Remove deletes a feed by index and returns the updated list.
func (s SubscriptionService) Remove(index int) ([]string, error) {
	if err := s.Repo.Remove(index); err != nil {
		return nil, err
	}
	return s.Repo.List()
}

// ListGroups returns feed groups. supported is false when the repository has no group support.
func (s SubscriptionService) ListGroups() (groups []subscription.FeedGroup, supported bool, err error) {
	grouped, ok := s.Repo.(GroupedSubscriptionRepository)
	if !ok {
		return nil, false, nil
	}
	groups, err = grouped.ListGroups()
	return groups, true, err
}

// ReplaceFeedGroups stores groups and ungrouped feeds and returns the ungrouped list.
func (s SubscriptionService) ReplaceFeedGroups(groups []subscription.FeedGroup, ungrouped []string) (feeds []string, supported bool, err error) {
	grouped, ok := s.Repo.(GroupedSubscriptionRepository)
	if !ok {
		return nil, false, nil
	}
	if err := grouped.ReplaceFeedGroups(groups, ungrouped); err != nil {
		return nil, true, err
	}
	feeds, err = s.Repo.List()
	return feeds, true, err
}

// All returns every subscribed URL, grouped feeds first.
func (s SubscriptionService) All() ([]string, error) {
	groups, _, err := s.ListGroups()
	if err != nil {
		return nil, err
	}
	ungrouped, err := s.Repo.List()
	if err != nil {
		return nil, err
	}
	return subscription.FlattenGroups(groups, ungrouped), nil
}

func normalizeFeedURL(url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", fmt.Errorf("feed url is empty")
	}
	if strings.ContainsAny(trimmed, " \t\r\n") {
		return "", fmt.Errorf("feed url contains whitespace")
	}
	return trimmed, nil
}
