package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tesso57/feedlist/internal/domain/subscription"
)

// DocumentFetcher downloads subscription documents.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}

// FeedProber checks that feed URLs can be fetched and parsed.
type FeedProber interface {
	ProbeAll(ctx context.Context, urls []string, opt ProbeOptions) ([]ProbeResult, ProbeReport)
}

// ImportLog records import runs.
type ImportLog interface {
	Record(ctx context.Context, run subscription.ImportRun) (subscription.ImportRun, error)
	Recent(ctx context.Context, limit int) ([]subscription.ImportRun, error)
}

// ListParser turns raw document bytes into a feed list.
type ListParser func(data []byte) (*subscription.FeedList, error)

// ProbeOptions controls concurrent feed probing.
type ProbeOptions struct {
	Concurrency   int
	RatePerSecond float64
	Timeout       time.Duration
}

// ProbeResult is the outcome of probing one URL.
type ProbeResult struct {
	URL   string
	Title string
	Err   error
}

// ProbeReport summarizes a probe batch.
type ProbeReport struct {
	Requested int
	Succeeded int
	Failed    int
	TimedOut  int
}

// ImportOptions controls how a feed list is merged into subscriptions.
type ImportOptions struct {
	// Group puts every imported feed in the named group.
	Group string
	// GroupByTitle uses the document title as the group name.
	GroupByTitle bool
	// GroupByCategory uses each entry's enclosing outline as the group name.
	GroupByCategory bool
	Probe           bool
	DryRun          bool
}

// ImportResult describes what an import did, or would do for a dry run.
type ImportResult struct {
	Source      string
	List        *subscription.FeedList
	Added       []subscription.Subscription
	Duplicates  []string
	Invalid     []subscription.FeedEntry
	Unreachable []ProbeResult
	Probe       ProbeReport
	Run         subscription.ImportRun
}

// ImportService loads feed lists and merges them into subscriptions.
type ImportService struct {
	Subscriptions SubscriptionService
	Parse         ListParser
	Fetcher       DocumentFetcher
	Prober        FeedProber
	Log           ImportLog
	Logger        logrus.FieldLogger
	ProbeOptions  ProbeOptions
	ReadFile      func(name string) ([]byte, error)
	Now           func() time.Time
}

// Preview loads and parses a document from a local path or http(s) URL.
func (s ImportService) Preview(ctx context.Context, source string) (*subscription.FeedList, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("source is empty")
	}
	data, err := s.load(ctx, source)
	if err != nil {
		return nil, err
	}
	if s.Parse == nil {
		return nil, errors.New("no feed list parser configured")
	}
	list, err := s.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return list, nil
}

// Import parses source and adds its feeds to the subscriptions.
func (s ImportService) Import(ctx context.Context, source string, opt ImportOptions) (ImportResult, error) {
	source = strings.TrimSpace(source)
	result := ImportResult{Source: source}

	list, err := s.Preview(ctx, source)
	if err != nil {
		return result, err
	}
	result.List = list

	existing, err := s.Subscriptions.All()
	if err != nil {
		return result, fmt.Errorf("load subscriptions: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, feedURL := range existing {
		seen[feedURL] = true
	}

	var candidates []subscription.Subscription
	for _, entry := range list.Entries {
		feedURL, err := normalizeFeedURL(entry.URLText())
		if err != nil {
			result.Invalid = append(result.Invalid, entry)
			continue
		}
		if seen[feedURL] {
			result.Duplicates = append(result.Duplicates, feedURL)
			continue
		}
		seen[feedURL] = true
		candidates = append(candidates, subscription.Subscription{URL: feedURL, Group: groupFor(list, entry, opt)})
	}

	if opt.Probe && s.Prober != nil && len(candidates) > 0 {
		candidates = s.probe(ctx, candidates, &result)
	}
	result.Added = candidates

	if !opt.DryRun && len(result.Added) > 0 {
		if err := s.store(result.Added); err != nil {
			return result, fmt.Errorf("save subscriptions: %w", err)
		}
	}

	result.Run = subscription.ImportRun{
		Source:      source,
		Title:       list.TitleText(),
		Entries:     len(list.Entries),
		Added:       len(result.Added),
		Duplicates:  len(result.Duplicates),
		Invalid:     len(result.Invalid),
		Unreachable: len(result.Unreachable),
		DryRun:      opt.DryRun,
		ImportedAt:  s.now(),
	}
	if s.Log != nil {
		run, err := s.Log.Record(ctx, result.Run)
		if err != nil {
			s.logger().WithError(err).Warn("failed to record import run")
		} else {
			result.Run = run
		}
	}

	s.logger().WithFields(logrus.Fields{
		"source":      source,
		"entries":     result.Run.Entries,
		"added":       result.Run.Added,
		"duplicates":  result.Run.Duplicates,
		"invalid":     result.Run.Invalid,
		"unreachable": result.Run.Unreachable,
		"dry_run":     opt.DryRun,
	}).Info("imported feed list")

	return result, nil
}

// History returns the most recent import runs.
func (s ImportService) History(ctx context.Context, limit int) ([]subscription.ImportRun, error) {
	if s.Log == nil {
		return nil, nil
	}
	return s.Log.Recent(ctx, limit)
}

func (s ImportService) load(ctx context.Context, source string) ([]byte, error) {
	if isRemote(source) {
		if s.Fetcher == nil {
			return nil, errors.New("remote sources are not supported")
		}
		s.logger().WithField("url", source).Debug("fetching feed list")
		data, err := s.Fetcher.FetchDocument(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		return data, nil
	}
	readFile := s.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(source)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return data, nil
}

func (s ImportService) probe(ctx context.Context, candidates []subscription.Subscription, result *ImportResult) []subscription.Subscription {
	urls := make([]string, len(candidates))
	for i, c := range candidates {
		urls[i] = c.URL
	}
	probes, report := s.Prober.ProbeAll(ctx, urls, s.ProbeOptions)
	result.Probe = report

	reachable := make([]subscription.Subscription, 0, len(candidates))
	for i, probe := range probes {
		if probe.Err != nil {
			s.logger().WithError(probe.Err).WithField("url", probe.URL).Warn("feed is unreachable")
			result.Unreachable = append(result.Unreachable, probe)
			continue
		}
		reachable = append(reachable, candidates[i])
	}
	return reachable
}

func (s ImportService) store(added []subscription.Subscription) error {
	needsGroups := slices.ContainsFunc(added, func(sub subscription.Subscription) bool {
		return sub.Group != ""
	})

	groups, supported, err := s.Subscriptions.ListGroups()
	if err != nil {
		return err
	}
	if !needsGroups || !supported {
		if needsGroups {
			s.logger().Warn("subscription store has no group support, importing ungrouped")
		}
		for _, sub := range added {
			if err := s.Subscriptions.Repo.Add(sub.URL); err != nil {
				return err
			}
		}
		return nil
	}

	ungrouped, err := s.Subscriptions.List()
	if err != nil {
		return err
	}
	groups, ungrouped = mergeSubscriptions(groups, ungrouped, added)
	_, _, err = s.Subscriptions.ReplaceFeedGroups(groups, ungrouped)
	return err
}

func mergeSubscriptions(groups []subscription.FeedGroup, ungrouped []string, added []subscription.Subscription) ([]subscription.FeedGroup, []string) {
	merged := make([]subscription.FeedGroup, len(groups))
	for i, group := range groups {
		merged[i] = subscription.FeedGroup{Name: group.Name, Feeds: slices.Clone(group.Feeds)}
	}
	out := slices.Clone(ungrouped)

	for _, sub := range added {
		if sub.Group == "" {
			out = append(out, sub.URL)
			continue
		}
		idx := slices.IndexFunc(merged, func(g subscription.FeedGroup) bool {
			return g.Name == sub.Group
		})
		if idx < 0 {
			merged = append(merged, subscription.FeedGroup{Name: sub.Group})
			idx = len(merged) - 1
		}
		merged[idx].Feeds = append(merged[idx].Feeds, sub.URL)
	}
	return merged, out
}

func groupFor(list *subscription.FeedList, entry subscription.FeedEntry, opt ImportOptions) string {
	if name := strings.TrimSpace(opt.Group); name != "" {
		return name
	}
	if opt.GroupByTitle {
		if title := strings.TrimSpace(list.TitleText()); title != "" {
			return title
		}
	}
	if opt.GroupByCategory {
		return strings.TrimSpace(entry.CategoryText())
	}
	return ""
}

func isRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func (s ImportService) logger() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}

func (s ImportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
