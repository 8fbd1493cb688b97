package device

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Interval names the aggregation buckets kept by the usage stats service.
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

const usageTimeLayout = "2006-01-02 15:04:05"

var (
	usageSectionRE = regexp.MustCompile(`^In-memory (daily|weekly|monthly|yearly) stats`)
	usagePackageRE = regexp.MustCompile(`package=(\S+)`)
	lastTimeUsedRE = regexp.MustCompile(`lastTimeUsed="([^"]+)"`)
)

// IntervalFor picks the smallest interval that covers a window of the given
// width.
func IntervalFor(width time.Duration) Interval {
	const day = 24 * time.Hour
	switch {
	case width <= day:
		return IntervalDaily
	case width <= 7*day:
		return IntervalWeekly
	case width <= 31*day:
		return IntervalMonthly
	default:
		return IntervalYearly
	}
}

// QueryUsage returns one record per package stats line whose last use falls
// within [start, end]. The stats section is chosen by the window width.
func (c *Client) QueryUsage(ctx context.Context, start, end time.Time) ([]UsageRecord, error) {
	output, err := c.shell(ctx, "dumpsys", "usagestats")
	if err != nil {
		return nil, fmt.Errorf("failed to dump usage stats: %w", err)
	}

	interval := IntervalFor(end.Sub(start))
	records := parseUsageStats(output, interval, c.location)

	filtered := make([]UsageRecord, 0, len(records))
	for _, r := range records {
		if r.LastUsedAt >= start.UnixMilli() && r.LastUsedAt <= end.UnixMilli() {
			filtered = append(filtered, r)
		}
	}

	c.log.WithField("interval", interval).
		WithField("parsed", len(records)).
		WithField("in_window", len(filtered)).
		Debug("queried usage stats")
	return filtered, nil
}

// parseUsageStats extracts package records from the given interval's
// sections of `dumpsys usagestats`. Lines with unparseable timestamps are
// ignored.
func parseUsageStats(output string, interval Interval, loc *time.Location) []UsageRecord {
	var records []UsageRecord
	inSection := false

	for _, line := range lines(output) {
		if m := usageSectionRE.FindStringSubmatch(line); m != nil {
			inSection = Interval(m[1]) == interval
			continue
		}
		if !inSection || !strings.HasPrefix(line, "package=") {
			continue
		}

		pkg := usagePackageRE.FindStringSubmatch(line)
		used := lastTimeUsedRE.FindStringSubmatch(line)
		if pkg == nil || used == nil {
			continue
		}

		t, err := time.ParseInLocation(usageTimeLayout, used[1], loc)
		if err != nil {
			continue
		}

		records = append(records, UsageRecord{
			PackageID:  pkg[1],
			LastUsedAt: t.UnixMilli(),
		})
	}
	return records
}
