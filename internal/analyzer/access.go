package analyzer

import "context"

// HasUsageAccess reports whether usage history can currently be read.
//
// The platform does not expose the authorization state directly: an
// unauthorized caller gets an empty result set rather than a denial. The
// check therefore queries the probe window and treats any record as proof of
// access. A device nobody touched during the probe window yields a false
// negative, so callers must read false as "assume unauthorized", not as proof.
//
// An error is returned only when the usage source cannot be queried at all.
func (a *Analyzer) HasUsageAccess(ctx context.Context) (bool, error) {
	end := a.opts.Now()
	start := end.Add(-a.opts.ProbeWindow)

	records, err := a.usage.QueryUsage(ctx, start, end)
	if err != nil {
		return false, sourceUnavailable("failed to query usage history", err)
	}

	a.log.WithField("records", len(records)).Debug("usage access probe")
	return len(records) > 0, nil
}
