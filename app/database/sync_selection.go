package database

import (
	"sort"
	"time"
)

// OutdatedAfter is how long after its last sync attempt a feed becomes due
// for scheduling again.
const OutdatedAfter = 10 * time.Minute

// DueForSync reports whether a feed qualifies for scheduling at now: not
// broken, and either never synced or last attempted more than OutdatedAfter
// ago. This is the Go form of the GetFeedsDueForSync predicate; the scheduler
// applies it again between selection and enqueue.
func DueForSync(f *Feed, now time.Time) bool {
	if f.SyncStatus == SyncStatusBroken {
		return false
	}
	return f.LastSyncAt == nil || f.LastSyncAt.Before(now.Add(-OutdatedAfter))
}

// OrderBySyncPriority sorts feeds for scheduling: never-synced feeds first,
// then oldest last sync attempt. Matches the selection query's
// ORDER BY last_sync_at ASC NULLS FIRST.
func OrderBySyncPriority(feeds []Feed) {
	sort.SliceStable(feeds, func(i, j int) bool {
		a, b := feeds[i].LastSyncAt, feeds[j].LastSyncAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
}
