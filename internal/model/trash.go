package model

import "time"

// TrashRetention is how long a soft-deleted bookmark stays restorable.
const TrashRetention = 2 * time.Minute

// ExpiresAt returns when a trashed bookmark becomes eligible for purging.
// The second return value is false for bookmarks outside the trash.
func ExpiresAt(b Bookmark, retention time.Duration) (time.Time, bool) {
	if !b.InTrash() || b.DeletedAt == nil {
		return time.Time{}, false
	}
	return b.DeletedAt.Add(retention), true
}

// Expired reports whether a trashed bookmark is older than the retention
// window at now. A bookmark exactly at the boundary is not yet expired.
func Expired(b Bookmark, now time.Time, retention time.Duration) bool {
	if !b.InTrash() || b.DeletedAt == nil {
		return false
	}
	return now.Sub(*b.DeletedAt) > retention
}

// Remaining returns the time left before a trashed bookmark is purged,
// clamped at zero.
func Remaining(b Bookmark, now time.Time, retention time.Duration) time.Duration {
	expires, ok := ExpiresAt(b, retention)
	if !ok {
		return 0
	}
	left := expires.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
