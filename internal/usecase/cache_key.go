package usecase

import (
	"strings"
	"time"

	"MCMTracker/internal/domain/models"
	pkgcache "MCMTracker/pkg/cache"
)

// SnapshotKey builds snapshot:<date>:<session>:<bucket>:<symbols>. The
// bucket is the number of whole cadence windows since the epoch, so every
// request inside one window shares a key.
func SnapshotKey(sess models.Session, symbols []string, now time.Time) string {
	cadence := sess.Cadence.Milliseconds()
	if cadence <= 0 {
		cadence = 1
	}
	bucket := now.UnixMilli() / cadence
	return pkgcache.GenerateKeyWithParams("snapshot",
		sess.Info.Date, string(sess.Label), bucket, strings.Join(symbols, ","))
}
