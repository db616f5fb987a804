package scheduler

import (
	"context"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartMaintenanceJobs runs the background sweeps. Currently a single daily
// job: settled (accepted or rejected) friend requests past the retention age
// are purged so the requests collection does not grow without bound. Pending
// requests are never touched.
func StartMaintenanceJobs(friendService *services.FriendService, purgeAge time.Duration) *cron.Cron {
	c := cron.New()

	c.AddFunc("@daily", func() {
		purged, err := friendService.PurgeSettledRequests(context.Background(), purgeAge)
		if err != nil {
			logrus.WithError(err).Error("PurgeSettledRequests failed")
			return
		}
		if purged > 0 {
			logrus.WithField("count", purged).Info("Purged settled friend requests")
		}
	})

	c.Start()
	return c
}
