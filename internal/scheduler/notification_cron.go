package cron

import (
	"context"

	"github.com/Dias221467/Internship_Manager/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartNotificationCronJobs schedules the retention sweep that removes read
// notifications older than the configured window.
func StartNotificationCronJobs(notificationService *services.NotificationService, retentionDays int) *cron.Cron {
	c := cron.New()

	c.AddFunc("@daily", func() {
		if err := notificationService.CleanupOldNotifications(context.Background(), retentionDays); err != nil {
			logrus.WithError(err).Error("Notification retention sweep failed")
		}
	})

	c.Start()
	return c
}
