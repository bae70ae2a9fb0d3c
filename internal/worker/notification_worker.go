package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/darshan-pass-service/internal/service"
)

// StartNotificationWorker registers notification handlers on the service's dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	subscribed := notificationService.RegisterHandlers()
	if logger == nil {
		return
	}
	names := make([]string, 0, len(subscribed))
	for _, t := range subscribed {
		names = append(names, string(t))
	}
	logger.Info("notification worker started", zap.Strings("events", names))
}
