package rabbitmq

import "github.com/magabrotheeeer/cloudslims/internal/models"

// Exchange — direct-обменник, в который публикуются все уведомления.
const Exchange = "notifications"

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// RoutingKey возвращает ключ маршрутизации для типа уведомления.
func RoutingKey(kind models.NotificationKind) string {
	return string(kind)
}

// GetNotificationQueues — очереди sender'а, по одной на тип уведомления.
func GetNotificationQueues() []QueueConfig {
	kinds := []models.NotificationKind{
		models.NotificationExpiring,
		models.NotificationActivated,
		models.NotificationRejected,
	}
	queues := make([]QueueConfig, 0, len(kinds))
	for _, k := range kinds {
		queues = append(queues, QueueConfig{
			QueueName:  Exchange + "." + string(k),
			RoutingKey: RoutingKey(k),
		})
	}
	return queues
}
