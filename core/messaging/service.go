package messaging

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMessageNotFound      = errors.New("message not found")
)

type (
	NotificationRepository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryAllNotifications(ctx context.Context) ([]Notification, error)
		QueryNotificationsByTrainee(ctx context.Context, traineeID string) ([]Notification, error)
		UpdateNotification(ctx context.Context, n Notification) (Notification, error)
		DeleteNotificationsByID(ctx context.Context, ids ...string) error
	}

	MessageRepository interface {
		CreateMessage(ctx context.Context, m Message) (Message, error)
		QueryAllMessages(ctx context.Context) ([]Message, error)
		GetMessageByID(ctx context.Context, id string) (Message, error)
		UpdateMessage(ctx context.Context, m Message) (Message, error)
		DeleteMessagesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		notifications NotificationRepository
		messages      MessageRepository
	}
)

func NewService(notifications NotificationRepository, messages MessageRepository) *Service {
	return &Service{notifications: notifications, messages: messages}
}

func (svc *Service) Notify(ctx context.Context, nn NewNotification) (Notification, error) {
	return svc.notifications.CreateNotification(ctx, Notification{
		TraineeID: nn.TraineeID,
		Title:     nn.Title,
		Body:      nn.Body,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryAllNotifications(ctx context.Context) ([]Notification, error) {
	return svc.notifications.QueryAllNotifications(ctx)
}

func (svc *Service) QueryNotificationsByTrainee(ctx context.Context, traineeID string) ([]Notification, error) {
	return svc.notifications.QueryNotificationsByTrainee(ctx, traineeID)
}

func (svc *Service) DeleteNotifications(ctx context.Context, ids ...string) error {
	return svc.notifications.DeleteNotificationsByID(ctx, ids...)
}

func (svc *Service) ReceiveMessage(ctx context.Context, nm NewMessage) (Message, error) {
	return svc.messages.CreateMessage(ctx, Message{
		FromEmail: nm.FromEmail,
		Subject:   nm.Subject,
		Body:      nm.Body,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryAllMessages(ctx context.Context) ([]Message, error) {
	return svc.messages.QueryAllMessages(ctx)
}

func (svc *Service) MarkMessageRead(ctx context.Context, id string) (Message, error) {
	m, err := svc.messages.GetMessageByID(ctx, id)
	if err != nil {
		return Message{}, err
	}
	m.IsRead = true
	return svc.messages.UpdateMessage(ctx, m)
}

func (svc *Service) DeleteMessages(ctx context.Context, ids ...string) error {
	return svc.messages.DeleteMessagesByID(ctx, ids...)
}
