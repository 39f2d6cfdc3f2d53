package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/messaging"
	"github.com/mkulima/kilimo/core/store"
)

type NotificationRepo struct {
	coll store.Collection
}

var _ messaging.NotificationRepository = (*NotificationRepo)(nil)

func NewNotificationRepo(st store.Store) *NotificationRepo {
	return &NotificationRepo{coll: st.Collection(store.Notifications)}
}

func (repo *NotificationRepo) CreateNotification(ctx context.Context, n messaging.Notification) (messaging.Notification, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	data, err := marshalDoc(n)
	if err != nil {
		return messaging.Notification{}, err
	}
	if err = repo.coll.Add(ctx, n.ID, data); err != nil {
		return messaging.Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

func (repo *NotificationRepo) QueryAllNotifications(ctx context.Context) ([]messaging.Notification, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: false})
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return unmarshalNotifications(recs)
}

func (repo *NotificationRepo) QueryNotificationsByTrainee(ctx context.Context, traineeID string) ([]messaging.Notification, error) {
	recs, err := repo.coll.Find(ctx, "traineeId", traineeID, store.Ordering{Field: "created_at", Ascending: false})
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications by trainee")
	}
	return unmarshalNotifications(recs)
}

func unmarshalNotifications(recs []store.Record) ([]messaging.Notification, error) {
	notifs := make([]messaging.Notification, 0, len(recs))
	for _, rec := range recs {
		var n messaging.Notification
		if err := unmarshalDoc(rec, &n); err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, nil
}

func (repo *NotificationRepo) UpdateNotification(ctx context.Context, n messaging.Notification) (messaging.Notification, error) {
	data, err := marshalDoc(n)
	if err != nil {
		return messaging.Notification{}, err
	}
	if err = repo.coll.Update(ctx, n.ID, data); err != nil {
		return messaging.Notification{}, trapNotFound(errors.Wrap(err, "updating notification"), messaging.ErrNotificationNotFound)
	}
	return n, nil
}

func (repo *NotificationRepo) DeleteNotificationsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting notifications")
}

type MessageRepo struct {
	coll store.Collection
}

var _ messaging.MessageRepository = (*MessageRepo)(nil)

func NewMessageRepo(st store.Store) *MessageRepo {
	return &MessageRepo{coll: st.Collection(store.Messages)}
}

func (repo *MessageRepo) CreateMessage(ctx context.Context, m messaging.Message) (messaging.Message, error) {
	if m.ID == "" {
		m.ID = newID()
	}
	data, err := marshalDoc(m)
	if err != nil {
		return messaging.Message{}, err
	}
	if err = repo.coll.Add(ctx, m.ID, data); err != nil {
		return messaging.Message{}, errors.Wrap(err, "creating message")
	}
	return m, nil
}

func (repo *MessageRepo) QueryAllMessages(ctx context.Context) ([]messaging.Message, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: false})
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	messages := make([]messaging.Message, 0, len(recs))
	for _, rec := range recs {
		var m messaging.Message
		if err = unmarshalDoc(rec, &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (repo *MessageRepo) GetMessageByID(ctx context.Context, id string) (messaging.Message, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return messaging.Message{}, trapNotFound(err, messaging.ErrMessageNotFound)
	}
	var m messaging.Message
	if err = unmarshalDoc(rec, &m); err != nil {
		return messaging.Message{}, err
	}
	return m, nil
}

func (repo *MessageRepo) UpdateMessage(ctx context.Context, m messaging.Message) (messaging.Message, error) {
	data, err := marshalDoc(m)
	if err != nil {
		return messaging.Message{}, err
	}
	if err = repo.coll.Update(ctx, m.ID, data); err != nil {
		return messaging.Message{}, trapNotFound(errors.Wrap(err, "updating message"), messaging.ErrMessageNotFound)
	}
	return m, nil
}

func (repo *MessageRepo) DeleteMessagesByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting messages")
}
