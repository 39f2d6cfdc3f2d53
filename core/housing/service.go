package housing

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrRoomNotFound = errors.New("room not found")
	ErrTagNotFound  = errors.New("tag number not found")
	// ErrClaimed is returned when a conditional claim loses to a
	// concurrent writer.
	ErrClaimed = errors.New("no longer available")
)

type (
	RoomRepository interface {
		CreateRoom(ctx context.Context, r Room) (Room, error)
		QueryAllRooms(ctx context.Context) ([]Room, error)
		GetRoomByID(ctx context.Context, id string) (Room, error)
		GetRoomByNumber(ctx context.Context, roomNumber string) (Room, error)
		UpdateRoom(ctx context.Context, r Room) (Room, error)
		DeleteRoomsByID(ctx context.Context, ids ...string) error
	}

	TagRepository interface {
		CreateTag(ctx context.Context, t TagNumber) (TagNumber, error)
		QueryAllTags(ctx context.Context) ([]TagNumber, error)
		GetTagByNo(ctx context.Context, tagNo string) (TagNumber, error)
		UpdateTag(ctx context.Context, t TagNumber) (TagNumber, error)
		// ClaimTag marks the tag assigned only while it is still
		// available; ErrClaimed otherwise.
		ClaimTag(ctx context.Context, t TagNumber) (TagNumber, error)
		DeleteTagsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		rooms RoomRepository
		tags  TagRepository
	}
)

func NewService(rooms RoomRepository, tags TagRepository) *Service {
	return &Service{rooms: rooms, tags: tags}
}

func (svc *Service) CreateRoom(ctx context.Context, nr NewRoom) (Room, error) {
	now := time.Now().UTC()
	return svc.rooms.CreateRoom(ctx, Room{
		RoomNumber: nr.RoomNumber,
		Block:      nr.Block,
		BedSpace:   nr.BedSpace,
		Status:     RoomAvailable,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *Service) QueryAllRooms(ctx context.Context) ([]Room, error) {
	return svc.rooms.QueryAllRooms(ctx)
}

func (svc *Service) GetRoom(ctx context.Context, id string) (Room, error) {
	return svc.rooms.GetRoomByID(ctx, id)
}

func (svc *Service) UpdateRoom(ctx context.Context, r Room) (Room, error) {
	r.UpdatedAt = time.Now().UTC()
	return svc.rooms.UpdateRoom(ctx, r)
}

func (svc *Service) DeleteRooms(ctx context.Context, ids ...string) error {
	return svc.rooms.DeleteRoomsByID(ctx, ids...)
}

func (svc *Service) CreateTag(ctx context.Context, nt NewTagNumber) (TagNumber, error) {
	now := time.Now().UTC()
	return svc.tags.CreateTag(ctx, TagNumber{
		TagNo:     nt.TagNo,
		Status:    TagAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryAllTags(ctx context.Context) ([]TagNumber, error) {
	return svc.tags.QueryAllTags(ctx)
}

func (svc *Service) DeleteTags(ctx context.Context, ids ...string) error {
	return svc.tags.DeleteTagsByID(ctx, ids...)
}
