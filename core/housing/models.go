package housing

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/trainee"
)

// Room statuses
const (
	RoomAvailable         = "available"
	RoomOccupied          = "occupied"
	RoomFullyOccupied     = "fully_occupied"
	RoomPartiallyOccupied = "partially_occupied"
	RoomMaintenance       = "maintenance"
)

// Tag statuses
const (
	TagAvailable = "available"
	TagAssigned  = "assigned"
)

type Room struct {
	ID               string    `json:"id"`
	RoomNumber       string    `json:"roomNumber"`
	Block            string    `json:"block"`
	BedSpace         string    `json:"bedSpace"` // capacity; "1", "2", "single", "double" or numeric string
	Status           string    `json:"status"`
	CurrentOccupancy int       `json:"currentOccupancy"` // derived, cached
	CreatedAt        time.Time `json:"created_at"`       // UTC
	UpdatedAt        time.Time `json:"updated_at"`       // UTC
}

// Capacity resolves the room's bed space to a bed count.
// The legacy encodings ("single", "double", arbitrary numeric strings) are
// all accepted; anything unparseable counts as a single bed.
func (r Room) Capacity() int {
	switch strings.ToLower(core.CleanString(r.BedSpace)) {
	case "single":
		return 1
	case "double":
		return 2
	}
	n, err := strconv.Atoi(core.CleanString(r.BedSpace))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// StatusForOccupancy derives the room status from bed capacity and the
// actual occupant count.
func StatusForOccupancy(capacity, occupancy int) string {
	switch {
	case capacity == 1:
		if occupancy >= 1 {
			return RoomOccupied
		}
		return RoomAvailable
	case capacity == 2:
		switch {
		case occupancy >= 2:
			return RoomOccupied
		case occupancy == 1:
			return RoomPartiallyOccupied
		default:
			return RoomAvailable
		}
	default:
		switch {
		case occupancy >= capacity:
			return RoomOccupied
		case occupancy > 0:
			return RoomPartiallyOccupied
		default:
			return RoomAvailable
		}
	}
}

// Occupied reports whether status counts as fully occupied; both legacy
// spellings of the occupied status exist in stored documents.
func Occupied(status string) bool {
	return status == RoomOccupied || status == RoomFullyOccupied
}

// BlockLetter normalizes a block value ("A", "BlockA", "Block A") to its
// trailing letter, uppercased.
func BlockLetter(block string) string {
	s := core.CleanString(block)
	for i := len(s) - 1; i >= 0; i-- {
		if unicode.IsLetter(rune(s[i])) {
			return strings.ToUpper(string(s[i]))
		}
	}
	return ""
}

// MatchesGender reports whether the room's block houses the given gender:
// male trainees go to blocks A/B, female trainees to blocks C/D.
func (r Room) MatchesGender(gender string) bool {
	switch BlockLetter(r.Block) {
	case "A", "B":
		return gender == trainee.GenderMale
	case "C", "D":
		return gender == trainee.GenderFemale
	}
	return false
}

type TagNumber struct {
	ID        string    `json:"id"`
	TagNo     string    `json:"tagNo"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewRoom struct {
	RoomNumber string `json:"roomNumber" validate:"required"`
	Block      string `json:"block" validate:"required"`
	BedSpace   string `json:"bedSpace" validate:"required"`
}

type NewTagNumber struct {
	TagNo string `json:"tagNo" validate:"required"`
}
