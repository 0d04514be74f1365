// Package settlement tracks who has paid their share of a split.
//
// Each share toggles between pending and paid with no terminal state. The
// split-level status is derived from the shares on every read.
package settlement

import (
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrUnauthorized means the caller may not change this share's status.
var ErrUnauthorized = errors.New("not allowed to change this settlement status")

// Actor is the trust level a status change was authorized under.
type Actor string

const (
	// ActorSelf is a participant marking their own share.
	ActorSelf Actor = "self"
	// ActorOwner is the split owner correcting any participant's share.
	ActorOwner Actor = "owner"
)

// Summary is the derived split-level status.
type Summary struct {
	Status            models.AggregateStatus
	SettledCount      int
	TotalParticipants int
}

// Toggle flips pending to paid and paid to pending.
func Toggle(s models.SettlementStatus) models.SettlementStatus {
	if s == models.StatusPaid {
		return models.StatusPending
	}
	return models.StatusPaid
}

// Authorize decides whether callerID may change participantID's status on a
// split owned by ownerID. A participant may always change their own share;
// the owner may change anyone's.
func Authorize(ownerID, participantID, callerID string) (Actor, error) {
	switch {
	case callerID == "":
		return "", ErrUnauthorized
	case callerID == participantID:
		return ActorSelf, nil
	case callerID == ownerID:
		return ActorOwner, nil
	default:
		return "", ErrUnauthorized
	}
}

// Aggregate derives the split status as seen by callerID:
// all_settled when every share is paid, settled_by_me when only the caller's
// own share is paid, pending otherwise.
func Aggregate(shares []models.Share, callerID string) Summary {
	sum := Summary{TotalParticipants: len(shares)}

	ownSettled := false
	for _, sh := range shares {
		if sh.Status != models.StatusPaid {
			continue
		}
		sum.SettledCount++
		if sh.ParticipantID == callerID {
			ownSettled = true
		}
	}

	switch {
	case len(shares) > 0 && sum.SettledCount == len(shares):
		sum.Status = models.AggregateAllSettled
	case ownSettled:
		sum.Status = models.AggregateSettledByMe
	default:
		sum.Status = models.AggregatePending
	}
	return sum
}

// Apply returns a copy of shares with participantID's status set to status.
// The second result is false when participantID has no share.
func Apply(shares []models.Share, participantID string, status models.SettlementStatus) ([]models.Share, bool) {
	out := make([]models.Share, len(shares))
	copy(out, shares)
	for i := range out {
		if out[i].ParticipantID == participantID {
			out[i].Status = status
			return out, true
		}
	}
	return out, false
}
