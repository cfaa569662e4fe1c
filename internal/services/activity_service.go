package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"productos/internal/domain"
	"productos/internal/repos"
)

// sortable timestamp: fixed width so text order is time order
const activityTimeLayout = "2006-01-02T15:04:05.000000000Z"

type ActivityService struct {
	Repo *repos.ActivityRepo
}

func NewActivityService(r *repos.ActivityRepo) *ActivityService { return &ActivityService{Repo: r} }

// Record journals one mutation attempt. A mutation that succeeded but whose
// follow-up refresh failed is recorded as ok. Messages are the user-facing
// ones; the underlying error only goes to the log.
func (s *ActivityService) Record(sid, requestID, action string, productID int64, opErr error) error {
	e := domain.ActivityEntry{
		ID:        uuid.NewString(),
		SessionID: sid,
		RequestID: requestID,
		Action:    action,
		ProductID: productID,
		Outcome:   "ok",
		CreatedAt: time.Now().UTC().Format(activityTimeLayout),
	}
	switch {
	case opErr == nil:
	case errors.Is(opErr, ErrStale):
		e.Message = MsgFetchFailed
	default:
		e.Outcome = "error"
		e.Message = MsgSaveFailed
		if action == "delete" {
			e.Message = MsgDeleteFailed
		}
	}
	return s.Repo.Insert(e)
}

func (s *ActivityService) Latest(limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.Repo.Latest(limit)
}
