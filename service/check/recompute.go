package check

import (
	"fmt"
	"time"

	missionEntity "problemsolving.GO/model/entity/mission"
	"problemsolving.GO/model/repository"
)

// Recompute derives the mission status from its items and checks and stores it. It returns the status.
//
//   - every item resolved: COMPLETED
//   - no check left to do but items unresolved: IN_PROGRESS, completed_at cleared
//   - some check done while OPEN: IN_PROGRESS
//
// Anything else, and a CANCELLED mission, is left as it is. Calling it again changes nothing.
func Recompute(uow *repository.Store, company string, missionID uint64, now time.Time) (string, error) {
	m, err := uow.Missions.FindByID(company, missionID)
	if err != nil {
		return "", err
	}
	if m.Status == missionEntity.StatusCancelled {
		return m.Status, nil
	}
	items, err := uow.Missions.ItemCounts(company, missionID)
	if err != nil {
		return "", fmt.Errorf("count items: %w", err)
	}
	checks, err := uow.Missions.CheckCounts(company, missionID)
	if err != nil {
		return "", fmt.Errorf("count checks: %w", err)
	}

	updates := map[string]interface{}{}
	status := m.Status
	switch {
	case items.Total > 0 && items.Resolved == items.Total:
		if m.Status != missionEntity.StatusCompleted {
			status = missionEntity.StatusCompleted
			updates["status"] = status
		}
		if m.CompletedAt == nil {
			updates["completed_at"] = now
		}
		if m.StartedAt == nil {
			updates["started_at"] = now
		}
	case checks.Pending == 0:
		if m.Status != missionEntity.StatusInProgress {
			status = missionEntity.StatusInProgress
			updates["status"] = status
		}
		if m.CompletedAt != nil {
			updates["completed_at"] = nil
		}
		if m.StartedAt == nil {
			updates["started_at"] = now
		}
	case checks.Completed() > 0 && m.Status == missionEntity.StatusOpen:
		status = missionEntity.StatusInProgress
		updates["status"] = status
		if m.StartedAt == nil {
			updates["started_at"] = now
		}
	}
	if len(updates) == 0 {
		return status, nil
	}
	if err := uow.Missions.Update(company, missionID, updates); err != nil {
		return "", fmt.Errorf("update mission %d status: %w", missionID, err)
	}
	return status, nil
}
