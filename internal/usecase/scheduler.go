package usecase

import (
	"sort"
	"time"

	"github.com/eslsoft/cliploop/internal/entity"
)

// SchedulePolicy tunes the daily pacing knobs. The review cap exists but ships
// unbounded: learners may always catch up on reviews, only new-item intake is
// gated.
type SchedulePolicy struct {
	MaxNewPerDay   int
	ExtraBonus     int
	DailyReviewCap int
}

// DefaultSchedulePolicy returns the stock forgetting-curve pacing.
func DefaultSchedulePolicy() SchedulePolicy {
	return SchedulePolicy{
		MaxNewPerDay:   entity.DefaultMaxNewPerDay,
		ExtraBonus:     entity.ExtraSessionBonus,
		DailyReviewCap: entity.DefaultDailyReviewCap,
	}
}

// activeSet reduces collections to the set of IDs eligible for scheduling.
func activeSet(collections []entity.Collection) map[string]bool {
	active := make(map[string]bool, len(collections))
	for _, c := range collections {
		if c.IsActive {
			active[c.ID] = true
		}
	}
	return active
}

// dueReviews selects clips whose next review day has been reached, most
// overdue first. Ties keep store order. The selection is referentially
// transparent over the snapshot plus now.
func dueReviews(videos []entity.Video, active map[string]bool, now time.Time, policy SchedulePolicy) []entity.PlaylistItem {
	due := make([]entity.Video, 0)
	for _, v := range videos {
		if !active[v.CollectionID] {
			continue
		}
		if v.DueAt(now) {
			due = append(due, v)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReviewDate.Before(*due[j].NextReviewDate)
	})
	if policy.DailyReviewCap > 0 && len(due) > policy.DailyReviewCap {
		due = due[:policy.DailyReviewCap]
	}

	items := make([]entity.PlaylistItem, 0, len(due))
	for _, v := range due {
		days := 0
		if v.FirstPlayDate != nil {
			days = entity.DaysBetween(*v.FirstPlayDate, now)
		}
		items = append(items, entity.PlaylistItem{
			VideoID:            v.ID,
			ReviewType:         entity.ReviewTypeReview,
			ReviewNumber:       v.ReviewCount + 1,
			DaysSinceFirstPlay: days,
			RecommendVideo:     v.RecommendVideo(),
		})
	}
	return items
}

// newStartedToday counts clips whose first playthrough happened today; they
// have already consumed a slot of the daily allowance.
func newStartedToday(videos []entity.Video, now time.Time) int {
	count := 0
	for _, v := range videos {
		if v.StartedOn(now) {
			count++
		}
	}
	return count
}

// newCandidates selects unseen clips from active collections in store order.
// A normal session gets whatever is left of today's allowance; an extra
// session uses a flat, slightly larger cap of its own.
func newCandidates(videos []entity.Video, active map[string]bool, now time.Time, policy SchedulePolicy, extra bool) []entity.PlaylistItem {
	limit := policy.MaxNewPerDay - newStartedToday(videos, now)
	if extra {
		limit = policy.MaxNewPerDay + policy.ExtraBonus
	}
	if limit <= 0 {
		return []entity.PlaylistItem{}
	}

	items := make([]entity.PlaylistItem, 0, limit)
	for _, v := range videos {
		if len(items) == limit {
			break
		}
		if v.Status != entity.VideoStatusNew || !active[v.CollectionID] {
			continue
		}
		items = append(items, entity.PlaylistItem{
			VideoID:      v.ID,
			ReviewType:   entity.ReviewTypeNew,
			ReviewNumber: 1,
		})
	}
	return items
}

// canOfferExtra reports whether an extra new-session may be offered: the
// daily allowance is spent and unseen clips remain. Extra sessions let
// motivated learners pull ahead, never skip ahead of an unmet quota.
func canOfferExtra(videos []entity.Video, active map[string]bool, now time.Time, policy SchedulePolicy) bool {
	if len(newCandidates(videos, active, now, policy, false)) > 0 {
		return false
	}
	for _, v := range videos {
		if v.Status == entity.VideoStatusNew && active[v.CollectionID] {
			return true
		}
	}
	return false
}
