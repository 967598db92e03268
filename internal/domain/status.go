package domain

// ClassifyProgress maps a day's progress against the goal.
func ClassifyProgress(progress, goal int) Status {
	switch {
	case progress >= goal:
		return StatusCompleted
	case progress > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}

// AggregateStatus folds per-activity statuses into a day status: completed
// when all are completed, pending when all are pending (or there are none),
// partial otherwise.
func AggregateStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusPending
	}
	allCompleted, allPending := true, true
	for _, s := range statuses {
		if s != StatusCompleted {
			allCompleted = false
		}
		if s != StatusPending {
			allPending = false
		}
	}
	switch {
	case allCompleted:
		return StatusCompleted
	case allPending:
		return StatusPending
	default:
		return StatusPartial
	}
}
