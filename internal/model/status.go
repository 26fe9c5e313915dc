package model

type SprintStatus string

const (
	StatusCollecting SprintStatus = "collecting"
	StatusAnalyzing  SprintStatus = "analyzing"
	StatusAnalyzed   SprintStatus = "analyzed"
	StatusClosed     SprintStatus = "closed"
)

// CanTransition reports whether a sprint may move from one status to another.
// Any status may close; analyzing is the only state that can fall back.
func CanTransition(from, to SprintStatus) bool {
	if to == StatusClosed {
		return true
	}
	switch from {
	case StatusCollecting:
		return to == StatusAnalyzing
	case StatusAnalyzing:
		return to == StatusAnalyzed || to == StatusCollecting
	}
	return false
}

// AcceptsResponses reports whether members may still chat.
func (s SprintStatus) AcceptsResponses() bool { return s == StatusCollecting }

type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionInProgress ActionStatus = "in_progress"
	ActionDone       ActionStatus = "done"
	ActionCancelled  ActionStatus = "cancelled"
)

func ParseActionStatus(s string) (ActionStatus, bool) {
	switch st := ActionStatus(s); st {
	case ActionPending, ActionInProgress, ActionDone, ActionCancelled:
		return st, true
	}
	return "", false
}
