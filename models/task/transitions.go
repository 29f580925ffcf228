package task

// taskTransitions is the closed edge set of the task lifecycle. Every task
// walks the delivery chain one state at a time so that each intermediate
// state leaves a history entry; skipping states is never legal. Terminal
// states map to an empty set.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusAssigned:        {TaskStatusAccepted, TaskStatusFailed},
	TaskStatusAccepted:        {TaskStatusEnRoutePickup, TaskStatusFailed},
	TaskStatusEnRoutePickup:   {TaskStatusPickedUp, TaskStatusFailed},
	TaskStatusPickedUp:        {TaskStatusEnRouteDelivery, TaskStatusFailed},
	TaskStatusEnRouteDelivery: {TaskStatusDelivered, TaskStatusFailed},
	TaskStatusDelivered:       {TaskStatusCompleted},
	TaskStatusCompleted:       {},
	TaskStatusFailed:          {},
}

// LegalNextStates returns the set of states reachable from current.
// Unknown statuses have no outgoing edges.
func LegalNextStates(current TaskStatus) []TaskStatus {
	next, ok := taskTransitions[current]
	if !ok {
		return nil
	}
	out := make([]TaskStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether the edge from -> to exists in the table.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
