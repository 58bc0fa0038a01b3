package eventreviews

// transition is one legal move of the publication state machine.
type transition struct {
	From  Status
	To    Status
	Actor Role
}

// transitions is the full publication state machine. A review reaches
// APPROVED only through both sign-offs in order; CONFLICT_OPEN leaves only
// when the linked conflict closes.
var transitions = []transition{
	{StatusPending, StatusSuperAdminApproved, RolePlatformAdmin},
	{StatusPending, StatusRejected, RolePlatformAdmin},
	{StatusSuperAdminApproved, StatusApproved, RoleClubAdmin},
	{StatusSuperAdminApproved, StatusRejected, RoleClubAdmin},
	{StatusConflictOpen, StatusConflictResolved, RoleSystem},
}

// CanTransition reports whether actor may move a review from one status to
// another.
func CanTransition(from, to Status, actor Role) bool {
	for _, t := range transitions {
		if t.From == from && t.To == to && t.Actor == actor {
			return true
		}
	}
	return false
}

// DecisionFor maps an approve/reject decision to the transition it stands
// for. The expected from-status is fixed by the actor's stage, never read
// from the row, so the conditional update in the store is the only place
// the current status is consulted.
func DecisionFor(actor Role, approve bool) (from, to Status, ok bool) {
	switch actor {
	case RolePlatformAdmin:
		from = StatusPending
		to = StatusSuperAdminApproved
	case RoleClubAdmin:
		from = StatusSuperAdminApproved
		to = StatusApproved
	default:
		return "", "", false
	}
	if !approve {
		to = StatusRejected
	}
	return from, to, true
}
