package relocate

// Action is what the relocator decided for one source file.
type Action int

const (
	ActionMoved        Action = iota + 1 // Renamed/moved to Destination.
	ActionAlreadyNamed                   // Source already sits at its name; nothing changed.
	ActionSkipped                        // Left in place; see Reason.
)

func (a Action) String() string {
	switch a {
	case ActionMoved:
		return "moved"
	case ActionAlreadyNamed:
		return "already-named"
	case ActionSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Reason qualifies ActionSkipped.
type Reason int

const (
	ReasonNone           Reason = iota
	ReasonDuplicate             // Twin holds byte-identical content.
	ReasonCollisionLimit        // MaxAttempts exhausted without a free slot.
)

func (r Reason) String() string {
	switch r {
	case ReasonDuplicate:
		return "duplicate"
	case ReasonCollisionLimit:
		return "collision-limit"
	default:
		return ""
	}
}

// Outcome is the result of one relocation. Every request yields exactly one
// Outcome unless Relocate returns an error.
type Outcome struct {
	Action Action
	Reason Reason

	Source      string
	Destination string // Moved / AlreadyNamed: where the file is (or would be, in a dry run).
	Twin        string // Duplicate: the existing file with identical content.
	Name        string // Last digest or token generated.
	Attempts    int    // Candidate names examined.
	DryRun      bool
}

// IsDuplicate reports whether the source is a verified duplicate of Twin.
func (o Outcome) IsDuplicate() bool {
	return o.Action == ActionSkipped && o.Reason == ReasonDuplicate
}
