package sdk

import "fmt"

// JobState tracks one ABI build through its lifecycle. Terminal states
// are ArtifactsCopied (success) and Failed.
type JobState int

const (
	StateInit JobState = iota
	StateConfigured
	StateBuilt
	StateArtifactsCopied
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConfigured:
		return "configured"
	case StateBuilt:
		return "built"
	case StateArtifactsCopied:
		return "artifacts-copied"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsTerminal reports whether the state is final.
func (s JobState) IsTerminal() bool {
	return s == StateArtifactsCopied || s == StateFailed
}

// transition validates and applies a state change for a job. Any state
// may fail; forward progress is strictly linear.
func (j *Job) transition(to JobState) error {
	if !allowedTransition(j.state, to) {
		return fmt.Errorf("job %s: disallowed transition %s -> %s", j.Target.ABI, j.state, to)
	}
	j.state = to
	return nil
}

func allowedTransition(from, to JobState) bool {
	if to == StateFailed {
		return !from.IsTerminal()
	}
	switch from {
	case StateInit:
		return to == StateConfigured
	case StateConfigured:
		return to == StateBuilt
	case StateBuilt:
		return to == StateArtifactsCopied
	default:
		return false
	}
}
