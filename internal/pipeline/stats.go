package pipeline

// RunStats tracks aggregate counters across a run. Every discovered input
// lands in exactly one of Moved, AlreadyNamed, Duplicates, Skipped or Failed,
// unless the run was interrupted or aborted.
type RunStats struct {
	Total        int
	Current      int
	Moved        int
	AlreadyNamed int
	Duplicates   int
	Skipped      int // Non-regular inputs and collision-limit outcomes.
	Failed       int
	BytesHashed  int64
	Interrupted  bool
}

// Processed is the number of inputs that reached an outcome.
func (s *RunStats) Processed() int {
	return s.Moved + s.AlreadyNamed + s.Duplicates + s.Skipped + s.Failed
}
