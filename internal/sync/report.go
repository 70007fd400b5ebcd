package sync

// PhaseCounts tallies record outcomes for one phase.
type PhaseCounts struct {
	Synced  int
	Failed  int
	Skipped int
}

// Failure captures one skipped record for the run report.
type Failure struct {
	Phase Phase
	Key   string
	Err   error
}

// Report aggregates the outcome of one sync run. A run always completes;
// failures are per-record and listed here rather than aborting the run.
type Report struct {
	Phases       map[Phase]*PhaseCounts
	LinksCreated int
	LinksSkipped int
	Failures     []Failure
}

func newReport() Report {
	return Report{
		Phases: map[Phase]*PhaseCounts{
			PhaseTags:       {},
			PhaseItems:      {},
			PhaseParagraphs: {},
		},
	}
}

func (r *Report) recordSynced(p Phase)  { r.Phases[p].Synced++ }
func (r *Report) recordSkipped(p Phase) { r.Phases[p].Skipped++ }

func (r *Report) recordFailed(p Phase, key string, err error) {
	r.Phases[p].Failed++
	r.Failures = append(r.Failures, Failure{Phase: p, Key: key, Err: err})
}

// Clean reports whether the run completed without any record failure or
// skipped link.
func (r *Report) Clean() bool {
	return len(r.Failures) == 0 && r.LinksSkipped == 0 && r.Phases[PhaseParagraphs].Skipped == 0
}
