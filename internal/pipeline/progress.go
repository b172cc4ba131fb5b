package pipeline

// Stage identifies where a run currently is. Stages advance strictly in
// order; a run ends in either StageDone or StageFailed.
type Stage int

const (
	StageIdle Stage = iota
	StageSearching
	StageExtracting
	StageRanking
	StageSynthesizing
	StageAssembling
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageSearching:
		return "searching"
	case StageExtracting:
		return "extracting"
	case StageRanking:
		return "ranking"
	case StageSynthesizing:
		return "synthesizing"
	case StageAssembling:
		return "assembling"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer receives stage transitions and, during extraction, the fraction
// of candidates processed so far. Extraction workers call it concurrently,
// so implementations must be safe for concurrent use and must not block.
type Observer func(stage Stage, fraction float64)

func (o *Orchestrator) emit(stage Stage, fraction float64) {
	if o.Observer != nil {
		o.Observer(stage, fraction)
	}
}
