package optimization

// recorder accumulates the trajectory for one run and optionally mirrors
// each record onto an events channel for live consumers. Appends copy the
// point slice so later iterations cannot mutate recorded history.
type recorder struct {
	records []IterationRecord
	events  chan<- IterationRecord
}

func newRecorder(capacity int, events chan<- IterationRecord) *recorder {
	return &recorder{
		records: make([]IterationRecord, 0, capacity),
		events:  events,
	}
}

func (r *recorder) append(rec IterationRecord) {
	rec.Point = append([]float64(nil), rec.Point...)
	r.records = append(r.records, rec)
	if r.events != nil {
		// Never block the loop on a slow consumer.
		select {
		case r.events <- rec:
		default:
		}
	}
}

func (r *recorder) last() *IterationRecord {
	if len(r.records) == 0 {
		return nil
	}
	return &r.records[len(r.records)-1]
}

// addWarning attaches a condition to the most recent record.
func (r *recorder) addWarning(c Condition) {
	if last := r.last(); last != nil {
		last.Warnings = append(last.Warnings, c)
	}
}

// result packages the trajectory into an immutable Result.
func (r *recorder) result(status Status, method Method, counts EvalCounts) *Result {
	res := &Result{
		Status:  status,
		Method:  method,
		Records: r.records,
		Evals:   counts,
	}
	if last := r.last(); last != nil {
		res.FinalPoint = append([]float64(nil), last.Point...)
		res.FinalObjective = last.Objective
		res.Iterations = last.Iteration
	}
	return res
}
