package engine

// Counter names an Aggregate counter.
type Counter string

// Counters used by the rename and delete engines.
const (
	CounterRenamed Counter = "renamed"
	CounterSkipped Counter = "skipped"
	CounterMatched Counter = "matched"
	CounterDeleted Counter = "deleted"
	CounterFailed  Counter = "failed"
)

// Aggregate accumulates counters and an ordered list of outcomes for one
// bulk operation. The zero value is not usable; call NewAggregate.
type Aggregate[O any] struct {
	counts  map[Counter]int
	details []O
}

// NewAggregate returns an empty aggregate.
func NewAggregate[O any]() *Aggregate[O] {
	return &Aggregate[O]{
		counts:  make(map[Counter]int),
		details: []O{},
	}
}

// Add increments c by one without recording an outcome.
func (a *Aggregate[O]) Add(c Counter) {
	a.counts[c]++
}

// Record appends outcome and increments each of counters.
func (a *Aggregate[O]) Record(outcome O, counters ...Counter) {
	a.details = append(a.details, outcome)
	for _, c := range counters {
		a.counts[c]++
	}
}

// Count returns the current value of c.
func (a *Aggregate[O]) Count(c Counter) int {
	return a.counts[c]
}

// Details returns the recorded outcomes in record order. Never nil.
func (a *Aggregate[O]) Details() []O {
	return a.details
}
