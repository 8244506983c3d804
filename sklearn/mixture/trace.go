package mixture

// ConvergenceTrace records the total log-likelihood after every completed EM
// iteration. Entries are only ever appended.
type ConvergenceTrace struct {
	values []float64
}

// NewConvergenceTrace returns an empty trace.
func NewConvergenceTrace() *ConvergenceTrace {
	return &ConvergenceTrace{}
}

// Append records the log-likelihood of one iteration.
func (t *ConvergenceTrace) Append(logLikelihood float64) {
	t.values = append(t.values, logLikelihood)
}

// Len returns the number of recorded iterations.
func (t *ConvergenceTrace) Len() int {
	return len(t.values)
}

// Values returns a copy of the recorded log-likelihoods in iteration order.
func (t *ConvergenceTrace) Values() []float64 {
	return append([]float64(nil), t.values...)
}

// Last returns the most recent entry, or false if the trace is empty.
func (t *ConvergenceTrace) Last() (float64, bool) {
	if len(t.values) == 0 {
		return 0, false
	}
	return t.values[len(t.values)-1], true
}

// Reset discards all entries.
func (t *ConvergenceTrace) Reset() {
	t.values = t.values[:0]
}

// Improvement returns the change between the last two entries, or 0 when
// fewer than two iterations have been recorded.
func (t *ConvergenceTrace) Improvement() float64 {
	n := len(t.values)
	if n < 2 {
		return 0
	}
	return t.values[n-1] - t.values[n-2]
}

// IsMonotonic reports whether the trace never decreases by more than tol.
// EM guarantees a non-decreasing likelihood, so a violation points at
// numerical trouble such as heavy covariance regularization.
func (t *ConvergenceTrace) IsMonotonic(tol float64) bool {
	for i := 1; i < len(t.values); i++ {
		if t.values[i] < t.values[i-1]-tol {
			return false
		}
	}
	return true
}
