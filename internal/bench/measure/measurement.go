// Package measure implements the adaptive timing loop.
package measure

// Measurement is the raw result of timing one unit of work.
type Measurement struct {
	Name    string  `json:"name"`
	Calls   uint64  `json:"calls"`
	Elapsed float64 `json:"elapsed"`
}

// Rate returns calls per second, or 0 when no time elapsed.
func (m Measurement) Rate() float64 {
	if m.Elapsed <= 0 {
		return 0
	}
	return float64(m.Calls) / m.Elapsed
}

// PerCall returns seconds per call, or 0 when no calls were made.
func (m Measurement) PerCall() float64 {
	if m.Calls == 0 {
		return 0
	}
	return m.Elapsed / float64(m.Calls)
}
