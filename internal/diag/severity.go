package diag

// Severity orders diagnostics by how much attention they demand. The numeric
// order is load-bearing: Bag.HasErrors and sorting compare severities, so
// Error must remain the largest value.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevInfo:
		return "INFO"
	}
	return "UNKNOWN"
}
