package constants

// RunKind identifies which simulation pipeline produced a run.
type RunKind string

const (
	// RunKindFSCV is a fast-scan cyclic voltammetry current trace.
	RunKindFSCV RunKind = "fscv"

	// RunKindOxidation is a stochastic dopamine oxidation kinetics run.
	RunKindOxidation RunKind = "oxidation"

	// RunKindCottrell is a time-domain Butler-Volmer plus Cottrell scan.
	RunKindCottrell RunKind = "cottrell"
)

// Valid returns true if the kind is a recognized value.
func (k RunKind) Valid() bool {
	switch k {
	case RunKindFSCV, RunKindOxidation, RunKindCottrell:
		return true
	}
	return false
}

// String returns the string representation of the kind.
func (k RunKind) String() string {
	return string(k)
}
