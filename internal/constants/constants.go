// Package constants provides named physical constants and the default
// parameters of the dopamine FSCV and oxidation simulations.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Physical constants
const (
	// Faraday is the Faraday constant in C/mol.
	Faraday = 96485.0

	// GasConstant is the universal gas constant in J/(mol*K).
	GasConstant = 8.314

	// RoomTemperature is 25 C expressed in kelvin, as used by the FSCV model.
	RoomTemperature = 298.0
)

// Butler-Volmer defaults for dopamine oxidation at a carbon-fibre electrode.
const (
	// DefaultAlpha is the charge-transfer coefficient.
	DefaultAlpha = 0.5

	// DefaultElectrons is the number of electrons transferred (dopamine -> quinone).
	DefaultElectrons = 2.0

	// DefaultK0 is the standard heterogeneous rate constant in cm/s.
	DefaultK0 = 1e-2

	// DefaultArea is the electrode area in cm^2.
	DefaultArea = 0.07

	// DefaultBulkConcentration is the bulk dopamine concentration in mol/cm^3.
	DefaultBulkConcentration = 1e-6

	// DefaultE0 is the standard potential of dopamine vs Ag/AgCl in volts.
	DefaultE0 = 0.2

	// DefaultDiffusivity is the dopamine diffusion coefficient in cm^2/s.
	DefaultDiffusivity = 6e-6

	// DefaultDiffusionLayer is the diffusion-layer thickness in cm.
	DefaultDiffusionLayer = 1e-3

	// MicroampsPerAmp converts A to uA for reported currents.
	MicroampsPerAmp = 1e6

	// AdsorptionWeight scales the exchange current density in the adsorption term.
	AdsorptionWeight = 0.15

	// NoiseFraction is the measurement-noise standard deviation as a fraction of
	// the peak absolute current of the whole trace.
	NoiseFraction = 0.05
)

// FSCV scan defaults.
const (
	// DefaultScanRate is the sweep rate in V/s, typical for FSCV.
	DefaultScanRate = 400.0

	// DefaultEStart is the holding/start potential in volts.
	DefaultEStart = -0.4

	// DefaultEVertex is the switching potential in volts.
	DefaultEVertex = 1.3

	// DefaultScanTime is the duration of one triangular scan in seconds.
	DefaultScanTime = 0.01

	// DefaultScanDt is the FSCV sample spacing in seconds.
	DefaultScanDt = 1e-5
)

// Oxidation kinetics defaults.
const (
	// DefaultReactionTime is one hour of simulated time, in seconds.
	DefaultReactionTime = 3600.0

	// DefaultReactionDt is the Euler step in seconds.
	DefaultReactionDt = 0.1

	// DefaultDopamine is the initial dopamine concentration (arbitrary units).
	DefaultDopamine = 1.0

	// DefaultPeroxide is the initial H2O2 concentration (arbitrary units).
	DefaultPeroxide = 0.1

	// DefaultKBase is the base oxidation rate constant.
	DefaultKBase = 0.001

	// DefaultKDecomp is the enzymatic H2O2 degradation rate.
	DefaultKDecomp = 0.001

	// PHAnchor is the pH at which the oxidation-rate pH factor equals one.
	PHAnchor = 7.2

	// DefaultPulseCount is the number of exogenous H2O2 pulses per run.
	DefaultPulseCount = 5

	// DefaultPulseMin and DefaultPulseMax bound the pulse magnitudes.
	DefaultPulseMin = 0.1
	DefaultPulseMax = 0.5
)

// Butler-Volmer overpotential sweep defaults.
const (
	DefaultSweepI0     = 1e-6
	DefaultSweepEtaMin = -0.5
	DefaultSweepEtaMax = 0.5
	DefaultSweepPoints = 400
)

// Time-domain Butler-Volmer plus Cottrell defaults: a -0.5 V -> 0.5 V ->
// -0.5 V scan over 2 s sampled at 1000 points.
const (
	// DefaultCottrellJ0 is the exchange current density in A/cm^2.
	DefaultCottrellJ0 = 1e-6

	// DefaultCottrellArea is the electrode area in cm^2.
	DefaultCottrellArea = 0.01

	DefaultCottrellElectrons   = 1.0
	DefaultCottrellTemperature = 298.15

	// DefaultCottrellK scales the k/sqrt(t) diffusion current, in A*s^0.5.
	DefaultCottrellK = 1e-7

	DefaultCottrellEMin   = -0.5
	DefaultCottrellEMax   = 0.5
	DefaultCottrellTime   = 2.0
	DefaultCottrellPoints = 1000
)

// MaxGridSamples bounds the length of any time grid. Ten million float64
// samples is 80 MB per series; longer grids are rejected before allocation.
const MaxGridSamples = 10_000_000

// DefaultSeed seeds runs that do not specify one.
const DefaultSeed uint64 = 1
