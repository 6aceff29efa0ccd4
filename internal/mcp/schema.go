package mcp

import (
	"time"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/events"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

// Optional numeric arguments are pointers so that an explicit zero can be
// told apart from "use the configured default".

// FSCVInput defines the input for dopasim_fscv tool.
type FSCVInput struct {
	Seed          *uint64  `json:"seed,omitempty" jsonschema:"Seed for the measurement noise; defaults to the configured seed"`
	Variant       string   `json:"variant,omitempty" jsonschema:"Current model: full (default) or ideal"`
	Noise         *bool    `json:"noise,omitempty" jsonschema:"Add Gaussian measurement noise to the trace"`
	Start         *float64 `json:"start,omitempty" jsonschema:"Start and end potential in volts"`
	Vertex        *float64 `json:"vertex,omitempty" jsonschema:"Switching potential in volts"`
	Duration      *float64 `json:"duration,omitempty" jsonschema:"Duration of one triangular scan in seconds"`
	Dt            *float64 `json:"dt,omitempty" jsonschema:"Sample spacing in seconds"`
	Concentration *float64 `json:"concentration,omitempty" jsonschema:"Bulk dopamine concentration in mol/cm^3"`
	Terms         bool     `json:"terms,omitempty" jsonschema:"Also store the charge-transfer, diffusion and adsorption contributions as series"`
	Save          bool     `json:"save,omitempty" jsonschema:"Persist the run to the run database"`
}

// FSCVOutput defines the output for dopasim_fscv tool.
type FSCVOutput struct {
	RunID     string             `json:"run_id,omitempty" jsonschema:"ID of the saved run, empty unless save was requested"`
	Seed      uint64             `json:"seed" jsonschema:"Seed the run used"`
	Variant   string             `json:"variant" jsonschema:"Current model used"`
	Samples   int                `json:"samples" jsonschema:"Number of samples in the trace"`
	Duration  float64            `json:"duration" jsonschema:"Scan duration in seconds"`
	Columns   []string           `json:"columns" jsonschema:"Names of the output series"`
	NonFinite int                `json:"non_finite" jsonschema:"Samples that overflowed to infinity or NaN"`
	Summary   map[string]float64 `json:"summary" jsonschema:"Peak currents and potentials of the clean trace"`
}

// OxidationInput defines the input for dopasim_oxidation tool.
type OxidationInput struct {
	Seed     *uint64  `json:"seed,omitempty" jsonschema:"Seed for the pH and oxygen noise and the stress pulses"`
	Duration *float64 `json:"duration,omitempty" jsonschema:"Simulated time in seconds"`
	Dt       *float64 `json:"dt,omitempty" jsonschema:"Integration step in seconds"`
	Dopamine *float64 `json:"dopamine,omitempty" jsonschema:"Initial dopamine concentration"`
	Peroxide *float64 `json:"peroxide,omitempty" jsonschema:"Initial H2O2 concentration"`
	KBase    *float64 `json:"k_base,omitempty" jsonschema:"Base oxidation rate constant"`
	KDecomp  *float64 `json:"k_decomp,omitempty" jsonschema:"Enzymatic H2O2 degradation rate"`
	Pulses   *int     `json:"pulses,omitempty" jsonschema:"Number of exogenous H2O2 pulses"`
	Policy   string   `json:"policy,omitempty" jsonschema:"How pulses landing on the same step combine: sum or first"`
	Save     bool     `json:"save,omitempty" jsonschema:"Persist the run to the run database"`
}

// OxidationOutput defines the output for dopasim_oxidation tool.
type OxidationOutput struct {
	RunID      string             `json:"run_id,omitempty" jsonschema:"ID of the saved run, empty unless save was requested"`
	Seed       uint64             `json:"seed" jsonschema:"Seed the run used"`
	Samples    int                `json:"samples" jsonschema:"Number of samples in each trajectory"`
	Events     []events.Event     `json:"events" jsonschema:"Scheduled stress pulses in time order"`
	Applied    int                `json:"applied" jsonschema:"Grid steps that received a pulse"`
	Collisions int                `json:"collisions" jsonschema:"Pulses that shared a grid step with an earlier pulse"`
	Summary    map[string]float64 `json:"summary" jsonschema:"Final concentrations and trajectory statistics"`
}

// SweepInput defines the input for dopasim_sweep tool.
type SweepInput struct {
	I0     *float64 `json:"i0,omitempty" jsonschema:"Exchange current in amperes"`
	Alpha  *float64 `json:"alpha,omitempty" jsonschema:"Charge-transfer coefficient between 0 and 1"`
	EtaMin *float64 `json:"eta_min,omitempty" jsonschema:"Lowest overpotential in volts"`
	EtaMax *float64 `json:"eta_max,omitempty" jsonschema:"Highest overpotential in volts"`
	Points *int     `json:"points,omitempty" jsonschema:"Number of points on the overpotential axis"`
}

// SweepOutput defines the output for dopasim_sweep tool.
type SweepOutput struct {
	Overpotential []float64 `json:"overpotential" jsonschema:"Overpotential axis in volts"`
	Current       []float64 `json:"current" jsonschema:"Butler-Volmer current in amperes"`
}

// CottrellInput defines the input for dopasim_cottrell tool.
type CottrellInput struct {
	Start    *float64 `json:"start,omitempty" jsonschema:"Start and end potential in volts"`
	Vertex   *float64 `json:"vertex,omitempty" jsonschema:"Switching potential in volts"`
	Duration *float64 `json:"duration,omitempty" jsonschema:"Duration of the scan in seconds"`
	Points   *int     `json:"points,omitempty" jsonschema:"Number of evenly spaced samples, both endpoints included"`
	I0       *float64 `json:"i0,omitempty" jsonschema:"Exchange current in amperes"`
	K        *float64 `json:"k,omitempty" jsonschema:"Coefficient of the k/sqrt(t) diffusion current"`
	EEq      *float64 `json:"e_eq,omitempty" jsonschema:"Equilibrium potential in volts"`
	Save     bool     `json:"save,omitempty" jsonschema:"Persist the run to the run database"`
}

// CottrellOutput defines the output for dopasim_cottrell tool.
type CottrellOutput struct {
	RunID     string             `json:"run_id,omitempty" jsonschema:"ID of the saved run, empty unless save was requested"`
	Samples   int                `json:"samples" jsonschema:"Number of samples in the trace"`
	Columns   []string           `json:"columns" jsonschema:"Names of the output series"`
	NonFinite int                `json:"non_finite" jsonschema:"Samples that overflowed to infinity or NaN"`
	Summary   map[string]float64 `json:"summary" jsonschema:"Peaks of the total current and the kinetic and diffusion extremes"`
}

// RunsInput defines the input for dopasim_runs tool.
type RunsInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"Only list runs of this kind: fscv, oxidation or cottrell"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of runs to return"`
}

// RunListItem is a saved run as reported to MCP clients.
type RunListItem struct {
	ID        string             `json:"id" jsonschema:"Run ID"`
	Kind      string             `json:"kind" jsonschema:"fscv, oxidation or cottrell"`
	Name      string             `json:"name,omitempty" jsonschema:"Scenario name"`
	Seed      uint64             `json:"seed" jsonschema:"Seed the run used"`
	CreatedAt string             `json:"created_at" jsonschema:"When the run was saved, RFC 3339"`
	Samples   int                `json:"samples" jsonschema:"Number of samples per series"`
	Columns   []string           `json:"columns" jsonschema:"Names of the stored series"`
	Summary   map[string]float64 `json:"summary,omitempty" jsonschema:"Summary statistics of the run"`
}

func newRunListItem(info store.RunInfo) RunListItem {
	return RunListItem{
		ID:        info.ID,
		Kind:      string(info.Kind),
		Name:      info.Name,
		Seed:      info.Seed,
		CreatedAt: info.CreatedAt.UTC().Format(time.RFC3339Nano),
		Samples:   info.Samples,
		Columns:   info.Columns,
		Summary:   info.Summary,
	}
}

// RunsOutput defines the output for dopasim_runs tool.
type RunsOutput struct {
	Runs  []RunListItem `json:"runs" jsonschema:"Saved runs, newest first"`
	Count int           `json:"count" jsonschema:"Number of runs returned"`
}

// RunInput defines the input for dopasim_run tool.
type RunInput struct {
	ID string `json:"id" jsonschema:"ID of the saved run"`
}

// RunOutput defines the output for dopasim_run tool.
type RunOutput struct {
	Run    RunListItem    `json:"run" jsonschema:"Listing view of the run"`
	Params map[string]any `json:"params,omitempty" jsonschema:"Scenario that produced the run"`
}

// ExportInput defines the input for dopasim_export tool.
type ExportInput struct {
	ID     string `json:"id" jsonschema:"Run ID returned by a saved simulation"`
	File   string `json:"file,omitempty" jsonschema:"File name relative to the exports directory; defaults to <name>-<id>.<ext>"`
	Format string `json:"format,omitempty" jsonschema:"arrow or csv; defaults to the file extension, then the configured format"`
}

// ExportOutput defines the output for dopasim_export tool.
type ExportOutput struct {
	Path    string   `json:"path" jsonschema:"Absolute path of the written file"`
	Format  string   `json:"format" jsonschema:"Format written"`
	Samples int      `json:"samples" jsonschema:"Rows written"`
	Columns []string `json:"columns" jsonschema:"Column names in order"`
}
