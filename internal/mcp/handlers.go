package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/current"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/events"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/export"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/pathutil"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/ratelimit"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/sanitize"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

// Resource URIs.
const (
	configURI      = "dopasim://config"
	runURIPrefix   = "dopasim://runs/"
	runURITemplate = runURIPrefix + "{id}"
)

// maxRunsLimit caps dopasim_runs when the caller asks for no limit.
const maxRunsLimit = 100

// registerTools registers all dopasim tools with the MCP server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dopasim_fscv",
		Description: "Simulate one fast-scan cyclic voltammetry sweep of dopamine and report its oxidation and reduction peaks",
	}, s.handleFSCV)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dopasim_oxidation",
		Description: "Simulate stochastic dopamine auto-oxidation under fluctuating pH, oxygen and H2O2 stress pulses",
	}, s.handleOxidation)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dopasim_sweep",
		Description: "Evaluate the steady-state Butler-Volmer current over a range of overpotentials",
	}, s.handleSweep)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dopasim_cottrell",
		Description: "Simulate a slow triangular scan with a Butler-Volmer kinetic current plus a k/sqrt(t) Cottrell diffusion current",
	}, s.handleCottrell)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dopasim_runs",
		Description: "List saved simulation runs, newest first",
	}, s.handleRuns)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dopasim_run",
		Description: "Show one saved run with the scenario that produced it",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dopasim_export",
		Description: "Write a saved run's time series to an Arrow IPC or CSV file under the data directory's exports folder",
	}, s.handleExport)

	return nil
}

// registerResources registers the configuration and saved-run resources.
func (s *Server) registerResources() error {
	s.server.AddResource(&sdk.Resource{
		URI:         configURI,
		Name:        "dopasim-config",
		Description: "Default scenarios and settings used when a tool argument is omitted.",
		MIMEType:    "application/yaml",
	}, s.handleConfigResource)

	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: runURITemplate,
		Name:        "dopasim-run",
		Description: "Summary of a saved run as markdown.",
		MIMEType:    "text/markdown",
	}, s.handleRunResource)

	return nil
}

func (s *Server) handleFSCV(ctx context.Context, req *sdk.CallToolRequest, args FSCVInput) (_ *sdk.CallToolResult, out FSCVOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dopasim_fscv", start, out.RunID, retErr, auditParams(map[string]any{
			"seed": args.Seed, "variant": args.Variant, "noise": args.Noise, "dt": args.Dt,
			"terms": args.Terms, "save": args.Save,
		}))
	}()
	if err := ratelimit.CheckLimit(s.limiters, "dopasim_fscv"); err != nil {
		return nil, FSCVOutput{}, err
	}

	scenario := s.settings.FSCVScenario()
	if args.Seed != nil {
		scenario.Seed = *args.Seed
	}
	if args.Variant != "" {
		scenario.Variant = current.Variant(args.Variant)
	}
	if args.Noise != nil {
		scenario.Noise = *args.Noise
	}
	override(&scenario.Scan.Start, args.Start)
	override(&scenario.Scan.Vertex, args.Vertex)
	override(&scenario.Scan.Total, args.Duration)
	override(&scenario.Dt, args.Dt)
	override(&scenario.Current.CBulk, args.Concentration)
	if args.Terms {
		scenario.Terms = true
	}

	res, err := s.runner.RunFSCV(scenario)
	if err != nil {
		return nil, FSCVOutput{}, err
	}

	out = FSCVOutput{
		Seed:      res.Seed,
		Variant:   string(res.Variant),
		Samples:   len(res.Times),
		Duration:  res.Duration,
		Columns:   res.Columns().Names(),
		NonFinite: res.NonFinite,
		Summary:   finiteSummary(res.Summary),
	}
	if args.Save {
		run, err := res.Record(scenario)
		if err != nil {
			return nil, FSCVOutput{}, err
		}
		id, err := s.store.SaveRun(ctx, run)
		if err != nil {
			return nil, FSCVOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		out.RunID = id
	}
	return nil, out, nil
}

func (s *Server) handleOxidation(ctx context.Context, req *sdk.CallToolRequest, args OxidationInput) (_ *sdk.CallToolResult, out OxidationOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dopasim_oxidation", start, out.RunID, retErr, auditParams(map[string]any{
			"seed": args.Seed, "duration": args.Duration, "dt": args.Dt, "pulses": args.Pulses,
			"policy": args.Policy, "save": args.Save,
		}))
	}()
	if err := ratelimit.CheckLimit(s.limiters, "dopasim_oxidation"); err != nil {
		return nil, OxidationOutput{}, err
	}

	scenario := s.settings.OxidationScenario()
	if args.Seed != nil {
		scenario.Seed = *args.Seed
	}
	override(&scenario.Total, args.Duration)
	override(&scenario.Dt, args.Dt)
	override(&scenario.Initial.Dopamine, args.Dopamine)
	override(&scenario.Initial.Peroxide, args.Peroxide)
	override(&scenario.Kinetics.KBase, args.KBase)
	override(&scenario.Kinetics.KDecomp, args.KDecomp)
	if args.Pulses != nil {
		scenario.Pulses.Count = *args.Pulses
	}
	if args.Policy != "" {
		scenario.Pulses.Policy = events.Policy(args.Policy)
	}

	res, err := s.runner.RunOxidation(scenario)
	if err != nil {
		return nil, OxidationOutput{}, err
	}

	evs := res.Events
	if evs == nil {
		evs = []events.Event{}
	}
	out = OxidationOutput{
		Seed:       res.Seed,
		Samples:    len(res.Times),
		Events:     evs,
		Applied:    res.Applied,
		Collisions: res.Collisions,
		Summary:    finiteSummary(res.Summary),
	}
	if args.Save {
		run, err := res.Record(scenario)
		if err != nil {
			return nil, OxidationOutput{}, err
		}
		id, err := s.store.SaveRun(ctx, run)
		if err != nil {
			return nil, OxidationOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		out.RunID = id
	}
	return nil, out, nil
}

func (s *Server) handleSweep(ctx context.Context, req *sdk.CallToolRequest, args SweepInput) (_ *sdk.CallToolResult, _ SweepOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dopasim_sweep", start, "", retErr, auditParams(map[string]any{
			"i0": args.I0, "alpha": args.Alpha, "eta_min": args.EtaMin, "eta_max": args.EtaMax,
			"points": args.Points,
		}))
	}()
	if err := ratelimit.CheckLimit(s.limiters, "dopasim_sweep"); err != nil {
		return nil, SweepOutput{}, err
	}

	p := s.settings.Sweep
	override(&p.I0, args.I0)
	override(&p.Alpha, args.Alpha)
	override(&p.EtaMin, args.EtaMin)
	override(&p.EtaMax, args.EtaMax)
	if args.Points != nil {
		p.Points = *args.Points
	}

	eta, i, err := current.Sweep(p)
	if err != nil {
		return nil, SweepOutput{}, err
	}
	if n := current.CountNonFinite(i); n > 0 {
		return nil, SweepOutput{}, fmt.Errorf("sweep overflowed at %d of %d points; narrow the overpotential range", n, len(i))
	}
	return nil, SweepOutput{Overpotential: eta, Current: i}, nil
}

func (s *Server) handleCottrell(ctx context.Context, req *sdk.CallToolRequest, args CottrellInput) (_ *sdk.CallToolResult, out CottrellOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dopasim_cottrell", start, out.RunID, retErr, auditParams(map[string]any{
			"duration": args.Duration, "points": args.Points, "k": args.K, "save": args.Save,
		}))
	}()
	if err := ratelimit.CheckLimit(s.limiters, "dopasim_cottrell"); err != nil {
		return nil, CottrellOutput{}, err
	}

	scenario := s.settings.Cottrell
	override(&scenario.Scan.Start, args.Start)
	override(&scenario.Scan.Vertex, args.Vertex)
	override(&scenario.Scan.Total, args.Duration)
	override(&scenario.Current.I0, args.I0)
	override(&scenario.Current.K, args.K)
	override(&scenario.Current.EEq, args.EEq)
	if args.Points != nil {
		scenario.Points = *args.Points
	}

	res, err := s.runner.RunCottrell(scenario)
	if err != nil {
		return nil, CottrellOutput{}, err
	}

	out = CottrellOutput{
		Samples:   len(res.Times),
		Columns:   res.Columns().Names(),
		NonFinite: res.NonFinite,
		Summary:   finiteSummary(res.Summary),
	}
	if args.Save {
		run, err := res.Record(scenario)
		if err != nil {
			return nil, CottrellOutput{}, err
		}
		id, err := s.store.SaveRun(ctx, run)
		if err != nil {
			return nil, CottrellOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		out.RunID = id
	}
	return nil, out, nil
}

func (s *Server) handleRuns(ctx context.Context, req *sdk.CallToolRequest, args RunsInput) (_ *sdk.CallToolResult, _ RunsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dopasim_runs", start, "", retErr, auditParams(map[string]any{
			"kind": args.Kind, "limit": args.Limit,
		}))
	}()
	if err := ratelimit.CheckLimit(s.limiters, "dopasim_runs"); err != nil {
		return nil, RunsOutput{}, err
	}

	opts := store.ListOptions{Limit: args.Limit}
	if args.Kind != "" {
		kind := constants.RunKind(args.Kind)
		if !kind.Valid() {
			return nil, RunsOutput{}, fmt.Errorf("invalid kind %q: must be fscv, oxidation or cottrell", args.Kind)
		}
		opts.Kind = kind
	}
	if opts.Limit <= 0 || opts.Limit > maxRunsLimit {
		opts.Limit = maxRunsLimit
	}

	infos, err := s.store.ListRuns(ctx, opts)
	if err != nil {
		return nil, RunsOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}
	items := make([]RunListItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, newRunListItem(info))
	}
	return nil, RunsOutput{Runs: items, Count: len(items)}, nil
}

func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (_ *sdk.CallToolResult, _ RunOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dopasim_run", start, args.ID, retErr, nil)
	}()
	if err := ratelimit.CheckLimit(s.limiters, "dopasim_run"); err != nil {
		return nil, RunOutput{}, err
	}

	if args.ID == "" {
		return nil, RunOutput{}, fmt.Errorf("id is required")
	}
	run, err := s.store.GetRun(ctx, args.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, RunOutput{}, fmt.Errorf("run not found: %s", args.ID)
		}
		return nil, RunOutput{}, fmt.Errorf("failed to get run: %w", err)
	}

	out := RunOutput{Run: newRunListItem(run.Info())}
	if len(run.Params) > 0 {
		if err := json.Unmarshal(run.Params, &out.Params); err != nil {
			return nil, RunOutput{}, fmt.Errorf("failed to decode run parameters: %w", err)
		}
	}
	return nil, out, nil
}

func (s *Server) handleExport(ctx context.Context, req *sdk.CallToolRequest, args ExportInput) (_ *sdk.CallToolResult, out ExportOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dopasim_export", start, args.ID, retErr, auditParams(map[string]any{
			"file": args.File, "format": args.Format,
		}))
	}()
	if err := ratelimit.CheckLimit(s.limiters, "dopasim_export"); err != nil {
		return nil, ExportOutput{}, err
	}

	if args.ID == "" {
		return nil, ExportOutput{}, fmt.Errorf("id is required")
	}
	if s.dir == "" {
		return nil, ExportOutput{}, fmt.Errorf("export requires a data directory")
	}
	run, err := s.store.GetRun(ctx, args.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ExportOutput{}, fmt.Errorf("run not found: %s", args.ID)
		}
		return nil, ExportOutput{}, fmt.Errorf("failed to get run: %w", err)
	}

	format, err := export.ResolveFormat(args.File, args.Format, s.settings.Export.Format)
	if err != nil {
		return nil, ExportOutput{}, err
	}
	file := args.File
	if file == "" {
		file = exportFileName(run, format)
	}

	dir := pathutil.ExportDir(s.dir)
	path, err := pathutil.ResolveIn(dir, file)
	if err != nil {
		return nil, ExportOutput{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	meta := export.RunMetadata(string(run.Kind), run.Name, run.Seed)
	meta["run_id"] = run.ID
	if err := export.WriteFile(path, format, run.Series, meta); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("failed to export %s: %w", pathutil.RedactPath(path), err)
	}

	s.logger.Debug("run exported", "run_id", run.ID, "format", format, "path", pathutil.RedactPath(path))
	return nil, ExportOutput{
		Path:    path,
		Format:  format,
		Samples: run.Series.Rows(),
		Columns: run.Series.Names(),
	}, nil
}

// exportFileName is <name>-<id prefix><ext>, falling back to the run kind
// when the run has no usable name.
func exportFileName(run *store.Run, format string) string {
	name := sanitize.Name(run.Name)
	if name == "" {
		name = string(run.Kind)
	}
	id := run.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return name + "-" + id + export.Extension(format)
}

// handleConfigResource returns the effective configuration as YAML.
func (s *Server) handleConfigResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      configURI,
				MIMEType: "application/yaml",
				Text:     string(data),
			},
		},
	}, nil
}

// handleRunResource renders a saved run's summary as markdown.
// URI format: dopasim://runs/{id}
func (s *Server) handleRunResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	if !strings.HasPrefix(uri, runURIPrefix) {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}
	id := strings.TrimPrefix(uri, runURIPrefix)
	if id == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, sdk.ResourceNotFoundError(uri)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     renderRun(run),
			},
		},
	}, nil
}

func renderRun(run *store.Run) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s run %s\n\n", run.Kind, run.ID)
	if run.Name != "" {
		fmt.Fprintf(&sb, "- **Name:** %s\n", sanitize.Label(run.Name))
	}
	fmt.Fprintf(&sb, "- **Seed:** %d\n", run.Seed)
	fmt.Fprintf(&sb, "- **Created:** %s\n", run.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "- **Samples:** %d\n", run.Series.Rows())
	fmt.Fprintf(&sb, "- **Series:** %s\n", strings.Join(run.Series.Names(), ", "))

	if len(run.Summary) > 0 {
		keys := make([]string, 0, len(run.Summary))
		for k := range run.Summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\n## Summary\n\n| Quantity | Value |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "| %s | %g |\n", k, run.Summary[k])
		}
	}
	return sb.String()
}

// override replaces *dst with *src when the caller supplied a value.
func override(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// finiteSummary never returns nil so the output always carries an object.
func finiteSummary(summary map[string]float64) map[string]float64 {
	out := store.FiniteSummary(summary)
	if out == nil {
		out = map[string]float64{}
	}
	return out
}
