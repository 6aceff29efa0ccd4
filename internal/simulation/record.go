package simulation

import (
	"encoding/json"
	"fmt"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/sanitize"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

// Record converts a finished FSCV run into a storable run. s is the scenario
// that produced it and is kept as the run's parameters. The run name is
// reduced to file-safe characters.
func (res *FSCVResult) Record(s FSCVScenario) (store.Run, error) {
	if s.Scan.Total == 0 {
		s.Scan.Total = res.Duration
	}
	params, err := json.Marshal(s)
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to marshal fscv scenario: %w", err)
	}
	return store.Run{
		Kind:    constants.RunKindFSCV,
		Name:    sanitize.Name(res.Name),
		Seed:    res.Seed,
		Params:  params,
		Summary: res.Summary,
		Series:  res.Columns(),
	}, nil
}

// Record converts a finished oxidation run into a storable run.
func (res *OxidationResult) Record(s OxidationScenario) (store.Run, error) {
	params, err := json.Marshal(s)
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to marshal oxidation scenario: %w", err)
	}
	return store.Run{
		Kind:    constants.RunKindOxidation,
		Name:    sanitize.Name(res.Name),
		Seed:    res.Seed,
		Params:  params,
		Summary: res.Summary,
		Series:  res.Columns(),
	}, nil
}

// Record converts a finished Cottrell run into a storable run. The model is
// deterministic, so the seed is zero.
func (res *CottrellResult) Record(s CottrellScenario) (store.Run, error) {
	params, err := json.Marshal(s)
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to marshal cottrell scenario: %w", err)
	}
	return store.Run{
		Kind:    constants.RunKindCottrell,
		Name:    sanitize.Name(res.Name),
		Params:  params,
		Summary: res.Summary,
		Series:  res.Columns(),
	}, nil
}
