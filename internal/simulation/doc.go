// Package simulation composes the waveform, current, stochastic, events and
// kinetics packages into two independent, reproducible runs.
//
// The FSCV run builds a half-open time grid, applies the triangular waveform,
// evaluates the current model at every sample and optionally adds
// measurement noise. The oxidation run builds a closed time grid, generates
// the pH and dissolved-oxygen trajectories, schedules stress pulses and
// integrates the reaction network.
//
// Each run owns a single stochastic.Source seeded from its scenario. Draws are
// taken in a fixed order (pH, oxygen, event times, event magnitudes for the
// oxidation run; noise for the FSCV run) so the same seed always yields the
// same sequences.
//
// Usage:
//
//	r := simulation.NewRunner(logger, nil)
//	res, err := r.RunOxidation(simulation.DefaultOxidationScenario())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Summary["final_quinone"])
package simulation
