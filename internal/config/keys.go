package config

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/current"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/events"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/stochastic"
)

// field binds a dot-notation key to a value inside Config.
type field struct {
	get func(c *Config) any
	set func(c *Config, value string) error
}

func floatField(ptr func(c *Config) *float64) field {
	return field{
		get: func(c *Config) any { return *ptr(c) },
		set: func(c *Config, value string) error {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid number: %s", value)
			}
			*ptr(c) = f
			return nil
		},
	}
}

func intField(ptr func(c *Config) *int) field {
	return field{
		get: func(c *Config) any { return *ptr(c) },
		set: func(c *Config, value string) error {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid integer: %s", value)
			}
			*ptr(c) = n
			return nil
		},
	}
}

func boolField(ptr func(c *Config) *bool) field {
	return field{
		get: func(c *Config) any { return *ptr(c) },
		set: func(c *Config, value string) error {
			*ptr(c) = value == "true" || value == "1"
			return nil
		},
	}
}

func stringField(ptr func(c *Config) *string, valid ...string) field {
	return field{
		get: func(c *Config) any { return *ptr(c) },
		set: func(c *Config, value string) error {
			if len(valid) > 0 && !contains(valid, value) {
				return fmt.Errorf("invalid value: %s (valid: %v)", value, valid)
			}
			*ptr(c) = value
			return nil
		},
	}
}

func processFields(prefix string, proc func(c *Config) *stochastic.Process, out map[string]field) {
	out[prefix+".initial"] = floatField(func(c *Config) *float64 { return &proc(c).Initial })
	out[prefix+".mean"] = floatField(func(c *Config) *float64 { return &proc(c).Mean })
	out[prefix+".theta"] = floatField(func(c *Config) *float64 { return &proc(c).Theta })
	out[prefix+".sigma"] = floatField(func(c *Config) *float64 { return &proc(c).Sigma })
	out[prefix+".clamp.lo"] = floatField(func(c *Config) *float64 { return &proc(c).Clamp.Lo })
	out[prefix+".clamp.hi"] = floatField(func(c *Config) *float64 { return &proc(c).Clamp.Hi })
}

var fields = buildFields()

func buildFields() map[string]field {
	f := map[string]field{
		"seed": {
			get: func(c *Config) any { return c.Seed },
			set: func(c *Config, value string) error {
				n, err := strconv.ParseUint(value, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid seed: %s (must be a non-negative integer)", value)
				}
				c.Seed = n
				return nil
			},
		},
		"logging.level": stringField(func(c *Config) *string { return &c.Logging.Level }, "info", "debug", "trace"),
		"store.dir":     stringField(func(c *Config) *string { return &c.Store.Dir }),
		"export.format": stringField(func(c *Config) *string { return &c.Export.Format }, "arrow", "csv"),

		"backup.retention.max_count":      intField(func(c *Config) *int { return &c.Backup.Retention.MaxCount }),
		"backup.retention.max_age":        stringField(func(c *Config) *string { return &c.Backup.Retention.MaxAge }),
		"backup.retention.max_total_size": stringField(func(c *Config) *string { return &c.Backup.Retention.MaxTotalSize }),

		"fscv.scan.start":     floatField(func(c *Config) *float64 { return &c.FSCV.Scan.Start }),
		"fscv.scan.vertex":    floatField(func(c *Config) *float64 { return &c.FSCV.Scan.Vertex }),
		"fscv.scan.total":     floatField(func(c *Config) *float64 { return &c.FSCV.Scan.Total }),
		"fscv.dt":             floatField(func(c *Config) *float64 { return &c.FSCV.Dt }),
		"fscv.noise":          boolField(func(c *Config) *bool { return &c.FSCV.Noise }),
		"fscv.noise_fraction": floatField(func(c *Config) *float64 { return &c.FSCV.NoiseFraction }),
		"fscv.terms":          boolField(func(c *Config) *bool { return &c.FSCV.Terms }),

		"fscv.current.alpha":       floatField(func(c *Config) *float64 { return &c.FSCV.Current.Alpha }),
		"fscv.current.k0":          floatField(func(c *Config) *float64 { return &c.FSCV.Current.K0 }),
		"fscv.current.area":        floatField(func(c *Config) *float64 { return &c.FSCV.Current.Area }),
		"fscv.current.c_bulk":      floatField(func(c *Config) *float64 { return &c.FSCV.Current.CBulk }),
		"fscv.current.e0":          floatField(func(c *Config) *float64 { return &c.FSCV.Current.E0 }),
		"fscv.current.delta":       floatField(func(c *Config) *float64 { return &c.FSCV.Current.Delta }),
		"fscv.current.temperature": floatField(func(c *Config) *float64 { return &c.FSCV.Current.Temperature }),
		"fscv.current.electrons":   floatField(func(c *Config) *float64 { return &c.FSCV.Current.Electrons }),
		"fscv.current.scan_rate":   floatField(func(c *Config) *float64 { return &c.FSCV.Current.ScanRate }),
		"fscv.current.diffusivity": floatField(func(c *Config) *float64 { return &c.FSCV.Current.Diffusivity }),
		"fscv.current.unit_factor": floatField(func(c *Config) *float64 { return &c.FSCV.Current.UnitFactor }),

		"fscv.variant": {
			get: func(c *Config) any { return string(c.FSCV.Variant) },
			set: func(c *Config, value string) error {
				v := current.Variant(value)
				if !v.Valid() {
					return fmt.Errorf("invalid variant: %s (valid: full, ideal)", value)
				}
				c.FSCV.Variant = v
				return nil
			},
		},

		"oxidation.total":                       floatField(func(c *Config) *float64 { return &c.Oxidation.Total }),
		"oxidation.dt":                          floatField(func(c *Config) *float64 { return &c.Oxidation.Dt }),
		"oxidation.initial.dopamine":            floatField(func(c *Config) *float64 { return &c.Oxidation.Initial.Dopamine }),
		"oxidation.initial.peroxide":            floatField(func(c *Config) *float64 { return &c.Oxidation.Initial.Peroxide }),
		"oxidation.initial.quinone":             floatField(func(c *Config) *float64 { return &c.Oxidation.Initial.Quinone }),
		"oxidation.kinetics.k_base":             floatField(func(c *Config) *float64 { return &c.Oxidation.Kinetics.KBase }),
		"oxidation.kinetics.k_decomp":           floatField(func(c *Config) *float64 { return &c.Oxidation.Kinetics.KDecomp }),
		"oxidation.kinetics.ph_anchor":          floatField(func(c *Config) *float64 { return &c.Oxidation.Kinetics.PHAnchor }),
		"oxidation.kinetics.clamp_non_negative": boolField(func(c *Config) *bool { return &c.Oxidation.Kinetics.ClampNonNegative }),
		"oxidation.pulses.count":                intField(func(c *Config) *int { return &c.Oxidation.Pulses.Count }),
		"oxidation.pulses.magnitude.lo":         floatField(func(c *Config) *float64 { return &c.Oxidation.Pulses.Magnitude.Lo }),
		"oxidation.pulses.magnitude.hi":         floatField(func(c *Config) *float64 { return &c.Oxidation.Pulses.Magnitude.Hi }),

		"oxidation.pulses.policy": {
			get: func(c *Config) any { return string(c.Oxidation.Pulses.Policy) },
			set: func(c *Config, value string) error {
				p, err := events.ParsePolicy(value)
				if err != nil {
					return err
				}
				c.Oxidation.Pulses.Policy = p
				return nil
			},
		},

		"sweep.i0":          floatField(func(c *Config) *float64 { return &c.Sweep.I0 }),
		"sweep.alpha":       floatField(func(c *Config) *float64 { return &c.Sweep.Alpha }),
		"sweep.electrons":   floatField(func(c *Config) *float64 { return &c.Sweep.Electrons }),
		"sweep.temperature": floatField(func(c *Config) *float64 { return &c.Sweep.Temperature }),
		"sweep.eta_min":     floatField(func(c *Config) *float64 { return &c.Sweep.EtaMin }),
		"sweep.eta_max":     floatField(func(c *Config) *float64 { return &c.Sweep.EtaMax }),
		"sweep.points":      intField(func(c *Config) *int { return &c.Sweep.Points }),

		"cottrell.scan.start":          floatField(func(c *Config) *float64 { return &c.Cottrell.Scan.Start }),
		"cottrell.scan.vertex":         floatField(func(c *Config) *float64 { return &c.Cottrell.Scan.Vertex }),
		"cottrell.scan.total":          floatField(func(c *Config) *float64 { return &c.Cottrell.Scan.Total }),
		"cottrell.points":              intField(func(c *Config) *int { return &c.Cottrell.Points }),
		"cottrell.current.i0":          floatField(func(c *Config) *float64 { return &c.Cottrell.Current.I0 }),
		"cottrell.current.alpha":       floatField(func(c *Config) *float64 { return &c.Cottrell.Current.Alpha }),
		"cottrell.current.electrons":   floatField(func(c *Config) *float64 { return &c.Cottrell.Current.Electrons }),
		"cottrell.current.temperature": floatField(func(c *Config) *float64 { return &c.Cottrell.Current.Temperature }),
		"cottrell.current.e_eq":        floatField(func(c *Config) *float64 { return &c.Cottrell.Current.EEq }),
		"cottrell.current.k":           floatField(func(c *Config) *float64 { return &c.Cottrell.Current.K }),
		"cottrell.current.unit_factor": floatField(func(c *Config) *float64 { return &c.Cottrell.Current.UnitFactor }),
	}
	processFields("oxidation.ph", func(c *Config) *stochastic.Process { return &c.Oxidation.PH }, f)
	processFields("oxidation.oxygen", func(c *Config) *stochastic.Process { return &c.Oxidation.Oxygen }, f)
	return f
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves a configuration value by dot-notation key.
func (c *Config) Get(key string) (any, bool) {
	f, ok := fields[key]
	if !ok {
		return nil, false
	}
	return f.get(c), true
}

// Set parses value and stores it under a dot-notation key. The result is not
// validated; call Validate before saving.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return f.set(c, value)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
