package series

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr bool
	}{
		{"ok", Table{{"t", []float64{0, 1}}, {"e", []float64{2, 3}}}, false},
		{"empty", Table{}, true},
		{"ragged", Table{{"t", []float64{0, 1}}, {"e", []float64{2}}}, true},
		{"duplicate", Table{{"t", []float64{0}}, {"t", []float64{1}}}, true},
		{"unnamed", Table{{"", []float64{0}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetAndNames(t *testing.T) {
	tab := Table{{"time", []float64{0, 1, 2}}, {"current", []float64{5, 6, 7}}}
	c, ok := tab.Get("current")
	if !ok || c.Values[2] != 7 {
		t.Errorf("Get(current) = %+v, %v", c, ok)
	}
	if _, ok := tab.Get("missing"); ok {
		t.Error("Get(missing) should fail")
	}
	names := tab.Names()
	if len(names) != 2 || names[0] != "time" || names[1] != "current" {
		t.Errorf("Names() = %v", names)
	}
	if tab.Rows() != 3 {
		t.Errorf("Rows() = %d", tab.Rows())
	}
}
