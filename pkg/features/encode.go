package features

import "fmt"

// Cell is one raw value of a record.
type Cell struct {
	Name   string
	Kind   FieldKind
	Text   string
	Number float64
}

// Record is a single raw input row in schema order.
type Record []Cell

// Values returns the record as name -> text, as it would be re-submitted.
func (r Record) Values() map[string]string {
	out := make(map[string]string, len(r))
	for _, c := range r {
		out[c.Name] = c.Text
	}
	return out
}

// Frame is a single encoded row: parallel column names and values.
type Frame struct {
	Columns []string
	Values  []float64
}

// Get returns the value of column name.
func (f Frame) Get(name string) (float64, bool) {
	for i, c := range f.Columns {
		if c == name {
			return f.Values[i], true
		}
	}
	return 0, false
}

// IndicatorName is the one-hot column name for a categorical value.
func IndicatorName(field, value string) string {
	return field + "_" + value
}

// OneHot encodes a record. Numeric cells keep their name and value; each
// categorical cell becomes one indicator column set to 1. Numeric columns
// come first, then indicators, each group in record order.
func OneHot(r Record) Frame {
	var out Frame
	for _, c := range r {
		if c.Kind == KindNumeric {
			out.Columns = append(out.Columns, c.Name)
			out.Values = append(out.Values, c.Number)
		}
	}
	for _, c := range r {
		if c.Kind == KindCategorical {
			out.Columns = append(out.Columns, IndicatorName(c.Name, c.Text))
			out.Values = append(out.Values, 1)
		}
	}
	return out
}

// AlignReport lists what alignment had to change.
type AlignReport struct {
	// Missing reference columns that were zero-filled.
	Missing []string
	// Unknown encoded columns that are not in the reference and were dropped.
	Unknown []string
}

// CheckReference reports an empty reference list or a repeated column name.
func CheckReference(reference []string) error {
	if len(reference) == 0 {
		return fmt.Errorf("reference column list is empty")
	}
	seen := make(map[string]struct{}, len(reference))
	for _, name := range reference {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate reference column %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Align reshapes f onto reference: every reference column absent from f is
// added with value 0, columns not in reference are dropped, and the result
// follows the reference order exactly.
func Align(f Frame, reference []string) (Frame, AlignReport, error) {
	var report AlignReport
	if err := CheckReference(reference); err != nil {
		return Frame{}, report, err
	}

	index := make(map[string]int, len(reference))
	for i, name := range reference {
		index[name] = i
	}

	out := Frame{
		Columns: append([]string(nil), reference...),
		Values:  make([]float64, len(reference)),
	}
	present := make([]bool, len(reference))

	for i, name := range f.Columns {
		j, ok := index[name]
		if !ok {
			report.Unknown = append(report.Unknown, name)
			continue
		}
		out.Values[j] = f.Values[i]
		present[j] = true
	}

	for j, ok := range present {
		if !ok {
			report.Missing = append(report.Missing, reference[j])
		}
	}

	return out, report, nil
}

// Encode one-hot encodes r and aligns it onto reference.
func Encode(r Record, reference []string) (Frame, AlignReport, error) {
	return Align(OneHot(r), reference)
}
