package mipi

import (
	"fmt"
	"strings"

	"github.com/icodeforyou/mipi-go/convert"
	"github.com/icodeforyou/mipi-go/gasday"
)

const (
	FieldApplicableAt       = "ApplicableAt"
	FieldApplicableFor      = "ApplicableFor"
	FieldValue              = "Value"
	FieldGeneratedTimeStamp = "GeneratedTimeStamp"
	FieldQualityIndicator   = "QualityIndicator"
	FieldSubstituted        = "Substituted"
	FieldCreatedDate        = "CreatedDate"
)

// Query selects one report over an inclusive range of gas days.
type Query struct {
	ReportName string
	From       gasday.Date
	To         gasday.Date
	Latest     bool // only the most recently published value per gas day
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.ReportName) == "" {
		return ErrEmptyReportName
	}
	if _, err := gasday.Parse(q.From.String()); err != nil {
		return fmt.Errorf("from date: %w", err)
	}
	if _, err := gasday.Parse(q.To.String()); err != nil {
		return fmt.Errorf("to date: %w", err)
	}
	if q.From.After(q.To) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, q.From, q.To)
	}
	return nil
}

type Field struct {
	Name  string
	Value string
	Nil   bool
}

// Record is one published observation. Fields hold the raw values in
// the order the service returned them, Value is the parsed "Value" field.
type Record struct {
	Fields []Field
	Value  float64
}

func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, !f.Nil
		}
	}
	return "", false
}

// Map returns the raw fields by name, nil for fields the service marked xsi:nil.
func (r Record) Map() map[string]*string {
	m := make(map[string]*string, len(r.Fields))
	for _, f := range r.Fields {
		if f.Nil {
			m[f.Name] = nil
			continue
		}
		v := f.Value
		m[f.Name] = &v
	}
	return m
}

func (r Record) ApplicableFor() string {
	v, _ := r.Get(FieldApplicableFor)
	return v
}

func (r Record) ApplicableAt() string {
	v, _ := r.Get(FieldApplicableAt)
	return v
}

func (r Record) GeneratedTimeStamp() string {
	v, _ := r.Get(FieldGeneratedTimeStamp)
	return v
}

func (r Record) QualityIndicator() string {
	v, _ := r.Get(FieldQualityIndicator)
	return v
}

func (r Record) Substituted() string {
	v, _ := r.Get(FieldSubstituted)
	return v
}

func (r Record) GasDay() (gasday.Date, error) {
	return gasday.FromTimestamp(r.ApplicableFor())
}

// Table is the result of one fetch. Columns are taken from the first record.
type Table struct {
	ReportName string
	Columns    []string
	Records    []Record
}

func (t *Table) Len() int {
	return len(t.Records)
}

func (t *Table) IsEmpty() bool {
	return len(t.Records) == 0
}

func (t *Table) Values() []float64 {
	values := make([]float64, len(t.Records))
	for i, r := range t.Records {
		values[i] = r.Value
	}
	return values
}

// Column returns the raw values of one column, empty strings where a record lacks the field.
func (t *Table) Column(name string) []string {
	col := make([]string, len(t.Records))
	for i, r := range t.Records {
		col[i], _ = r.Get(name)
	}
	return col
}

func newTable(reportName string, raws []rawRecord) (*Table, error) {
	table := &Table{ReportName: reportName, Records: make([]Record, 0, len(raws))}
	for i, raw := range raws {
		record, err := raw.toRecord()
		if err != nil {
			return nil, fmt.Errorf("%s, row %d: %w", reportName, i, err)
		}
		table.Records = append(table.Records, record)
	}

	if len(table.Records) > 0 {
		table.Columns = make([]string, len(table.Records[0].Fields))
		for i, f := range table.Records[0].Fields {
			table.Columns[i] = f.Name
		}
	}

	return table, nil
}

func (raw rawRecord) toRecord() (Record, error) {
	record := Record{Fields: make([]Field, len(raw.Fields))}
	for i, f := range raw.Fields {
		record.Fields[i] = Field{
			Name:  f.XMLName.Local,
			Value: strings.TrimSpace(f.Value),
			Nil:   f.Nil == "true",
		}
	}

	value, ok := record.Get(FieldValue)
	if !ok {
		return Record{}, fmt.Errorf("%w: missing %s field", ErrInvalidValue, FieldValue)
	}
	v, err := convert.DecimalToFloat64(value)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidValue, value)
	}
	record.Value = v

	return record, nil
}
