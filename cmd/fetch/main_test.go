package main

import (
	"bytes"
	"testing"

	"github.com/icodeforyou/mipi-go/gasday"
	"github.com/icodeforyou/mipi-go/mipi"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	table := &mipi.Table{
		ReportName: mipi.ReportSystemAveragePrice,
		Columns:    []string{mipi.FieldApplicableFor, mipi.FieldValue, mipi.FieldQualityIndicator},
		Records: []mipi.Record{
			{
				Fields: []mipi.Field{
					{Name: mipi.FieldApplicableFor, Value: "2020-01-01T00:00:00Z"},
					{Name: mipi.FieldValue, Value: "50.000"},
					{Name: mipi.FieldQualityIndicator, Value: "A, B"},
				},
				Value: 50,
			},
			{
				Fields: []mipi.Field{
					{Name: mipi.FieldApplicableFor, Value: "2020-01-02T00:00:00Z"},
					{Name: mipi.FieldValue, Value: "51.2"},
				},
				Value: 51.2,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, table))

	expected := "ApplicableFor,Value,QualityIndicator\n" +
		"2020-01-01T00:00:00Z,50,\"A, B\"\n" +
		"2020-01-02T00:00:00Z,51.2,\n"
	require.Equal(t, expected, buf.String())
}

func TestWriteCSVEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, &mipi.Table{}))
	require.Empty(t, buf.String())
}

func TestDateRange(t *testing.T) {
	today := gasday.New(2020, 2, 1)

	tests := []struct {
		name     string
		from, to string
		wantFrom gasday.Date
		wantTo   gasday.Date
		wantErr  bool
	}{
		{name: "defaults", wantFrom: "2020-01-02", wantTo: "2020-01-31"},
		{name: "explicit", from: "2020-01-01", to: "2020-04-30", wantFrom: "2020-01-01", wantTo: "2020-04-30"},
		{name: "only to", to: "2020-01-10", wantFrom: "2019-12-12", wantTo: "2020-01-10"},
		{name: "bad from", from: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := dateRange(tt.from, tt.to, today)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantFrom, from)
			require.Equal(t, tt.wantTo, to)
		})
	}
}
