package chartjs

import (
	"math"
)

const ColorBlue = "#2196f3d4"

const (
	xAxisID = "x"
	yAxisID = "YAxis1"
)

// NewChart returns a line chart with one dataset per color, all datasets
// sized to the labels and plotted against the left y axis.
func NewChart(title string, labels []string, colors ...string) Chart {
	if len(colors) == 0 {
		colors = []string{ColorBlue}
	}

	datasets := make([]Dataset, len(colors))
	for i, color := range colors {
		datasets[i] = Dataset{
			Data:        make([]*float64, len(labels)),
			BorderColor: color,
			BorderWidth: 1,
			PointRadius: 1,
			Tension:     0.4,
			SpanGaps:    true,
			YAxisID:     yAxisID,
		}
	}

	return Chart{
		Type: "line",
		Data: Data{
			Labels:   labels,
			Datasets: datasets,
		},
		Options: Options{
			Responsive: true,
			Plugins: Plugins{
				Legend: Legend{Display: len(colors) > 1},
				Title:  Title{Display: title != "", Text: title},
			},
			Scales: map[string]Scale{
				xAxisID: {Type: "category", Position: "bottom"},
				yAxisID: {Type: "linear", Position: "left"},
			},
		},
	}
}

func (s Scale) WithTitle(title string) Scale {
	s.Title = Title{Display: title != "", Text: title}
	return s
}

func (c Chart) WithYTitle(title string) Chart {
	c.Options.Scales[yAxisID] = c.Options.Scales[yAxisID].WithTitle(title)
	return c
}

func (c Chart) WithXTitle(title string) Chart {
	c.Options.Scales[xAxisID] = c.Options.Scales[xAxisID].WithTitle(title)
	return c
}

func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(num * p)
	result := rounded / p
	return &result
}
