package chartjs

// Chart is a Chart.js configuration for a daily series, passed to the
// Chart constructor as is.
type Chart struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset holds one value per label, nil is a gas day without a value.
type Dataset struct {
	Label       string     `json:"label,omitempty"`
	Data        []*float64 `json:"data"`
	BorderColor string     `json:"borderColor"`
	BorderWidth int        `json:"borderWidth"`
	PointRadius int        `json:"pointRadius"`
	Tension     float64    `json:"tension"`
	SpanGaps    bool       `json:"spanGaps"`
	YAxisID     string     `json:"yAxisID"`
}

type Options struct {
	Responsive bool             `json:"responsive"`
	Plugins    Plugins          `json:"plugins"`
	Scales     map[string]Scale `json:"scales"`
}

type Plugins struct {
	Legend Legend `json:"legend"`
	Title  Title  `json:"title"`
}

type Legend struct {
	Display bool `json:"display"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Scale struct {
	Type     string `json:"type"`
	Position string `json:"position"`
	Title    Title  `json:"title"`
}
