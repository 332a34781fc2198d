package chartjs

import (
	_ "embed"
	"html/template"
	"io"
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// WritePage writes a standalone HTML page rendering the chart.
func WritePage(w io.Writer, title string, chart Chart) error {
	return pageTemplate.Execute(w, struct {
		Title string
		Chart Chart
	}{
		Title: title,
		Chart: chart,
	})
}
