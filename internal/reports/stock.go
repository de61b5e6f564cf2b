package reports

import (
	"bytes"
	"html/template"
	"strconv"
	"time"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
)

// ContentType is what spreadsheet software expects for the HTML-as-xls export.
const ContentType = "application/vnd.ms-excel"

const thousandsSeparator = " "

var stockTemplate = template.Must(template.New("stock").Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel" xmlns="http://www.w3.org/1999/xhtml">
<head>
<meta charset="utf-8">
<style>
table { border-collapse: collapse; width: 100%; font-family: Arial, sans-serif; }
th { background-color: #1e3a5f; color: white; font-weight: bold; padding: 12px; text-align: left; border: 1px solid #000; }
td { padding: 10px; border: 1px solid #000; }
tr:nth-child(even) { background-color: #f2f2f2; }
.negative { color: red; font-weight: bold; }
.positive { color: green; font-weight: bold; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<table>
<thead>
<tr>
<th>Article</th>
<th>Catégorie</th>
<th>Stock Initial</th>
<th>Stock Actuel</th>
<th>Différence</th>
<th>Prix Bar (FCFA)</th>
<th>Prix Snackbar (FCFA)</th>
</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>
<td>{{.Name}}</td>
<td>{{.Category}}</td>
<td>{{.Initial}}</td>
<td>{{.Current}}</td>
<td class="{{.DiffClass}}">{{.DiffText}}</td>
<td>{{.PriceBar}}</td>
<td>{{.PriceSnackbar}}</td>
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// Row is one article line of the stock report.
type Row struct {
	Name          string
	Category      string
	Initial       int
	Current       int
	Difference    int
	DiffClass     string
	DiffText      string
	PriceBar      string
	PriceSnackbar string
}

// Report is a rendered export ready to be served or archived.
type Report struct {
	Day      string
	Title    string
	Filename string
	Rows     []Row
	Body     []byte
}

// BuildRows compares current stock with the day's snapshot. Articles missing
// from the snapshot, or every article when there is none, start at their
// current stock.
func BuildRows(articles []models.Article, snapshot *models.StockSnapshot) []Row {
	rows := make([]Row, 0, len(articles))
	for _, a := range articles {
		initial := a.Stock
		if snapshot != nil {
			if v, ok := snapshot.Stock[a.ID]; ok {
				initial = v
			}
		}
		diff := a.Stock - initial
		row := Row{
			Name:          a.Name,
			Category:      a.CategoryLabel(),
			Initial:       initial,
			Current:       a.Stock,
			Difference:    diff,
			DiffText:      strconv.Itoa(diff),
			PriceBar:      formatAmount(a.PriceBar),
			PriceSnackbar: formatAmount(a.PriceSnackbar),
		}
		switch {
		case diff < 0:
			row.DiffClass = "negative"
		case diff > 0:
			row.DiffClass = "positive"
			row.DiffText = "+" + row.DiffText
		}
		rows = append(rows, row)
	}
	return rows
}

// RenderStock renders the report for the calendar date of at.
func RenderStock(articles []models.Article, snapshot *models.StockSnapshot, at time.Time) (*Report, error) {
	report := &Report{
		Day:      at.Format(models.SnapshotDayForm),
		Title:    "Rapport de Stock - " + at.Format("02/01/2006"),
		Filename: "stock_" + at.Format("02-01-2006") + ".xls",
		Rows:     BuildRows(articles, snapshot),
	}
	var buf bytes.Buffer
	if err := stockTemplate.Execute(&buf, report); err != nil {
		return nil, err
	}
	report.Body = buf.Bytes()
	return report, nil
}

func formatAmount(a models.Amount) string {
	v := int64(a)
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, thousandsSeparator...)
		}
		out = append(out, digits[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
