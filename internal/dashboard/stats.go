package dashboard

import (
	"time"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
)

// DefaultLowStockThreshold flags articles with fewer units than this.
const DefaultLowStockThreshold = 10

// Stats is the dashboard projection. Every field is recomputed on demand.
type Stats struct {
	Day            string        `json:"day"`
	Mode           enums.Mode    `json:"mode"`
	TotalSales     models.Amount `json:"totalSales"`
	TodaySales     models.Amount `json:"todaySales"`
	ModeTotalSales models.Amount `json:"modeTotalSales"`
	ModeTodaySales models.Amount `json:"modeTodaySales"`
	BarTotal       models.Amount `json:"barTotal"`
	SnackbarTotal  models.Amount `json:"snackbarTotal"`
	OccupiedTables int           `json:"occupiedTables"`
	TotalTables    int           `json:"totalTables"`
	LowStockItems  int           `json:"lowStockItems"`
	TotalArticles  int           `json:"totalArticles"`
}

// Input carries the collections a Stats value is derived from.
type Input struct {
	Articles          []models.Article
	Tables            []models.Table
	Payments          []models.Payment
	Mode              enums.Mode
	Now               time.Time
	Location          *time.Location
	LowStockThreshold int
}

func Compute(in Input) Stats {
	threshold := in.LowStockThreshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	day := models.DayKey(in.Now, in.Location)
	today := PaymentsOn(in.Payments, day, in.Location)
	byMode := TotalsByMode(in.Payments)

	return Stats{
		Day:            day,
		Mode:           in.Mode,
		TotalSales:     Sum(in.Payments),
		TodaySales:     Sum(today),
		ModeTotalSales: byMode[in.Mode],
		ModeTodaySales: TotalsByMode(today)[in.Mode],
		BarTotal:       byMode[enums.ModeBar],
		SnackbarTotal:  byMode[enums.ModeSnackbar],
		OccupiedTables: OccupiedCount(in.Tables),
		TotalTables:    len(in.Tables),
		LowStockItems:  LowStockCount(in.Articles, threshold),
		TotalArticles:  len(in.Articles),
	}
}

func Sum(payments []models.Payment) models.Amount {
	var total models.Amount
	for _, p := range payments {
		total += p.Amount
	}
	return total
}

// PaymentsOn keeps the payments whose date, seen in loc, is the calendar day.
func PaymentsOn(payments []models.Payment, day string, loc *time.Location) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if models.DayKey(p.Date, loc) == day {
			out = append(out, p)
		}
	}
	return out
}

func TotalsByMode(payments []models.Payment) map[enums.Mode]models.Amount {
	out := map[enums.Mode]models.Amount{enums.ModeBar: 0, enums.ModeSnackbar: 0}
	for _, p := range payments {
		out[p.Mode] += p.Amount
	}
	return out
}

func OccupiedCount(tables []models.Table) int {
	n := 0
	for _, t := range tables {
		if t.Status == enums.TableStatusOccupied {
			n++
		}
	}
	return n
}

func LowStockCount(articles []models.Article, threshold int) int {
	n := 0
	for _, a := range articles {
		if a.Stock < threshold {
			n++
		}
	}
	return n
}
