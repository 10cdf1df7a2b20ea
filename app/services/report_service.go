package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/pkg/cache"
	"github.com/arthomesoni/arthome/pkg/collection"
	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/metrics"
)

const reportCacheTTL = 5 * time.Minute

// PeriodStart returns the report window start for a period keyword.
// Anything other than the known keywords means all time (zero value).
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	case "quarter":
		return now.AddDate(0, -3, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// SalesPoint is one day's revenue on the sales chart.
type SalesPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// ProductStat aggregates one product's sales.
type ProductStat struct {
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// SalesReport is the response of GET /api/reports/sales.
type SalesReport struct {
	Period            string         `json:"period"`
	TotalSales        float64        `json:"totalSales"`
	TotalOrders       int            `json:"totalOrders"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	ChartData         []SalesPoint   `json:"chartData"`
	TopProducts       []ProductStat  `json:"topProducts"`
	RecentOrders      []models.Order `json:"recentOrders"`
}

// ParticipantPoint is one day's participant count on the workshops chart.
type ParticipantPoint struct {
	Date         string `json:"date"`
	Participants int    `json:"participants"`
}

// WorkshopStat aggregates one workshop's attendance.
type WorkshopStat struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Date         string  `json:"date"`
	Participants int     `json:"participants"`
	Capacity     int     `json:"capacity"`
	Revenue      float64 `json:"revenue"`
}

// WorkshopReport is the response of GET /api/reports/workshops.
type WorkshopReport struct {
	Period              string             `json:"period"`
	TotalWorkshops      int                `json:"totalWorkshops"`
	TotalParticipants   int                `json:"totalParticipants"`
	Revenue             float64            `json:"revenue"`
	AverageParticipants float64            `json:"averageParticipants"`
	WorkshopStats       []WorkshopStat     `json:"workshopStats"`
	ChartData           []ParticipantPoint `json:"chartData"`
	UpcomingWorkshops   []models.Workshop  `json:"upcomingWorkshops"`
}

// ReportService computes admin sales and workshop analytics. Responses are
// cached in Redis for a few minutes and invalidated when orders or bookings
// change the underlying data.
type ReportService struct {
	orders    OrderStore
	workshops WorkshopStore
}

func NewReportService(orders OrderStore, workshops WorkshopStore) *ReportService {
	return &ReportService{orders: orders, workshops: workshops}
}

func reportCacheKey(kind, period string) string {
	return fmt.Sprintf("reports:%s:%s", kind, period)
}

// InvalidateCache drops cached reports. Wired to the order.created and
// workshop.booked events.
func InvalidateCache() {
	periods := []string{"week", "month", "quarter", "year", "all"}
	keys := make([]string, 0, len(periods)*2)
	for _, p := range periods {
		keys = append(keys, reportCacheKey("sales", p), reportCacheKey("workshops", p))
	}
	if err := cache.Del(keys...); err != nil {
		logger.Warn("reports: cache invalidation failed", "error", err)
	}
}

func normalizePeriod(period string) string {
	switch period {
	case "week", "month", "quarter", "year":
		return period
	default:
		return "all"
	}
}

// Sales builds the sales report for the period.
func (s *ReportService) Sales(ctx context.Context, period string) (SalesReport, error) {
	key := reportCacheKey("sales", normalizePeriod(period))

	var cached SalesReport
	if cache.Get(key, &cached) {
		metrics.CacheHits.WithLabelValues("redis").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("redis").Inc()

	now := time.Now()
	orders, err := s.orders.Since(ctx, PeriodStart(period, now))
	if err != nil {
		return SalesReport{}, err
	}

	report := buildSalesReport(period, orders)
	if err := cache.Set(key, report, reportCacheTTL); err != nil {
		logger.Warn("reports: cache write failed", "error", err)
	}
	return report, nil
}

// buildSalesReport aggregates orders into the sales report. Pure function;
// exercised directly by tests.
func buildSalesReport(period string, orders []models.Order) SalesReport {
	totalSales := collection.SumBy(orders, func(o models.Order) float64 { return o.Total })
	totalOrders := len(orders)

	// Daily buckets for the chart. Buckets decompose the total exactly.
	daily := map[string]float64{}
	for _, o := range orders {
		day := o.Date.UTC().Format("2006-01-02")
		daily[day] += o.Total
	}
	chart := make([]SalesPoint, 0, len(daily))
	for day, amount := range daily {
		chart = append(chart, SalesPoint{Date: day, Amount: amount})
	}
	sort.Slice(chart, func(i, j int) bool { return chart[i].Date < chart[j].Date })

	// Revenue per product across all order lines.
	stats := map[string]*ProductStat{}
	for _, o := range orders {
		for _, item := range o.Items {
			pid := "unknown"
			if !item.ProductID.IsZero() {
				pid = item.ProductID.Hex()
			}
			st, ok := stats[pid]
			if !ok {
				st = &ProductStat{Title: item.Title}
				stats[pid] = st
			}
			st.Quantity += item.Quantity
			st.Revenue += item.Price * float64(item.Quantity)
		}
	}
	products := make([]ProductStat, 0, len(stats))
	for _, st := range stats {
		products = append(products, *st)
	}
	top := collection.Take(collection.SortByDesc(products, func(p ProductStat) float64 { return p.Revenue }), 10)

	avg := 0.0
	if totalOrders > 0 {
		avg = totalSales / float64(totalOrders)
	}

	// Orders arrive newest first; the storefront shows the last five placed,
	// listed oldest to newest.
	recent := collection.Reverse(collection.Take(orders, 5))

	return SalesReport{
		Period:            period,
		TotalSales:        totalSales,
		TotalOrders:       totalOrders,
		AverageOrderValue: avg,
		ChartData:         chart,
		TopProducts:       top,
		RecentOrders:      recent,
	}
}

// Workshops builds the workshop attendance report for the period.
func (s *ReportService) Workshops(ctx context.Context, period string) (WorkshopReport, error) {
	key := reportCacheKey("workshops", normalizePeriod(period))

	var cached WorkshopReport
	if cache.Get(key, &cached) {
		metrics.CacheHits.WithLabelValues("redis").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("redis").Inc()

	now := time.Now()
	all, err := s.workshops.All(ctx)
	if err != nil {
		return WorkshopReport{}, err
	}

	report := buildWorkshopReport(period, all, now)
	if err := cache.Set(key, report, reportCacheTTL); err != nil {
		logger.Warn("reports: cache write failed", "error", err)
	}
	return report, nil
}

// buildWorkshopReport aggregates workshops held inside the window.
func buildWorkshopReport(period string, all []models.Workshop, now time.Time) WorkshopReport {
	start := PeriodStart(period, now)
	workshops := collection.Filter(all, func(w models.Workshop) bool {
		if w.Date.After(now) {
			return false
		}
		return start.IsZero() || !w.Date.Before(start)
	})
	sort.Slice(workshops, func(i, j int) bool { return workshops[i].Date.Before(workshops[j].Date) })

	totalParticipants := 0
	var revenue float64
	stats := make([]WorkshopStat, 0, len(workshops))
	daily := map[string]int{}

	for _, w := range workshops {
		n := len(w.RegisteredParticipants)
		totalParticipants += n
		revenue += float64(n) * w.Price

		day := w.Date.UTC().Format("2006-01-02")
		daily[day] += n

		stats = append(stats, WorkshopStat{
			ID:           w.ID.Hex(),
			Title:        w.Title,
			Date:         day,
			Participants: n,
			Capacity:     w.AvailableSpots + n,
			Revenue:      float64(n) * w.Price,
		})
	}

	chart := make([]ParticipantPoint, 0, len(daily))
	for day, n := range daily {
		chart = append(chart, ParticipantPoint{Date: day, Participants: n})
	}
	sort.Slice(chart, func(i, j int) bool { return chart[i].Date < chart[j].Date })

	avg := 0.0
	if len(workshops) > 0 {
		avg = float64(totalParticipants) / float64(len(workshops))
	}

	upcoming := collection.Filter(all, func(w models.Workshop) bool { return w.Date.After(now) })
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Date.Before(upcoming[j].Date) })
	upcoming = collection.Take(upcoming, 5)

	return WorkshopReport{
		Period:              period,
		TotalWorkshops:      len(workshops),
		TotalParticipants:   totalParticipants,
		Revenue:             revenue,
		AverageParticipants: avg,
		WorkshopStats:       stats,
		ChartData:           chart,
		UpcomingWorkshops:   upcoming,
	}
}
