package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
)

func TestPeriodStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), PeriodStart("week", now))
	assert.Equal(t, now.AddDate(0, -1, 0), PeriodStart("month", now))
	assert.Equal(t, now.AddDate(0, -3, 0), PeriodStart("quarter", now))
	assert.Equal(t, now.AddDate(-1, 0, 0), PeriodStart("year", now))

	// anything else means all time
	assert.True(t, PeriodStart("", now).IsZero())
	assert.True(t, PeriodStart("decade", now).IsZero())
}

func TestBuildSalesReport_ChartDecomposesTotal(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC)

	orders := []models.Order{
		{Total: 5000, Date: day1},
		{Total: 3000, Date: day1.Add(4 * time.Hour)}, // same day, later
		{Total: 2000, Date: day2},
	}

	report := buildSalesReport("month", orders)

	assert.InDelta(t, 10000.0, report.TotalSales, 1e-9)
	assert.Equal(t, 3, report.TotalOrders)
	assert.InDelta(t, 10000.0/3, report.AverageOrderValue, 1e-9)

	require.Len(t, report.ChartData, 2)
	assert.Equal(t, "2025-06-01", report.ChartData[0].Date)
	assert.InDelta(t, 8000.0, report.ChartData[0].Amount, 1e-9)
	assert.Equal(t, "2025-06-02", report.ChartData[1].Date)

	var chartSum float64
	for _, p := range report.ChartData {
		chartSum += p.Amount
	}
	assert.InDelta(t, report.TotalSales, chartSum, 1e-9)
}

func TestBuildSalesReport_RecentOrdersOldestFirst(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Newest-first input, the order the repository returns.
	orders := make([]models.Order, 7)
	for i := range orders {
		orders[i] = models.Order{
			ID:    primitive.NewObjectID(),
			Total: 1000,
			Date:  base.AddDate(0, 0, 6-i),
		}
	}

	report := buildSalesReport("month", orders)

	// The five most recent, listed oldest to newest for the admin chart.
	require.Len(t, report.RecentOrders, 5)
	for i := 1; i < len(report.RecentOrders); i++ {
		assert.True(t, report.RecentOrders[i-1].Date.Before(report.RecentOrders[i].Date))
	}
	assert.Equal(t, base.AddDate(0, 0, 6), report.RecentOrders[4].Date)
	assert.Equal(t, base.AddDate(0, 0, 2), report.RecentOrders[0].Date)
}

func TestBuildSalesReport_TopProductsByRevenue(t *testing.T) {
	cheap := primitive.NewObjectID()
	pricey := primitive.NewObjectID()

	orders := []models.Order{
		{
			Total: 11000,
			Date:  time.Now(),
			Items: []models.OrderItem{
				{ProductID: cheap, Title: "Открытка", Price: 200, Quantity: 5},
				{ProductID: pricey, Title: "Картина", Price: 10000, Quantity: 1},
			},
		},
		{
			Total: 400,
			Date:  time.Now(),
			Items: []models.OrderItem{
				{ProductID: cheap, Title: "Открытка", Price: 200, Quantity: 2},
			},
		},
	}

	report := buildSalesReport("all", orders)

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, "Картина", report.TopProducts[0].Title)
	assert.InDelta(t, 10000.0, report.TopProducts[0].Revenue, 1e-9)
	assert.Equal(t, "Открытка", report.TopProducts[1].Title)
	assert.Equal(t, 7, report.TopProducts[1].Quantity)
	assert.InDelta(t, 1400.0, report.TopProducts[1].Revenue, 1e-9)
}

func TestBuildSalesReport_Empty(t *testing.T) {
	report := buildSalesReport("week", nil)

	assert.Zero(t, report.TotalSales)
	assert.Zero(t, report.TotalOrders)
	assert.Zero(t, report.AverageOrderValue)
	assert.Empty(t, report.ChartData)
	assert.Empty(t, report.TopProducts)
}

func TestBuildWorkshopReport(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	attendees := func(n int) []models.Participant {
		out := make([]models.Participant, n)
		for i := range out {
			out[i] = models.Participant{UserID: primitive.NewObjectID()}
		}
		return out
	}

	held := models.Workshop{
		ID: primitive.NewObjectID(), Title: "Прошедший",
		Date: now.AddDate(0, 0, -3), Price: 2000,
		AvailableSpots: 2, RegisteredParticipants: attendees(8),
	}
	heldEarlier := models.Workshop{
		ID: primitive.NewObjectID(), Title: "Давний",
		Date: now.AddDate(0, -2, 0), Price: 1500,
		AvailableSpots: 5, RegisteredParticipants: attendees(5),
	}
	upcoming := models.Workshop{
		ID: primitive.NewObjectID(), Title: "Будущий",
		Date: now.AddDate(0, 0, 10), Price: 3000,
		AvailableSpots: 12, RegisteredParticipants: attendees(0),
	}

	report := buildWorkshopReport("month", []models.Workshop{held, heldEarlier, upcoming}, now)

	// heldEarlier is outside the month window; upcoming hasn't happened
	assert.Equal(t, 1, report.TotalWorkshops)
	assert.Equal(t, 8, report.TotalParticipants)
	assert.InDelta(t, 16000.0, report.Revenue, 1e-9)
	assert.InDelta(t, 8.0, report.AverageParticipants, 1e-9)

	require.Len(t, report.WorkshopStats, 1)
	st := report.WorkshopStats[0]
	assert.Equal(t, "Прошедший", st.Title)
	assert.Equal(t, 10, st.Capacity) // seats left + registered
	assert.Equal(t, 8, st.Participants)

	require.Len(t, report.UpcomingWorkshops, 1)
	assert.Equal(t, "Будущий", report.UpcomingWorkshops[0].Title)
}

func TestBuildWorkshopReport_AllTime(t *testing.T) {
	now := time.Now()
	w1 := models.Workshop{
		ID: primitive.NewObjectID(), Title: "A", Date: now.AddDate(-2, 0, 0), Price: 1000,
		RegisteredParticipants: []models.Participant{{UserID: primitive.NewObjectID()}},
	}
	w2 := models.Workshop{
		ID: primitive.NewObjectID(), Title: "B", Date: now.AddDate(0, 0, -1), Price: 1000,
		RegisteredParticipants: []models.Participant{{UserID: primitive.NewObjectID()}},
	}

	report := buildWorkshopReport("", []models.Workshop{w1, w2}, now)
	assert.Equal(t, 2, report.TotalWorkshops)
	assert.Equal(t, 2, report.TotalParticipants)
	assert.InDelta(t, 1.0, report.AverageParticipants, 1e-9)

	// stats sorted by date ascending
	require.Len(t, report.WorkshopStats, 2)
	assert.Equal(t, "A", report.WorkshopStats[0].Title)
}
