package email

import "github.com/deppfellow/storefront-analytics/internal/report"

// PreviewData is sample input for each template, used by
// `analytics email preview`.
var PreviewData = map[Template]any{
	TemplateDailyReport: &report.DailyReport{
		Date: "2024-06-12",
		Summary: report.DailySummary{
			TotalOrders:        3,
			TotalCustomers:     2,
			TotalSales:         180.5,
			NewCustomers:       1,
			ReturningCustomers: 1,
		},
		TopProducts: []report.ProductRevenue{
			{ProductID: 11, ProductName: "Atlas", Revenue: 100},
			{ProductID: 10, ProductName: "Novel", Revenue: 80.5},
		},
		GeographicBreakdown: []report.CityRevenue{
			{City: "Boston", Revenue: 120.5, Orders: 2},
			{City: "Denver", Revenue: 60, Orders: 1},
		},
	},
}
