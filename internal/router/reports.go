package router

import (
	"time"

	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/deppfellow/storefront-analytics/internal/handler"
	"github.com/deppfellow/storefront-analytics/internal/service"
	"github.com/spf13/cobra"
)

// dateBinder parses date flags into request fields, collecting one field
// error per bad flag.
type dateBinder struct {
	loc    *time.Location
	errors []errs.FieldError
}

// parse leaves dst zero for an empty value so the required rule reports it.
func (b *dateBinder) parse(field, value string, dst *time.Time) {
	if value == "" {
		return
	}
	t, err := time.ParseInLocation(DateLayout, value, b.loc)
	if err != nil {
		b.errors = append(b.errors, errs.FieldError{Field: field, Error: "must be a date in YYYY-MM-DD format"})
		return
	}
	*dst = t
}

func (b *dateBinder) err() error {
	if len(b.errors) == 0 {
		return nil
	}
	return errs.NewInvalidParameterError("Validation failed", b.errors)
}

func (r *Router) dates() *dateBinder {
	return &dateBinder{loc: r.handlers.Services.Analytics.Location()}
}

func reportCommand(use, short string, run func(cmd *cobra.Command) error) *cobra.Command {
	return &cobra.Command{
		Use:         use,
		Short:       short,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsKey: needsSnapshot},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}
}

func registerReportCommands(root *cobra.Command, r *Router) {
	var dashboard service.DashboardRequest
	dashboardCmd := reportCommand("dashboard", "Sales dashboard for a period against the one before it", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "dashboard", r.handlers.Services.Analytics.Dashboard, &dashboard, nil)
	})
	dashboardCmd.Flags().StringVar(&dashboard.DateRange, "range", service.DefaultDashboardRange, "last_7_days, last_30_days, last_90_days or last_365_days")

	var (
		clv        service.CLVRequest
		customerID int64
	)
	clvCmd := reportCommand("clv", "Customer lifetime value estimates", func(cmd *cobra.Command) error {
		bind := func() error {
			if cmd.Flags().Changed("customer") {
				clv.CustomerID = &customerID
			}
			return nil
		}
		return handler.Handle(cmd.Context(), r.handlers.Base, "clv", r.handlers.Services.Analytics.CustomerLifetimeValue, &clv, bind)
	})
	clvCmd.Flags().Int64Var(&customerID, "customer", 0, "Only this customer")
	clvCmd.Flags().IntVar(&clv.Limit, "limit", service.DefaultCLVLimit, "Maximum rows")

	var (
		daily     service.DailyReportRequest
		dailyDate string
	)
	dailyCmd := reportCommand("daily", "Daily sales report", func(cmd *cobra.Command) error {
		bind := func() error {
			b := r.dates()
			b.parse("date", dailyDate, &daily.Date)
			return b.err()
		}
		return handler.Handle(cmd.Context(), r.handlers.Base, "daily_report", r.handlers.Services.Analytics.Daily, &daily, bind)
	})
	dailyCmd.Flags().StringVar(&dailyDate, "date", "", "Report date YYYY-MM-DD")

	var retention service.RetentionRequest
	retentionCmd := reportCommand("retention", "Monthly cohort retention", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "retention", r.handlers.Services.Analytics.Retention, &retention, nil)
	})
	retentionCmd.Flags().IntVar(&retention.MonthsBack, "months-back", service.DefaultMonthsBack, "Cohort months to analyze")

	segmentsCmd := reportCommand("segments", "Customer segments by frequency and recency", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "segments", r.handlers.Services.Analytics.Segments, service.NoParams{}, nil)
	})

	var trends service.TrendsRequest
	trendsCmd := reportCommand("trends", "Monthly sales trends with growth", func(cmd *cobra.Command) error {
		bind := func() error {
			if !cmd.Flags().Changed("year") {
				trends.Year = r.handlers.Services.Analytics.Now().Year()
			}
			trends.GrowthPolicy = r.flags.GrowthPolicy
			return nil
		}
		return handler.Handle(cmd.Context(), r.handlers.Base, "monthly_trends", r.handlers.Services.Analytics.MonthlyTrends, &trends, bind)
	})
	trendsCmd.Flags().IntVar(&trends.Year, "year", 0, "Calendar year (default: the current year)")

	anomaliesCmd := reportCommand("anomalies", "Days whose sales deviate from the 90 day mean", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "anomalies", r.handlers.Services.Analytics.Anomalies, service.NoParams{}, nil)
	})

	abcCmd := reportCommand("abc", "ABC classification of products by revenue", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "abc_analysis", r.handlers.Services.Analytics.ABC, service.NoParams{}, nil)
	})

	productsCmd := reportCommand("products", "Product performance by category", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "product_performance", r.handlers.Services.Analytics.ProductPerformance, service.NoParams{}, nil)
	})

	var top service.TopCustomersRequest
	topCmd := reportCommand("top-customers", "Customers ranked by total spend", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "top_customers", r.handlers.Services.Analytics.TopCustomers, &top, nil)
	})
	topCmd.Flags().IntVar(&top.Limit, "limit", 10, "Maximum customers")

	var (
		sales                service.SalesReportRequest
		salesStart, salesEnd string
	)
	salesCmd := reportCommand("sales", "Sales report for a date range", func(cmd *cobra.Command) error {
		bind := func() error {
			b := r.dates()
			b.parse("start_date", salesStart, &sales.StartDate)
			b.parse("end_date", salesEnd, &sales.EndDate)
			return b.err()
		}
		return handler.Handle(cmd.Context(), r.handlers.Base, "sales_report", r.handlers.Services.Analytics.SalesReport, &sales, bind)
	})
	salesCmd.Flags().StringVar(&sales.ReportType, "type", service.DefaultSalesReport, "summary or detailed")
	salesCmd.Flags().StringVar(&salesStart, "start", "", "First day YYYY-MM-DD")
	salesCmd.Flags().StringVar(&salesEnd, "end", "", "Last day YYYY-MM-DD")

	var (
		orders                 service.OrdersRequest
		ordersStart, ordersEnd string
	)
	ordersCmd := reportCommand("orders", "Orders placed in a date range", func(cmd *cobra.Command) error {
		bind := func() error {
			b := r.dates()
			b.parse("start_date", ordersStart, &orders.StartDate)
			b.parse("end_date", ordersEnd, &orders.EndDate)
			return b.err()
		}
		return handler.Handle(cmd.Context(), r.handlers.Base, "orders", r.handlers.Services.Analytics.Orders, &orders, bind)
	})
	ordersCmd.Flags().StringVar(&ordersStart, "start", "", "First day YYYY-MM-DD")
	ordersCmd.Flags().StringVar(&ordersEnd, "end", "", "Last day YYYY-MM-DD")
	ordersCmd.Flags().StringVar(&orders.Status, "status", "", "Only orders with this status")

	reorderCmd := reportCommand("reorder", "Products that will run out within a week", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "reorder_recommendations", r.handlers.Services.Analytics.Reorder, service.NoParams{}, nil)
	})

	var slow service.SlowMoversRequest
	slowCmd := reportCommand("slow-movers", "Stocked products without recent sales", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "slow_movers", r.handlers.Services.Analytics.SlowMovers, &slow, nil)
	})
	slowCmd.Flags().IntVar(&slow.Days, "days", 90, "Days without a sale")

	qualityCmd := reportCommand("quality", "Data quality checks on the raw snapshot", func(cmd *cobra.Command) error {
		return handler.Handle(cmd.Context(), r.handlers.Base, "data_quality", r.handlers.Services.Analytics.Quality, service.NoParams{}, nil)
	})

	root.AddCommand(
		dashboardCmd,
		clvCmd,
		dailyCmd,
		retentionCmd,
		segmentsCmd,
		trendsCmd,
		anomaliesCmd,
		abcCmd,
		productsCmd,
		topCmd,
		salesCmd,
		ordersCmd,
		reorderCmd,
		slowCmd,
		qualityCmd,
	)
}
