package router

import (
	"context"
	"errors"

	"github.com/deppfellow/storefront-analytics/internal/handler"
	"github.com/deppfellow/storefront-analytics/internal/service"
	"github.com/spf13/cobra"
)

// errUnhealthy fails the status command after its envelope is printed.
var errUnhealthy = errors.New("one or more health checks failed")

// registerSystemCommands registers the commands that operate the service
// rather than report on the data.
func registerSystemCommands(root *cobra.Command, r *Router) {
	migrateCmd := &cobra.Command{
		Use:         "migrate",
		Short:       "Apply the storefront schema migrations",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsKey: needsConfig},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handler.Handle(cmd.Context(), r.handlers.Base, "migrate", r.handlers.Migrate.Migrate, service.NoParams{}, nil)
		},
	}

	statusCmd := &cobra.Command{
		Use:         "status",
		Short:       "Check database and Redis connectivity",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsKey: needsRedis},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var report *handler.HealthReport
			check := func(ctx context.Context, req service.NoParams) (*handler.HealthReport, error) {
				var err error
				report, err = r.handlers.Health.CheckHealth(ctx, req)
				return report, err
			}
			if err := handler.Handle(cmd.Context(), r.handlers.Base, "status", check, service.NoParams{}, nil); err != nil {
				return err
			}
			if !report.Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}

	workerCmd := &cobra.Command{
		Use:         "worker",
		Short:       "Run the scheduler and the daily report delivery worker",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsKey: needsSnapshot + "," + needsRedis},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handler.Handle(cmd.Context(), r.handlers.Base, "worker", r.handlers.Worker.Run, service.NoParams{}, nil)
		},
	}

	enqueueCmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Submit background tasks",
	}

	var daily service.EnqueueDailyRequest
	enqueueDailyCmd := &cobra.Command{
		Use:         "daily",
		Short:       "Queue a daily report email",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsKey: needsRedis},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handler.Handle(cmd.Context(), r.handlers.Base, "enqueue_daily", r.handlers.Job.EnqueueDaily, &daily, nil)
		},
	}
	enqueueDailyCmd.Flags().StringVar(&daily.Date, "date", "", "Report date YYYY-MM-DD (default: yesterday)")
	enqueueDailyCmd.Flags().StringSliceVar(&daily.Recipients, "to", nil, "Recipients (default: the configured ones)")
	enqueueCmd.AddCommand(enqueueDailyCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Move snapshots between PostgreSQL and files",
	}

	var seed service.SnapshotFileRequest
	seedCmd := &cobra.Command{
		Use:         "seed FILE",
		Short:       "Replace the database contents with a snapshot file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{needsKey: needsDatabase},
		RunE: func(cmd *cobra.Command, args []string) error {
			seed.Path = args[0]
			return handler.Handle(cmd.Context(), r.handlers.Base, "snapshot_seed", r.handlers.Snapshot.Seed, &seed, nil)
		},
	}

	var export service.SnapshotFileRequest
	exportCmd := &cobra.Command{
		Use:         "export FILE",
		Short:       "Write the database contents to a snapshot file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{needsKey: needsDatabase},
		RunE: func(cmd *cobra.Command, args []string) error {
			export.Path = args[0]
			return handler.Handle(cmd.Context(), r.handlers.Base, "snapshot_export", r.handlers.Snapshot.Export, &export, nil)
		},
	}
	snapshotCmd.AddCommand(seedCmd, exportCmd)

	emailCmd := &cobra.Command{
		Use:   "email",
		Short: "Email template tools",
	}

	var preview service.EmailPreviewRequest
	previewCmd := &cobra.Command{
		Use:         "preview",
		Short:       "Render an email template with sample data",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsKey: needsConfig},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handler.Handle(cmd.Context(), r.handlers.Base, "email_preview", r.handlers.Email.Preview, &preview, nil)
		},
	}
	previewCmd.Flags().StringVar(&preview.Template, "template", "daily_report", "Template name")
	emailCmd.AddCommand(previewCmd)

	root.AddCommand(migrateCmd, statusCmd, workerCmd, enqueueCmd, snapshotCmd, emailCmd)
}
