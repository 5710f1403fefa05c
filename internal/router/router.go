// Package router builds the cobra command tree.
//
// It loads configuration once, opens only the connections a command needs,
// and maps each command to its handler.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/deppfellow/storefront-analytics/internal/app"
	"github.com/deppfellow/storefront-analytics/internal/config"
	"github.com/deppfellow/storefront-analytics/internal/handler"
	"github.com/deppfellow/storefront-analytics/internal/logger"
	"github.com/deppfellow/storefront-analytics/internal/repository"
	"github.com/deppfellow/storefront-analytics/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// needsKey is the command annotation listing the connections it uses.
const needsKey = "needs"

const (
	// needsSnapshot opens the database unless a snapshot file is set.
	needsSnapshot = "snapshot"
	needsDatabase = "database"
	needsRedis    = "redis"
	// needsConfig loads configuration and logging but opens nothing.
	needsConfig = "config"
)

// DateLayout is the format of every date flag.
const DateLayout = "2006-01-02"

// Flags are the persistent flags shared by every command.
type Flags struct {
	AsOf         string
	Snapshot     string
	Output       string
	GrowthPolicy string
}

// Router owns the state one command run builds in PersistentPreRunE.
type Router struct {
	flags Flags
	out   io.Writer

	cfg           *config.Config
	logger        *zerolog.Logger
	loggerService *logger.LoggerService
	app           *app.App
	handlers      *handler.Handlers
}

// Execute runs the command line args and releases what the command opened.
func Execute(ctx context.Context, out io.Writer, args []string) error {
	root, r := NewRootCommand(out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, r.teardown())
}

// NewRootCommand returns the `analytics` command with every subcommand
// registered. Envelopes are written to out.
func NewRootCommand(out io.Writer) (*cobra.Command, *Router) {
	r := &Router{out: out}

	root := &cobra.Command{
		Use:   "analytics",
		Short: "E-commerce analytics over a storefront snapshot",
		Long: `Runs sales, customer and inventory reports over a snapshot of the
storefront tables, read from PostgreSQL or from a YAML/JSON snapshot file.

Every report prints a JSON envelope:
  {"success": bool, "data": ..., "error": {...}, "timestamp": RFC3339}`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.AsOf, "as-of", "", "Reference date YYYY-MM-DD for reports relative to today")
	pf.StringVar(&r.flags.Snapshot, "snapshot", "", "Read a YAML/JSON snapshot file instead of PostgreSQL")
	pf.StringVarP(&r.flags.Output, "output", "o", "", "Export envelopes to DIR/<report>_<YYYYMMDD_HHMMSS>.json")
	pf.StringVar(&r.flags.GrowthPolicy, "growth-policy", "", "Monthly growth baseline: calendar_adjacent or previous_present")

	registerReportCommands(root, r)
	registerSystemCommands(root, r)

	return root, r
}

func needs(cmd *cobra.Command) map[string]bool {
	set := make(map[string]bool)
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[needsKey]; ok {
			for _, n := range strings.Split(v, ",") {
				set[strings.TrimSpace(n)] = true
			}
			break
		}
	}
	return set
}

func (r *Router) setup(cmd *cobra.Command, _ []string) error {
	need := needs(cmd)
	if len(need) == 0 {
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if r.flags.Snapshot != "" {
		cfg.Analytics.SnapshotFile = r.flags.Snapshot
	}
	if r.flags.GrowthPolicy != "" {
		cfg.Analytics.GrowthPolicy = r.flags.GrowthPolicy
		if err := cfg.Analytics.Validate(); err != nil {
			return err
		}
	}
	r.cfg = cfg

	r.loggerService = logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, r.loggerService)
	r.logger = &log

	opts := app.Options{
		Database: need[needsDatabase] || (need[needsSnapshot] && cfg.Analytics.SnapshotFile == ""),
		Redis:    need[needsRedis],
	}

	a, err := app.New(cfg, r.logger, r.loggerService, opts)
	if err != nil {
		return err
	}
	r.app = a

	clock, err := r.clock()
	if err != nil {
		return err
	}

	services, err := service.NewService(a, repository.NewRepositories(a), clock)
	if err != nil {
		return err
	}

	r.handlers = handler.NewHandlers(a, services, handler.Options{
		Out:       r.out,
		ExportDir: r.flags.Output,
	})
	return nil
}

// clock pins "now" to midnight of --as-of in the configured timezone.
func (r *Router) clock() (service.Clock, error) {
	if r.flags.AsOf == "" {
		return time.Now, nil
	}

	loc, err := r.cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}
	asOf, err := time.ParseInLocation(DateLayout, r.flags.AsOf, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD", r.flags.AsOf)
	}
	return func() time.Time { return asOf }, nil
}

func (r *Router) teardown() error {
	var err error
	if r.app != nil {
		err = r.app.Close()
		r.app = nil
	}
	r.loggerService.Shutdown()
	return err
}
