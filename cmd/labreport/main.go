package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/labreport/labreport/internal/config"
	"github.com/labreport/labreport/internal/domain/record"
	"github.com/labreport/labreport/internal/domain/report"
	"github.com/labreport/labreport/internal/platform/auth"
	"github.com/labreport/labreport/internal/platform/dates"
	"github.com/labreport/labreport/internal/platform/db"
	"github.com/labreport/labreport/internal/platform/middleware"
	"github.com/labreport/labreport/internal/platform/render"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labreport",
		Short: "Diagnostic report generator and API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the report API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate reports for a batch of record files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return runGenerate(cfgPath)
		},
	}
	cmd.Flags().String("config", "config.json", "Path to the report configuration file")
	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.AuthSecret),
		}))
	}

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	recordSvc := record.NewService(record.NewRepoPG(pool))
	recordHandler := record.NewHandler(recordSvc)
	recordHandler.RegisterRoutes(apiV1)

	reportSvc := report.NewService(report.Options{}, logger)
	reportHandler := report.NewHandler(reportSvc, recordSvc)
	reportHandler.RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runGenerate(cfgPath string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadReport(cfgPath)
	if err != nil {
		return err
	}

	opts, err := reportOptions(cfg)
	if err != nil {
		return err
	}

	inputs, err := collectRecordFiles(cfg.InputPath)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no record files found under %s", cfg.InputPath)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	svc := report.NewService(opts, logger)
	now := time.Now()

	for _, path := range inputs {
		rec, err := loadRecordFile(path)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("skipping record")
			continue
		}

		rep := svc.Process(rec)

		base := render.ExpandPattern(svc.Options().NamingPattern, rep.Header.PatientName, now)
		base = strings.TrimSuffix(base, filepath.Ext(base))

		xlsxPath := filepath.Join(cfg.OutputDir, base+".xlsx")
		if err := render.WriteXLSX(rep, xlsxPath); err != nil {
			return fmt.Errorf("write workbook for %s: %w", path, err)
		}
		logger.Info().Str("file", xlsxPath).Int("tests", len(rep.OrderedTests)).Msg("report written")

		if svc.Options().Chart.Create && len(rep.Charts) > 0 {
			chartPath := filepath.Join(cfg.OutputDir, base+"_charts.html")
			if err := render.WriteCharts(rep.Charts, chartPath); err != nil {
				return fmt.Errorf("write charts for %s: %w", path, err)
			}
			logger.Info().Str("file", chartPath).Int("charts", len(rep.Charts)).Msg("charts written")
		}
	}

	// Cross-record extraction artifact.
	dataPath := filepath.Join(cfg.OutputDir, "data.json")
	if err := render.WriteJSON(svc.Extraction(), dataPath); err != nil {
		return fmt.Errorf("write extraction data: %w", err)
	}
	logger.Info().Str("file", dataPath).Msg("extraction data written")

	// Unrolled configuration: the run's effective config with the include
	// list expanded to the tests actually rendered.
	unrolled := *cfg
	unrolled.IncludeTests = svc.UsedTests()
	unrolledPath := filepath.Join(cfg.OutputDir, "report_"+now.Format("0601021504")+".json")
	if err := render.WriteJSON(&unrolled, unrolledPath); err != nil {
		return fmt.Errorf("write unrolled config: %w", err)
	}
	logger.Info().Str("file", unrolledPath).Msg("unrolled config written")

	return nil
}

// reportOptions converts the file-based configuration into pipeline options.
func reportOptions(cfg *config.ReportConfig) (report.Options, error) {
	sortStrategy, err := report.ParseSortStrategy(cfg.Sort)
	if err != nil {
		return report.Options{}, err
	}

	opts := report.Options{
		IncludeTests:       cfg.IncludeTests,
		ExcludeTests:       cfg.ExcludeTests,
		Sort:               sortStrategy,
		MaxReadingsPerTest: cfg.MaxReadingsPerTest,
		TestSequence:       cfg.TestSequence,
		DateFormat:         cfg.DateFormat,
		NamingPattern:      cfg.NamingPattern,
		Chart: report.ChartOptions{
			Create:       cfg.Diagram.Create,
			MinReadings:  cfg.Diagram.MinReadings,
			IncludeTests: cfg.Diagram.IncludeTests,
			ExcludeTests: cfg.Diagram.ExcludeTests,
			DefaultType:  cfg.Diagram.DefaultType,
			DefaultColor: cfg.Diagram.DefaultColor,
		},
	}

	if cfg.DateRange.Start != "" {
		start, err := dates.Parse(cfg.DateRange.Start)
		if err != nil {
			return report.Options{}, fmt.Errorf("date_range.start: %w", err)
		}
		opts.DateStart = &start
	}
	if cfg.DateRange.End != "" {
		end, err := dates.Parse(cfg.DateRange.End)
		if err != nil {
			return report.Options{}, fmt.Errorf("date_range.end: %w", err)
		}
		opts.DateEnd = &end
	}

	if len(cfg.Diagram.Tests) > 0 {
		opts.Chart.Tests = make(map[string]report.TestChartOverride, len(cfg.Diagram.Tests))
		for _, t := range cfg.Diagram.Tests {
			opts.Chart.Tests[t.Name] = report.TestChartOverride{Type: t.Type, Color: t.Color}
		}
	}

	return opts, nil
}

// collectRecordFiles resolves the input path to the list of JSON record
// files to process. A file path yields itself, a directory yields its
// top-level *.json files sorted by name.
func collectRecordFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input path: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func loadRecordFile(path string) (*record.PatientRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}
	rec := &record.PatientRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode record file: %w", err)
	}
	return rec, nil
}
