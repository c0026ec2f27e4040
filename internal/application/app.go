package application

import (
	"context"
	"fmt"
	"os"

	"examphoto/internal/common"
	"examphoto/internal/config"
	"examphoto/internal/container"
	"examphoto/internal/database"
	"examphoto/internal/dimensions"
	conversionDomain "examphoto/internal/domain/conversion"
	statisticsDomain "examphoto/internal/domain/statistics"
	"examphoto/internal/presets"
	"examphoto/internal/services"
	"examphoto/internal/watcher"

	"gorm.io/gorm"
)

// App is the entry point used by the command line. OnStartup must succeed
// before any other method is called.
type App struct {
	config    *config.Config
	db        *gorm.DB
	container *container.Container

	conversions *ConversionHandler
	preferences *PreferencesHandler
	stats       *StatsManager
}

func NewApp() *App {
	return &App{}
}

// NewAppWithConfig uses cfg instead of loading configuration at startup.
func NewAppWithConfig(cfg *config.Config) *App {
	return &App{config: cfg}
}

func (a *App) OnStartup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Initialize configuration
	if a.config == nil {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		a.config = cfg
	}
	cfg := a.config

	// Initialize database
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		cfg.Logger.Error("Failed to initialize database", "error", err)
		return err
	}
	a.db = db

	// Initialize dependency container
	a.container = container.New(cfg, db)

	a.conversions = NewConversionHandler(a.container.GetConversionService(), cfg.Logger)
	a.preferences = NewPreferencesHandler(a.container.GetPreferencesRepository())
	a.stats = NewStatsManager(a.container.GetStatisticsService())

	cfg.Logger.Debug("Application configuration",
		"app_data_dir", cfg.AppDataDir,
		"database_path", cfg.DatabasePath,
		"defaults_path", cfg.DefaultsPath,
		"defaults", a.preferences.GetDefaults().String())
	return nil
}

// OnShutdown releases the database.
func (a *App) OnShutdown() error {
	if a.db == nil {
		return nil
	}
	err := database.Close(a.db)
	a.db = nil
	return err
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Convert(ctx context.Context, request conversionDomain.Request) (*conversionDomain.Response, error) {
	if a.container == nil {
		return nil, ErrNotStarted
	}
	return a.conversions.Convert(ctx, request)
}

func (a *App) ConvertFiles(ctx context.Context, files []string, opts ConvertOptions) ([]FileResult, error) {
	if a.container == nil {
		return nil, ErrNotStarted
	}
	return a.conversions.ConvertFiles(ctx, files, opts)
}

func (a *App) Presets() []presets.Preset {
	return presets.All()
}

func (a *App) GetDefaults() (dimensions.Spec, error) {
	if a.container == nil {
		return dimensions.Spec{}, ErrNotStarted
	}
	return a.preferences.GetDefaults(), nil
}

func (a *App) SaveDefaults(in dimensions.Input, category, documentType string) (dimensions.Spec, error) {
	if a.container == nil {
		return dimensions.Spec{}, ErrNotStarted
	}
	return a.preferences.SaveDefaults(in, category, documentType)
}

func (a *App) History(limit int) (*HistoryReport, error) {
	if a.container == nil {
		return nil, ErrNotStarted
	}
	return a.stats.Report(limit)
}

func (a *App) GetStats() (*statisticsDomain.AppStats, error) {
	if a.container == nil {
		return nil, ErrNotStarted
	}
	return a.stats.GetStats()
}

func (a *App) Inspect(path string) (*services.SourceInfo, error) {
	if a.container == nil {
		return nil, ErrNotStarted
	}
	return a.container.GetImageService().Inspect(path)
}

// Watch converts every image that settles in inputDir into outputDir until ctx
// is cancelled. Conversions run one at a time.
func (a *App) Watch(ctx context.Context, inputDir, outputDir string, opts ConvertOptions) error {
	if a.container == nil {
		return ErrNotStarted
	}
	if opts.Category == "" || opts.DocumentType == "" {
		return ErrPresetRequired
	}
	if _, err := presets.Lookup(opts.Category, opts.DocumentType); err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, common.DefaultFilePermissions); err != nil {
		return err
	}
	opts.OutputDir = outputDir

	handler := func(ctx context.Context, path string) error {
		results, err := a.conversions.ConvertFiles(ctx, []string{path}, opts)
		if err != nil {
			return err
		}
		if r := results[0]; r.Status == StatusCompleted {
			a.config.Logger.Info("Converted",
				"source", path,
				"output", r.Response.OutputPath,
				"size", FormatKB(int64(r.Response.SizeBytes)),
				"quality", r.Response.Quality)
		}
		return nil
	}

	w, err := watcher.New(watcher.Options{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Debounce:  WatchDebounce,
	}, handler, a.config.Logger)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
