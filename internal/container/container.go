package container

import (
	"log/slog"

	"examphoto/internal/compression"
	"examphoto/internal/config"
	conversionDomain "examphoto/internal/domain/conversion"
	preferencesDomain "examphoto/internal/domain/preferences"
	statisticsDomain "examphoto/internal/domain/statistics"
	"examphoto/internal/services"

	"gorm.io/gorm"
)

var _ preferencesDomain.Repository = (*services.DefaultsService)(nil)

// Container holds all dependencies for the application
type Container struct {
	config *config.Config
	db     *gorm.DB
	logger *slog.Logger

	// Services
	imageService      *services.ImageService
	defaultsService   *services.DefaultsService
	historyService    *services.HistoryService
	conversionService conversionDomain.Service
	statisticsService statisticsDomain.Service
}

// New creates a new dependency injection container
func New(cfg *config.Config, db *gorm.DB) *Container {
	c := &Container{
		config: cfg,
		db:     db,
		logger: cfg.Logger,
	}

	c.initServices()
	return c
}

// initServices initializes all services with their dependencies
func (c *Container) initServices() {
	// Infrastructure services
	c.imageService = services.NewImageService(c.logger)
	c.defaultsService = services.NewDefaultsService(c.config.DefaultsPath, c.logger)
	c.defaultsService.Load()
	c.historyService = services.NewHistoryService(c.db)

	// Domain services
	compressor := compression.NewCompressor(compression.NewJPEGEncoder(), c.config.SearchOptions(), c.logger)
	c.conversionService = services.NewConversionService(
		c.imageService,
		c.defaultsService,
		compressor,
		c.historyService,
		c.logger,
	)
	c.statisticsService = &StatisticsServiceAdapter{service: c.historyService}
}

// GetConversionService returns the conversion service
func (c *Container) GetConversionService() conversionDomain.Service {
	return c.conversionService
}

// GetStatisticsService returns the statistics service
func (c *Container) GetStatisticsService() statisticsDomain.Service {
	return c.statisticsService
}

// GetPreferencesRepository returns the default dimensions store
func (c *Container) GetPreferencesRepository() preferencesDomain.Repository {
	return c.defaultsService
}

// GetImageService returns the image service
func (c *Container) GetImageService() *services.ImageService {
	return c.imageService
}
