package app

import (
	"fmt"
	"log/slog"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	auditMySQL "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/repository/mysql"
	auditPostgreSQL "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/repository/postgresql"
	auditService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/service"
	auditSink "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/sink"
	auditUseCase "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/usecase"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/database"
)

// EventRepository returns the SQL event repository for the configured driver.
func (c *Container) EventRepository() (auditUseCase.EventRepository, error) {
	var err error
	c.eventRepositoryInit.Do(func() {
		c.eventRepository, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepository"]; exists {
		return nil, storedErr
	}
	return c.eventRepository, nil
}

// EventSigner returns the signer applied to every audit event.
func (c *Container) EventSigner() (*auditService.EventSigner, error) {
	var err error
	c.eventSignerInit.Do(func() {
		c.eventSigner, err = c.initEventSigner()
		if err != nil {
			c.initErrors["eventSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventSigner"]; exists {
		return nil, storedErr
	}
	return c.eventSigner, nil
}

// AuditPipeline returns the batching audit pipeline, decorated with business metrics.
func (c *Container) AuditPipeline() (auditUseCase.Pipeline, error) {
	var err error
	c.auditPipelineInit.Do(func() {
		c.auditPipeline, err = c.initAuditPipeline()
		if err != nil {
			c.initErrors["auditPipeline"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditPipeline"]; exists {
		return nil, storedErr
	}
	return c.auditPipeline, nil
}

// Auditor returns the typed logging facade shared by the access controller and the vault.
func (c *Container) Auditor() (*auditUseCase.Auditor, error) {
	var err error
	c.auditorInit.Do(func() {
		var pipeline auditUseCase.Pipeline
		pipeline, err = c.AuditPipeline()
		if err != nil {
			c.initErrors["auditor"] = err
			return
		}
		c.auditor = auditUseCase.NewAuditor(pipeline)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditor"]; exists {
		return nil, storedErr
	}
	return c.auditor, nil
}

// EventArchive returns the use case over events persisted by the database sink.
func (c *Container) EventArchive() (auditUseCase.EventArchive, error) {
	var err error
	c.eventArchiveInit.Do(func() {
		c.eventArchive, err = c.initEventArchive()
		if err != nil {
			c.initErrors["eventArchive"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventArchive"]; exists {
		return nil, storedErr
	}
	return c.eventArchive, nil
}

func (c *Container) initEventRepository() (auditUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return auditMySQL.NewMySQLEventRepository(db), nil
	case database.DriverPostgres:
		return auditPostgreSQL.NewPostgreSQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initEventSigner() (*auditService.EventSigner, error) {
	secret, err := c.auditSigningSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to derive audit signing secret: %w", err)
	}
	return auditService.NewEventSigner(secret)
}

// initSinks builds every enabled sink. A disabled pipeline gets none.
func (c *Container) initSinks() ([]auditUseCase.Sink, error) {
	if !c.config.AuditEnabled {
		return nil, nil
	}

	sinks := make([]auditUseCase.Sink, 0, 4)
	if c.config.AuditConsoleEnabled {
		sinks = append(sinks, auditSink.NewConsoleSink(c.Logger(), auditDomain.ParseSeverity(c.config.AuditLogLevel)))
	}
	if c.config.AuditFileEnabled {
		sinks = append(sinks, auditSink.NewFileSink(c.config.AuditFilePath))
	}
	if c.config.AuditDatabaseEnabled {
		repo, err := c.EventRepository()
		if err != nil {
			return nil, err
		}
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, auditSink.NewDatabaseSink(repo, txManager))
	}
	if c.config.AuditSearchEnabled {
		search, err := auditSink.NewSearchSink(auditSink.SearchConfig{
			Addresses: c.config.ElasticsearchAddresses,
			Username:  c.config.ElasticsearchUsername,
			Password:  c.config.ElasticsearchPassword,
			Index:     c.config.AuditSearchIndex,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, search)
	}
	return sinks, nil
}

func (c *Container) initAuditPipeline() (auditUseCase.Pipeline, error) {
	logger := c.Logger()

	sinks, err := c.initSinks()
	if err != nil {
		return nil, fmt.Errorf("failed to create audit sinks: %w", err)
	}

	signer, err := c.EventSigner()
	if err != nil {
		return nil, err
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit pipeline: %w", err)
	}

	pipeline := auditUseCase.NewPipeline(
		auditUseCase.PipelineConfig{
			Enabled:      c.config.AuditEnabled,
			BatchSize:    c.config.AuditBatchSize,
			BatchTimeout: c.config.AuditBatchTimeout,
			Thresholds: auditService.Thresholds{
				HighErrorRate:      c.config.AuditAlertErrorRate,
				SuspiciousActivity: c.config.AuditAlertSuspiciousActivity,
				FailedLogins:       c.config.AuditAlertFailedLogins,
				Window:             c.config.AuditAlertWindow,
			},
			SensitiveFields: c.config.AuditSensitiveFields,
			ExportFormats:   c.config.AuditExportFormats,
			HistoryLimit:    c.config.AuditHistoryLimit,
			Retention:       c.config.AuditRetention,
		},
		c.Clock(),
		sinks,
		auditUseCase.NewNotifierWithMetrics(auditUseCase.NewLogNotifier(logger), businessMetrics),
		signer,
		logger,
	)

	logger.Info("audit pipeline ready",
		slog.Bool("enabled", c.config.AuditEnabled),
		slog.Int("sinks", len(sinks)),
	)

	return auditUseCase.NewPipelineWithMetrics(pipeline, businessMetrics), nil
}

func (c *Container) initEventArchive() (auditUseCase.EventArchive, error) {
	repo, err := c.EventRepository()
	if err != nil {
		return nil, err
	}
	signer, err := c.EventSigner()
	if err != nil {
		return nil, err
	}
	return auditUseCase.NewEventArchive(repo, signer, c.Clock()), nil
}
