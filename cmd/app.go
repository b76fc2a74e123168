package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/JonMunkholm/sqlask/internal/config"
	"github.com/JonMunkholm/sqlask/internal/dbexec"
	"github.com/JonMunkholm/sqlask/internal/llm"
	"github.com/JonMunkholm/sqlask/internal/logging"
	"github.com/JonMunkholm/sqlask/internal/pipeline"
	"github.com/JonMunkholm/sqlask/internal/schema"
)

// app is the wired set of collaborators behind ask and serve.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *sql.DB
	schema   *schema.Cache
	exec     *dbexec.Executor
	pipeline *pipeline.Pipeline
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: verbose,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}

// openApp connects to the database and, when withModel is set, builds the
// model client and pipeline.
func openApp(ctx context.Context, withModel bool) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if withModel {
		if err := cfg.RequireLLM(); err != nil {
			return nil, err
		}
	}

	dialect, err := dbexec.Dialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	log.Debug("connecting to database",
		zap.String("driver", cfg.Database.Driver),
		logging.MaskedString("dsn", cfg.Database.DSN))

	db, err := dbexec.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		schema: schema.NewCache(db, dialect, cfg.Schema.SampleRows, log.Named("schema")),
		exec: dbexec.New(db, dialect,
			dbexec.WithMaxRows(cfg.Database.MaxRows),
			dbexec.WithLogger(log.Named("dbexec"))),
	}
	if !withModel {
		return a, nil
	}

	client, err := llm.NewClient(ctx, cfg.LLMClientConfig())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating %s client: %w", cfg.LLM.Provider, err)
	}
	log.Info("model ready", zap.String("provider", client.Name()))

	a.pipeline = pipeline.New(a.schema, client, a.exec,
		pipeline.WithDialect(a.exec.Dialect()),
		pipeline.WithMaxTokens(cfg.LLM.MaxTokens),
		pipeline.WithQueryTimeout(cfg.Database.QueryTimeout),
		pipeline.WithLogger(log.Named("pipeline")))
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.log.Sync()
}
