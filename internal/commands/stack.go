package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/plantify/plantify-go/account"
	"github.com/plantify/plantify-go/config"
	"github.com/plantify/plantify-go/endpoint"
	"github.com/plantify/plantify-go/httpclient"
	"github.com/plantify/plantify-go/logger"
	"github.com/plantify/plantify-go/observability"
	"github.com/plantify/plantify-go/prediction"
	"github.com/plantify/plantify-go/store"
	storeredis "github.com/plantify/plantify-go/store/redis"
)

// Stack is the client wired from configuration.
type Stack struct {
	Config     *config.Config
	Logger     logger.Logger
	Store      store.Store
	Resolver   *endpoint.Resolver
	Client     httpclient.Client
	Account    *account.Service
	Prediction *prediction.Service

	telemetry observability.Provider
}

// StackOptions are the process-level settings that do not come from the
// config file.
type StackOptions struct {
	// LogWriter receives log and telemetry output.
	LogWriter io.Writer
	LogLevel  string
	Telemetry bool
}

// NewStack builds every component from cfg. Callers must Close the stack.
func NewStack(cfg *config.Config, opts StackOptions) (*Stack, error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log := logger.NewWithWriter(opts.LogWriter, level, cfg.Log.Pretty, nil)

	telemetry, err := observability.NewProvider(&observability.Config{
		Enabled:        cfg.Telemetry.Enabled || opts.Telemetry,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Env,
		Writer:         opts.LogWriter,
	})
	if err != nil {
		return nil, err
	}

	st, err := openStore(&cfg.Store)
	if err != nil {
		return nil, errors.Join(err, observability.Shutdown(telemetry, 0))
	}

	failedRoundInterval := cfg.Endpoint.FailedRoundInterval
	if failedRoundInterval == 0 {
		failedRoundInterval = -1
	}
	resolver, err := endpoint.New(endpoint.Options{
		Candidates:          cfg.Endpoint.Candidates,
		ProbePath:           cfg.Endpoint.ProbePath,
		ProbeTimeout:        cfg.Endpoint.ProbeTimeout,
		TTL:                 cfg.Endpoint.TTL,
		Strategy:            endpoint.Strategy(cfg.Endpoint.Strategy),
		FailedRoundInterval: failedRoundInterval,
		Store:               st,
		Logger:              log,
	})
	if err != nil {
		return nil, errors.Join(err, st.Close(), observability.Shutdown(telemetry, 0))
	}

	builder := httpclient.NewBuilder(log).
		WithTimeout(cfg.Request.Timeout).
		WithRetries(cfg.Request.MaxAttempts, cfg.Request.RetryDelay).
		WithBaseURLResolver(resolver).
		WithTokenSource(store.NewTokens(st)).
		WithServiceSegments(cfg.Endpoint.AccountSegment, cfg.Endpoint.DiseaseSegment).
		WithDefaultHeader("User-Agent", fmt.Sprintf("%s/%s", cfg.App.Name, cfg.App.Version)).
		WithLogPayloads(cfg.Request.LogPayloads)
	if cfg.Connectivity.Enabled {
		builder = builder.WithConnectivityChecker(httpclient.NewHeadChecker(cfg.Connectivity.URL, cfg.Connectivity.Timeout))
	}
	client := builder.Build()

	return &Stack{
		Config:     cfg,
		Logger:     log,
		Store:      st,
		Resolver:   resolver,
		Client:     client,
		Account:    account.NewService(client, st, log),
		Prediction: prediction.NewService(client, st, log),
		telemetry:  telemetry,
	}, nil
}

// Close flushes telemetry and closes the store.
func (s *Stack) Close() error {
	return errors.Join(
		observability.Shutdown(s.telemetry, 0),
		s.Store.Close(),
	)
}

func openStore(cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Type {
	case config.StoreMemory:
		return store.NewMemory(), nil
	case config.StoreRedis:
		return storeredis.NewClient(&storeredis.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			Database:    cfg.Redis.Database,
			KeyPrefix:   cfg.Redis.KeyPrefix,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.Timeout,
		})
	default:
		return store.OpenFile(cfg.Path)
	}
}
