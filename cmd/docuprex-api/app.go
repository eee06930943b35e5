package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/archive/s3"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/httpapi"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/metrics"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/notify"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/notify/redis"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/storage/dynamodb"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/storage/memory"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/storage/postgres"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/config"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/logger"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ratelimiter"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/services"
)

const shutdownTimeout = 10 * time.Second

type app struct {
	cfg        config.Config
	log        *logger.Logger
	server     *http.Server
	dispatcher *services.Dispatcher
	closers    []func() error
}

// stores agrupa los repositorios del backend elegido.
type stores struct {
	documents  ports.DocumentRepository
	rosters    ports.RosterRepository
	employees  ports.EmployeeRepository
	groups     ports.GroupRepository
	directory  ports.GroupDirectory
	identities ports.IdentityRegistry
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	st, err := openStores(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Info("storage ready", "backend", cfg.Storage.Backend)

	publisher, err := a.buildPublisher(ctx)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	a.dispatcher = services.NewDispatcher(publisher, m, log, cfg.Notify.DispatchTimeout)

	var limiter ports.ChallengeLimiter
	if l := ratelimiter.New(cfg.Challenge.PerMinute/60, cfg.Challenge.Burst, cfg.Challenge.IdleTTL); l != nil {
		limiter = l
	}

	approval := services.NewApprovalService(services.ApprovalDeps{
		Documents:  st.documents,
		Rosters:    st.rosters,
		Groups:     st.directory,
		Identities: st.identities,
		Dispatcher: a.dispatcher,
		Observer:   m,
		Limiter:    limiter,
		Log:        log,
	})

	router := httpapi.NewRouter(httpapi.Options{
		Approval:  approval,
		Employees: services.NewEmployeeService(st.employees),
		Groups:    services.NewGroupService(st.groups),
		Observer:  m,
		Metrics:   m.Handler(),
		Log:       log,
	})
	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func openStores(ctx context.Context, cfg config.StorageConfig) (stores, error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		client, err := dynamodb.NewClient(ctx, cfg.Local)
		if err != nil {
			return stores{}, err
		}
		docs := dynamodb.NewDocumentRepository(client, cfg.DocumentsTable)
		employees := dynamodb.NewEmployeeRepository(client, cfg.EmployeesTable)
		groups := dynamodb.NewGroupRepository(client, cfg.GroupsTable)
		return stores{docs, docs, employees, groups, groups, employees}, nil
	case config.BackendPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		docs := postgres.NewDocumentRepository(db)
		employees := postgres.NewEmployeeRepository(db)
		groups := postgres.NewGroupRepository(db)
		return stores{docs, docs, employees, groups, groups, employees}, nil
	default:
		docs := memory.NewDocumentStore()
		employees := memory.NewEmployeeStore()
		groups := memory.NewGroupStore()
		return stores{docs, docs, employees, groups, groups, employees}, nil
	}
}

// buildPublisher arma el fan-out de notificaciones: siempre al log, y a Redis
// y S3 cuando están configurados.
func (a *app) buildPublisher(ctx context.Context) (ports.NotificationPublisher, error) {
	fanout := notify.NewFanout(a.log).Add("log", notify.NewLogPublisher(a.log))

	if a.cfg.Notify.RedisAddr != "" {
		pub, err := redis.NewPublisher(ctx, a.cfg.Notify.RedisAddr, a.cfg.Notify.RedisChannel)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		fanout.Add("redis", pub)
	}
	if a.cfg.Notify.AuditBucket != "" {
		archive, err := s3.NewEventArchive(ctx, a.cfg.Notify.AuditBucket, a.cfg.Storage.Local)
		if err != nil {
			return nil, err
		}
		fanout.Add("s3", archive)
	}
	a.log.Info("notification sinks ready", "count", fanout.Len())
	return fanout, nil
}

func (a *app) run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.cfg.HTTPAddr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *app) close() {
	a.dispatcher.Wait()
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
	a.log.Sync()
}
