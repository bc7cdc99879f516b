package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"sunflow/audit"
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/domain/approval"
	"sunflow/domain/engine"
	"sunflow/infra/tracing"
	"sunflow/persistence"
	"sunflow/servehttp"
	"sunflow/session"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerlog "github.com/uber/jaeger-client-go/log"
	"github.com/uber/jaeger-lib/metrics"
)

func main() {
	log.Println("service start")

	closer, err := buildTracer()
	if err != nil {
		log.Fatalf("tracer setup failed %v\n", err)
	}
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&domain.Sale{}, &domain.Contract{}, &domain.Checklist{}, &domain.ChecklistItem{},
		&domain.Project{}, &domain.ContractTemplate{},
		&domain.ChecklistTemplate{}, &domain.ChecklistTemplateItem{},
		&domain.ApprovalRequest{}, &audit.AuditRecord{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	engineHTTP := gin.Default()
	engineHTTP.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engineHTTP.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "sunflow")
	})

	securedAPIs := []gin.HandlerFunc{session.SimpleAuthFilter()}
	engine.RegisterWorkflowRestAPI(engineHTTP, securedAPIs...)
	approval.RegisterApprovalRequestsRestAPI(engineHTTP, securedAPIs...)
	audit.RegisterAuditRecordsRestAPI(engineHTTP, securedAPIs...)

	servehttp.StartHTTPServer(engineHTTP)
}

func buildTracer() (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.ServiceName = "sunflow"
	tracer, closer, err := cfg.NewTracer(
		jaegercfg.Logger(jaegerlog.StdLogger),
		jaegercfg.Metrics(metrics.NullFactory),
	)
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
