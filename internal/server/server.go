package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"facturas/internal/aws"
	"facturas/internal/cache"
	"facturas/internal/config"
	"facturas/internal/controller"
	"facturas/internal/database"
	"facturas/internal/extract"
	"facturas/internal/processor"
	"facturas/internal/rabbitmq"
)

type Server struct {
	jc          controller.JobController
	db          database.Database
	cache       cache.Cache
	fileService aws.FileService
	config      config.Config
}

func New(config config.Config, db database.Database, cache cache.Cache, rabbit rabbitmq.Client, fileService aws.FileService) *http.Server {
	extractor := extract.NewPDFLinkExtractor(config.Extract.ComparatorHost)
	pipeline := processor.NewDocumentProcessor(fileService, extractor)
	coordinator := processor.NewBatchCoordinator(pipeline)

	jc := controller.NewJobController(db, rabbit, config.RabbitMQ, config.Extract, coordinator, fileService)
	jc.ProcessJobs(context.Background()) // Starts consuming batch messages

	server := Server{
		jc:          jc,
		db:          db,
		cache:       cache,
		fileService: fileService,
		config:      config,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%v", config.Port),
		Handler:      server.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
