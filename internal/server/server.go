package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
	"github.com/joseph-ayodele/logforms/internal/ingest"
	"github.com/joseph-ayodele/logforms/internal/repository"
)

// Analyzer is satisfied by *processor.Processor.
type Analyzer interface {
	Analyze(ctx context.Context, sub ingest.Submission) (entity.AnalysisEnvelope, error)
}

// SchemaProvisioner is satisfied by *repository.Provisioner.
type SchemaProvisioner interface {
	Provision(ctx context.Context, coords entity.StoreCoordinates, schema entity.StorageSchema) (repository.ProvisionResult, error)
	TestConnection(ctx context.Context, coords entity.StoreCoordinates) (repository.ConnectionResult, error)
}

// RecordSaver is satisfied by *repository.RecordIngestor.
type RecordSaver interface {
	Save(ctx context.Context, coords entity.StoreCoordinates, fields []entity.FieldDefinition, data map[string]any) (entity.DataRecord, error)
}

// WorkbookExporter is satisfied by *export.Service.
type WorkbookExporter interface {
	EntryWorkbookXLSX(schema entity.DataSchema, rows int) ([]byte, error)
}

// Deps wires the HTTP surface to the components behind it.
type Deps struct {
	Config      *common.Config
	Logger      *slog.Logger
	Analyzer    Analyzer
	Provisioner SchemaProvisioner
	Records     RecordSaver
	Exporter    WorkbookExporter
}

// Server holds the handlers. Every request is self-contained; nothing here
// is mutated after construction.
type Server struct {
	cfg         *common.Config
	logger      *slog.Logger
	analyzer    Analyzer
	provisioner SchemaProvisioner
	records     RecordSaver
	exporter    WorkbookExporter
}

func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:         d.Config,
		logger:      logger,
		analyzer:    d.Analyzer,
		provisioner: d.Provisioner,
		records:     d.Records,
		exporter:    d.Exporter,
	}
}

// NewRouter builds the gin engine with middleware and every route registered.
func NewRouter(d Deps) *gin.Engine {
	s := New(d)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		requestContext(s.logger),
		requestLogger(),
		gin.CustomRecovery(s.recovered),
		s.originGate(),
		corsMiddleware(s.cfg),
	)
	router.NoRoute(s.notFound)
	router.NoMethod(s.methodNotAllowed)

	router.GET("/healthcheck", s.healthcheck)

	api := router.Group("/api")
	api.POST("/analyze", s.bodyLimit(s.cfg.MaxBodyBytes()), s.analyze)

	small := s.bodyLimit(defaultBodyLimit)
	db := api.Group("/database", small)
	{
		db.POST("/test", s.testConnection)
		db.POST("/create-schema", s.createSchema)
		db.POST("/save-data", s.saveData)
		db.POST("/map-schema", s.mapSchema)
	}
	api.POST("/templates/render", small, s.renderTemplate)
	api.POST("/export/xlsx", small, s.exportXLSX)

	return router
}

func (s *Server) healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) notFound(c *gin.Context) {
	s.fail(c, common.InputError(common.CodeNotFound, "no route for "+c.Request.URL.Path, common.ErrNotFound))
}

func (s *Server) methodNotAllowed(c *gin.Context) {
	s.fail(c, common.InputError(common.CodeMethodNotAllowed, c.Request.Method+" is not allowed on "+c.Request.URL.Path, nil))
}

func (s *Server) recovered(c *gin.Context, rec any) {
	common.LoggerFromContext(c.Request.Context(), s.logger).Error("http.panic", "panic", rec)
	s.fail(c, common.NewAppError(common.KindInternal, common.CodeInternal, "handler panicked", nil))
}
