package report

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	ledgerrepo "stockledger/internal/ledger/repository"
	productrepo "stockledger/internal/product/repository"
	"stockledger/internal/report/controller"
	"stockledger/internal/report/service"
)

// NewModule wires the report endpoints. cache is nil when Redis is disabled.
func NewModule(db *sqlx.DB, cache service.Cache, recorder service.CacheRecorder, logger *zap.Logger) *controller.Controller {
	svc := service.NewReportService(
		ledgerrepo.NewMySQLEntryRepository(db),
		productrepo.NewMySQLRepository(db),
		cache,
		recorder,
		logger,
	)
	return controller.NewController(svc, logger)
}
