package product

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stockledger/internal/config"
	"stockledger/internal/product/controller"
	"stockledger/internal/product/repository"
	"stockledger/internal/product/service"
	"stockledger/internal/product/usecase"
)

func NewModule(
	db *sqlx.DB,
	cfg *config.Config,
	ledger usecase.Ledger,
	notifier usecase.Notifier,
	invalidator usecase.ReportInvalidator,
	logger *zap.Logger,
) *controller.Controller {
	repo := repository.NewMySQLRepository(db)
	svc := service.NewService(repo, logger)
	uc := usecase.NewProductUseCase(svc, ledger, notifier, invalidator, logger, cfg.Ledger.MaxRetryAttempts)
	return controller.NewController(uc, logger)
}
