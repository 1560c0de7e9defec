package ledger

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stockledger/internal/config"
	"stockledger/internal/infrastructure/mysql"
	"stockledger/internal/ledger/controller"
	ledgerrepo "stockledger/internal/ledger/repository"
	"stockledger/internal/ledger/service"
	"stockledger/internal/ledger/usecase"
	productrepo "stockledger/internal/product/repository"
)

type Module struct {
	Controller *controller.InputController
	Engine     *service.ReconciliationService
	UseCase    *usecase.InputUseCase
}

func NewModule(
	db *sqlx.DB,
	cfg *config.Config,
	recorder service.MutationRecorder,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *Module {
	entryRepo := ledgerrepo.NewMySQLEntryRepository(db)
	productRepo := productrepo.NewMySQLRepository(db)
	store := ledgerrepo.NewStore(mysql.NewTxRunner(db, cfg.Ledger.TxTimeout), entryRepo, productRepo)

	engine := service.NewReconciliationService(store, recorder, logger, service.Options{
		AllowNegativeAmounts: cfg.Ledger.AllowNegativeAmounts,
	})
	uc := usecase.NewInputUseCase(engine, entryRepo, notifier, logger, cfg.Ledger.MaxRetryAttempts)

	return &Module{
		Controller: controller.NewInputController(uc, logger),
		Engine:     engine,
		UseCase:    uc,
	}
}
