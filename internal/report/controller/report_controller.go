package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockledger/internal/commons"
	"stockledger/internal/dto"
	"stockledger/internal/report/service"
)

type ReportService interface {
	InputRecap(ctx context.Context, period service.Period) (*dto.InputReport, error)
	ProductMaster(ctx context.Context) (*dto.ProductReport, error)
}

type Controller struct {
	service ReportService
	logger  *zap.Logger
}

func NewController(service ReportService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/inputs", c.Inputs)
	r.Get("/products", c.Products)
}

// Inputs serves GET /reports/inputs?type=weekly|monthly.
func (c *Controller) Inputs(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	period, err := service.ParsePeriod(r.URL.Query().Get("type"))
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	report, err := c.service.InputRecap(r.Context(), period)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, report, c.logger)
}

func (c *Controller) Products(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	report, err := c.service.ProductMaster(r.Context())
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, report, c.logger)
}
