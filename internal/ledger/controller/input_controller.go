package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockledger/internal/commons"
	"stockledger/internal/domain"
	"stockledger/internal/dto"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/middleware"
)

type InputUseCase interface {
	Create(ctx context.Context, productID string, amount int, actorID string) (*domain.LedgerEntry, error)
	Edit(ctx context.Context, entryID string, newAmount int, actorID string) (*domain.EntrySnapshot, error)
	Delete(ctx context.Context, entryID string, actorID string) (*domain.EntrySnapshot, error)
	Get(ctx context.Context, entryID string) (*domain.EntryView, error)
	List(ctx context.Context) ([]domain.EntryView, error)
}

type InputController struct {
	useCase InputUseCase
	logger  *zap.Logger
}

func NewInputController(useCase InputUseCase, logger *zap.Logger) *InputController {
	return &InputController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *InputController) Routes(r chi.Router) {
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Get("/{id}", c.Get)
	r.Put("/{id}", c.Edit)
	r.Delete("/{id}", c.Delete)
}

func (c *InputController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	views, err := c.useCase.List(r.Context())
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	inputs := make([]dto.InputDTO, 0, len(views))
	for _, v := range views {
		inputs = append(inputs, toViewDTO(v))
	}
	commons.WriteJSON(w, http.StatusOK, dto.InputListResponse{TraceID: traceID, Inputs: inputs}, c.logger)
}

func (c *InputController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	view, err := c.useCase.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.InputResponse{TraceID: traceID, Input: toViewDTO(*view)}, c.logger)
}

func (c *InputController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("missing actor"), logger)
		return
	}

	var req dto.CreateInputRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}
	amount, err := commons.ParseAmount("amount", req.Amount)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	entry, err := c.useCase.Create(r.Context(), req.ProductID, amount, actor.ID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	logger.Info("input created", zap.String("entryId", entry.ID), zap.String("actorId", actor.ID))
	commons.WriteJSON(w, http.StatusCreated, dto.InputResponse{TraceID: traceID, Input: dto.NewInputDTO(*entry)}, logger)
}

func (c *InputController) Edit(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("missing actor"), logger)
		return
	}

	var req dto.UpdateInputRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}
	amount, err := commons.ParseAmount("amount", req.Amount)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	snapshot, err := c.useCase.Edit(r.Context(), chi.URLParam(r, "id"), amount, actor.ID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toSnapshotResponse(traceID, snapshot), logger)
}

func (c *InputController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("missing actor"), logger)
		return
	}

	snapshot, err := c.useCase.Delete(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toSnapshotResponse(traceID, snapshot), logger)
}

func toViewDTO(v domain.EntryView) dto.InputDTO {
	out := dto.NewInputDTO(v.LedgerEntry)
	out.ProductName = v.ProductName
	out.ProductUnit = v.ProductUnit
	out.UserName = v.UserName
	return out
}

func toSnapshotResponse(traceID string, s *domain.EntrySnapshot) dto.InputSnapshotResponse {
	return dto.InputSnapshotResponse{
		TraceID: traceID,
		Input:   dto.NewInputDTO(s.Entry),
		Product: dto.NewProductDTO(s.Product),
	}
}
