package carriers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transportadoras-server-go/internal/domain/carrier"
	platformerrors "transportadoras-server-go/internal/platform/errors"
	"transportadoras-server-go/internal/platform/logging"
	httptransport "transportadoras-server-go/internal/transport/http"
)

// Service is the HTTP transport layer over the carrier CRUD service.
type Service struct {
	carriers *carrier.Service
	logger   *logging.Logger
}

func NewService(carriers *carrier.Service, logger *logging.Logger) (*Service, error) {
	if carriers == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "carriers.new", "carrier service is required")
	}
	if logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "carriers.new", "logger is required")
	}
	return &Service{carriers: carriers, logger: logger}, nil
}

// Register wires the carrier routes. The HEAD probe goes on the public group
// so clients can verify reachability without a session; everything else is
// behind the session gate.
func (s *Service) Register(ctx context.Context, public, secured *gin.RouterGroup) error {
	public.HEAD("/transportadoras", s.handleHead)

	secured.GET("/transportadoras", s.handleList)
	secured.GET("/transportadoras/:id", s.handleGet)
	secured.POST("/transportadoras", s.handleCreate)
	secured.PUT("/transportadoras/:id", s.handleUpdate)
	secured.DELETE("/transportadoras/:id", s.handleDelete)

	s.logger.InfoTag("HTTP", "transportadoras routes registered")
	return nil
}

// carrierRequest is the mutable-field body shared by create and update.
type carrierRequest struct {
	Name    string   `json:"nome"`
	Email   string   `json:"email"`
	Phones  []string `json:"telefones"`
	Mobiles []string `json:"celulares"`
	Regions []string `json:"regioes"`
	States  []string `json:"estados"`
}

func (r carrierRequest) toCarrier() carrier.Carrier {
	return carrier.Carrier{
		Name:    r.Name,
		Email:   r.Email,
		Phones:  r.Phones,
		Mobiles: r.Mobiles,
		Regions: r.Regions,
		States:  r.States,
	}
}

// handleHead answers the pre-auth reachability probe.
func (s *Service) handleHead(c *gin.Context) {
	c.Status(http.StatusOK)
}

// handleList returns every carrier, sorted by name ascending.
func (s *Service) handleList(c *gin.Context) {
	list, err := s.carriers.List(c.Request.Context())
	if err != nil {
		s.logger.ErrorTag("transportadoras", "list failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError,
			"Erro ao buscar transportadoras", err.Error())
		return
	}
	if list == nil {
		list = []carrier.Carrier{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Service) handleGet(c *gin.Context) {
	got, err := s.carriers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, carrier.ErrNotFound) {
			httptransport.RespondError(c, http.StatusNotFound, "Transportadora não encontrada", "")
			return
		}
		s.logger.ErrorTag("transportadoras", "get failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError,
			"Erro ao buscar transportadora", err.Error())
		return
	}
	c.JSON(http.StatusOK, got)
}

func (s *Service) handleCreate(c *gin.Context) {
	var req carrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "Corpo da requisição inválido", err.Error())
		return
	}

	created, err := s.carriers.Create(c.Request.Context(), req.toCarrier())
	if err != nil {
		s.respondMutationError(c, "Erro ao criar transportadora", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Service) handleUpdate(c *gin.Context) {
	var req carrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "Corpo da requisição inválido", err.Error())
		return
	}

	updated, err := s.carriers.Update(c.Request.Context(), c.Param("id"), req.toCarrier())
	if err != nil {
		s.respondMutationError(c, "Erro ao atualizar transportadora", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Service) handleDelete(c *gin.Context) {
	if err := s.carriers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondMutationError(c, "Erro ao excluir transportadora", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) respondMutationError(c *gin.Context, fallback string, err error) {
	switch {
	case errors.Is(err, carrier.ErrNotFound):
		httptransport.RespondError(c, http.StatusNotFound, "Transportadora não encontrada", "")
	case platformerrors.IsKind(err, platformerrors.KindDomain):
		// Validation failure; the wrapped message is already user-facing.
		var typed *platformerrors.Error
		msg := fallback
		if errors.As(err, &typed) {
			msg = typed.Message
		}
		httptransport.RespondError(c, http.StatusBadRequest, msg, "")
	default:
		s.logger.ErrorTag("transportadoras", "%s: %v", fallback, err)
		httptransport.RespondError(c, http.StatusInternalServerError, fallback, err.Error())
	}
}
