package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/models"
)

// NodeHandler serves node endpoints.
type NodeHandler struct {
	svc NodeService
	log *logrus.Logger
}

// NewNodeHandler creates a NodeHandler with the given service and logger.
func NewNodeHandler(svc NodeService, log *logrus.Logger) *NodeHandler {
	return &NodeHandler{svc: svc, log: log}
}

// Get handles GET /api/v1/nodes/:id.
func (h *NodeHandler) Get(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID("id", nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	node, err := h.svc.GetNode(c.Request.Context(), nodeID)
	if err != nil {
		respondServiceError(c, h.log, "node.get", err)

		return
	}

	c.JSON(http.StatusOK, node)
}

// Create handles POST /api/v1/nodes.
func (h *NodeHandler) Create(c *gin.Context) {
	var req models.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	node, err := h.svc.CreateNode(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			respondError(c, http.StatusConflict, ErrCodeConflict, "node with this ID already exists")

			return
		}

		respondServiceError(c, h.log, "node.create", err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": "node.create", "node_id": node.ID}).Info("audit")

	c.JSON(http.StatusCreated, node)
}
