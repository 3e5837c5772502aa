package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/metrics"
	"github.com/persistorai/relations/internal/middleware"
	"github.com/persistorai/relations/internal/models"
)

// RelationHandler serves the relationship collection endpoints under
// /nodes/:id/relations/:type.
type RelationHandler struct {
	svc RelationService
	log *logrus.Logger
}

// NewRelationHandler creates a RelationHandler.
func NewRelationHandler(svc RelationService, log *logrus.Logger) *RelationHandler {
	return &RelationHandler{svc: svc, log: log}
}

// target reads the origin and descriptor from the path and the direction
// and node_type query parameters. It writes a 400 and returns false when
// they are invalid.
func (h *RelationHandler) target(c *gin.Context) (string, models.Descriptor, bool) {
	origin := c.Param("id")
	if err := validatePathID("id", origin); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return "", models.Descriptor{}, false
	}

	dir, err := models.ParseDirection(c.Query("direction"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return "", models.Descriptor{}, false
	}

	var opts []models.DescriptorOption
	if nt := c.Query("node_type"); nt != "" {
		opts = append(opts, models.WithNodeType(nt))
	}

	d, err := models.NewDescriptor(c.Param("type"), dir, opts...)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return "", models.Descriptor{}, false
	}

	return origin, d, true
}

// List handles GET /api/v1/nodes/:id/relations/:type.
func (h *RelationHandler) List(c *gin.Context) {
	origin, d, ok := h.target(c)
	if !ok {
		return
	}

	var q models.PageQuery

	var err error
	if q.Number, err = parsePositiveQueryInt(c, "page"); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if q.Size, err = parsePositiveQueryInt(c, "per_page"); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if q.WithTotal, err = parseQueryBool(c, "total"); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	page, err := h.svc.Page(c.Request.Context(), origin, d, q)
	if err != nil {
		respondServiceError(c, h.log, "relation.list", err)

		return
	}

	c.JSON(http.StatusOK, page)
}

// Size handles GET /api/v1/nodes/:id/relations/:type/size.
func (h *RelationHandler) Size(c *gin.Context) {
	origin, d, ok := h.target(c)
	if !ok {
		return
	}

	n, err := h.svc.Size(c.Request.Context(), origin, d)
	if err != nil {
		respondServiceError(c, h.log, "relation.size", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"size": n})
}

// Empty handles GET /api/v1/nodes/:id/relations/:type/empty.
func (h *RelationHandler) Empty(c *gin.Context) {
	origin, d, ok := h.target(c)
	if !ok {
		return
	}

	empty, err := h.svc.IsEmpty(c.Request.Context(), origin, d)
	if err != nil {
		respondServiceError(c, h.log, "relation.empty", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"empty": empty})
}

// At handles GET /api/v1/nodes/:id/relations/:type/at/:index.
func (h *RelationHandler) At(c *gin.Context) {
	origin, d, ok := h.target(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "index must be an integer")

		return
	}

	node, found, err := h.svc.At(c.Request.Context(), origin, d, index)
	if err != nil {
		respondServiceError(c, h.log, "relation.at", err)

		return
	}

	if !found {
		respondError(c, http.StatusNotFound, ErrCodeNoElement, "no related node at index "+strconv.Itoa(index))

		return
	}

	c.JSON(http.StatusOK, node)
}

// streamFailure is the last NDJSON record of a stream that broke after
// nodes were already sent. Status is the code the failure would have had as
// a plain response; Visited counts the nodes written before it.
type streamFailure struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Visited   int    `json:"visited"`
}

// Stream handles GET /api/v1/nodes/:id/relations/:type/stream. Nodes are
// written as newline-delimited JSON while the traversal runs. Errors before
// the first node get a normal error response; later ones are reported as a
// final {"error": {...}} record.
func (h *RelationHandler) Stream(c *gin.Context) {
	origin, d, ok := h.target(c)
	if !ok {
		return
	}

	enc := json.NewEncoder(c.Writer)
	written := 0
	begin := func() {
		c.Header("Content-Type", "application/x-ndjson")
		c.Status(http.StatusOK)
	}

	err := h.svc.Stream(c.Request.Context(), origin, d, func(n models.Node) error {
		if written == 0 {
			begin()
		}

		if err := enc.Encode(n); err != nil {
			return err
		}

		c.Writer.Flush()
		written++

		return nil
	})
	if err == nil {
		if written == 0 {
			begin()
		}

		return
	}

	if written == 0 {
		respondServiceError(c, h.log, "relation.stream", err)

		return
	}

	h.log.WithError(err).WithFields(logrus.Fields{
		"origin":   origin,
		"relation": d.Type(),
		"written":  written,
	}).Warn("relationship stream ended early")

	status, code, message := classifyServiceError(h.log, "relation.stream", err)
	metrics.ErrorsTotal.WithLabelValues(code).Inc()

	failure := streamFailure{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Visited:   written,
	}
	if err := enc.Encode(gin.H{"error": failure}); err != nil {
		h.log.WithError(err).Debug("writing stream failure record")

		return
	}

	c.Writer.Flush()
}

// Append handles POST /api/v1/nodes/:id/relations/:type.
func (h *RelationHandler) Append(c *gin.Context) {
	origin, d, ok := h.target(c)
	if !ok {
		return
	}

	var req models.AppendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	edges, err := h.svc.Append(c.Request.Context(), origin, d, req.Targets)
	if err != nil {
		if len(edges) > 0 {
			h.log.WithFields(logrus.Fields{
				"origin":  origin,
				"created": len(edges),
			}).Warn("append failed after partial success")
		}

		respondServiceError(c, h.log, "relation.append", err)

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":   "relation.append",
		"origin":   origin,
		"relation": d.Type(),
		"count":    len(edges),
	}).Info("audit")

	c.JSON(http.StatusCreated, gin.H{"relationships": edges})
}
