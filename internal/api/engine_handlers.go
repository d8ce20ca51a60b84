package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rawblock/omtsf-engine/internal/diff"
	"github.com/rawblock/omtsf-engine/internal/merge"
	"github.com/rawblock/omtsf-engine/internal/redact"
	"github.com/rawblock/omtsf-engine/internal/validate"
	"github.com/rawblock/omtsf-engine/pkg/model"
)

// ════════════════════════════════════════════════════════════════════
// Engine operation handlers: validate, merge, redact, diff.
// ════════════════════════════════════════════════════════════════════

type validateRequest struct {
	File  model.File `json:"file" binding:"required"`
	RunL2 *bool      `json:"run_l2"`
	RunL3 *bool      `json:"run_l3"`
}

// POST /api/v1/validate
func (h *APIHandler) handleValidate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if reason, big := oversizedFile(&req.File); big {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": reason})
		return
	}

	cfg := validate.DefaultConfig()
	if req.RunL2 != nil {
		cfg.RunL2 = *req.RunL2
	}
	if req.RunL3 != nil {
		cfg.RunL3 = *req.RunL3
	}
	cfg.ExternalData = h.externalData

	result := validate.Validate(c.Request.Context(), &req.File, cfg)

	reqID := uuid.NewString()
	h.broadcastEvent("validate", reqID, gin.H{
		"is_conformant":    result.IsConformant(),
		"diagnostic_count": len(result.Diagnostics),
	})

	c.JSON(http.StatusOK, gin.H{
		"request_id":    reqID,
		"is_conformant": result.IsConformant(),
		"diagnostics":   toWireDiagnostics(result.Diagnostics),
	})
}

type mergeFileInput struct {
	Source string     `json:"source" binding:"required"`
	File   model.File `json:"file" binding:"required"`
}

type mergeConfigInput struct {
	SameAsThreshold string `json:"same_as_threshold"`
	GroupSizeLimit  int    `json:"group_size_limit"`
}

type mergeRequest struct {
	Files  []mergeFileInput `json:"files" binding:"required"`
	Config mergeConfigInput `json:"config"`
}

// POST /api/v1/merge
func (h *APIHandler) handleMerge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return
	}

	inputs := make([]merge.Input, len(req.Files))
	for i := range req.Files {
		if reason, big := oversizedFile(&req.Files[i].File); big {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": reason, "source": req.Files[i].Source})
			return
		}
		inputs[i] = merge.Input{Source: req.Files[i].Source, File: &req.Files[i].File}
	}

	cfg := merge.DefaultConfig()
	if req.Config.SameAsThreshold != "" {
		cfg.SameAsThreshold = merge.ConfidenceTier(req.Config.SameAsThreshold)
	}
	if req.Config.GroupSizeLimit > 0 {
		cfg.GroupSizeLimit = req.Config.GroupSizeLimit
	}

	result, err := merge.Merge(inputs, cfg)
	reqID := uuid.NewString()
	if err != nil {
		var postMergeErr *merge.PostMergeValidationError
		if errors.As(err, &postMergeErr) {
			h.broadcastEvent("merge", reqID, gin.H{"status": "post_merge_validation_failed"})
			c.JSON(http.StatusInternalServerError, gin.H{
				"request_id":  reqID,
				"error":       "post_merge_validation_failed",
				"diagnostics": toWireDiagnostics(postMergeErr.Diagnostics),
			})
			return
		}
		h.broadcastEvent("merge", reqID, gin.H{"status": "failed"})
		c.JSON(http.StatusInternalServerError, gin.H{"request_id": reqID, "error": err.Error()})
		return
	}

	h.broadcastEvent("merge", reqID, gin.H{
		"status":        "ok",
		"node_count":    len(result.File.Nodes),
		"edge_count":    len(result.File.Edges),
		"warning_count": len(result.Warnings),
	})

	c.JSON(http.StatusOK, gin.H{
		"request_id": reqID,
		"file":       result.File,
		"warnings":   toWireMergeWarnings(result.Warnings),
	})
}

type redactRequest struct {
	File      model.File `json:"file" binding:"required"`
	Scope     string     `json:"scope" binding:"required"`
	RetainIDs *[]string  `json:"retain_ids"`
}

// POST /api/v1/redact
func (h *APIHandler) handleRedact(c *gin.Context) {
	var req redactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if reason, big := oversizedFile(&req.File); big {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": reason})
		return
	}

	// A non-nil (even empty) retain_ids promotes every node absent from
	// it to a boundary reference; nil means "no allowlist requested".
	var retainIDs map[string]bool
	if req.RetainIDs != nil {
		retainIDs = make(map[string]bool, len(*req.RetainIDs))
		for _, id := range *req.RetainIDs {
			retainIDs[id] = true
		}
	}

	out, err := redact.Redact(&req.File, req.Scope, retainIDs)
	reqID := uuid.NewString()
	if err != nil {
		var scopeErr *redact.ScopeRelaxationError
		var invalidErr *redact.InvalidOutputError
		switch {
		case errors.As(err, &scopeErr):
			h.broadcastEvent("redact", reqID, gin.H{"status": "scope_relaxation_rejected"})
			c.JSON(http.StatusBadRequest, gin.H{"request_id": reqID, "error": err.Error()})
		case errors.As(err, &invalidErr):
			h.broadcastEvent("redact", reqID, gin.H{"status": "invalid_output"})
			c.JSON(http.StatusInternalServerError, gin.H{
				"request_id":  reqID,
				"error":       "invalid_output",
				"diagnostics": toWireDiagnostics(invalidErr.Diagnostics),
			})
		default:
			h.broadcastEvent("redact", reqID, gin.H{"status": "failed"})
			c.JSON(http.StatusInternalServerError, gin.H{"request_id": reqID, "error": err.Error()})
		}
		return
	}

	h.broadcastEvent("redact", reqID, gin.H{"status": "ok", "scope": req.Scope})
	c.JSON(http.StatusOK, gin.H{"request_id": reqID, "file": out})
}

type diffFilterInput struct {
	NodeTypes    []string `json:"node_types"`
	EdgeTypes    []string `json:"edge_types"`
	IgnoreFields []string `json:"ignore_fields"`
}

type diffRequest struct {
	A      model.File      `json:"a" binding:"required"`
	B      model.File      `json:"b" binding:"required"`
	Filter diffFilterInput `json:"filter"`
}

// POST /api/v1/diff
func (h *APIHandler) handleDiff(c *gin.Context) {
	var req diffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if reason, big := oversizedFile(&req.A); big {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": reason, "side": "a"})
		return
	}
	if reason, big := oversizedFile(&req.B); big {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": reason, "side": "b"})
		return
	}

	filter := diff.DiffFilter{
		NodeTypes:    req.Filter.NodeTypes,
		EdgeTypes:    req.Filter.EdgeTypes,
		IgnoreFields: req.Filter.IgnoreFields,
	}
	result := diff.Diff(&req.A, &req.B, filter)

	reqID := uuid.NewString()
	h.broadcastEvent("diff", reqID, gin.H{
		"is_empty":      result.IsEmpty(),
		"warning_count": len(result.Warnings),
	})

	c.JSON(http.StatusOK, gin.H{
		"request_id":     reqID,
		"is_empty":       result.IsEmpty(),
		"nodes_added":    result.NodesAdded,
		"nodes_removed":  result.NodesRemoved,
		"nodes_modified": toWireNodeChanges(result.NodesModified),
		"edges_added":    result.EdgesAdded,
		"edges_removed":  result.EdgesRemoved,
		"edges_modified": toWireEdgeChanges(result.EdgesModified),
		"warnings":       toWireDiffWarnings(result.Warnings),
	})
}

// GET /api/v1/health
func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"engine": "OMTSF Engine",
		"capabilities": gin.H{
			"validate_l1": true,
			"validate_l2": true,
			"validate_l3": h.externalData != nil,
			"merge":       true,
			"redact":      true,
			"diff":        true,
		},
		"externalDataConnected": h.externalData != nil,
	})
}

// broadcastEvent publishes one operation-completion event to the hub, if
// one is configured. The core engine calls above never know this
// happens; it is purely an observability layer this shell adds.
func (h *APIHandler) broadcastEvent(op, requestID string, detail gin.H) {
	if h.wsHub == nil {
		return
	}
	payload := gin.H{"op": op, "request_id": requestID, "detail": detail}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.wsHub.Broadcast(b)
}
