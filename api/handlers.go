package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
)

// Store writes batches to the collection. ingestion.Pipeline satisfies it.
type Store interface {
	StoreTokens(ctx context.Context, tokens [][]string, ids []string, metadata map[string]string) (int, error)
	StoreRecords(ctx context.Context, kind ai.PromptKind, records []core.Record, ids []string, metadata map[string]string) (int, error)
}

// Retriever answers similarity queries. search.Retriever satisfies it.
type Retriever interface {
	RetrieveTokens(ctx context.Context, tokens [][]string, ids []string, filter core.Filter, topN int) (map[string][]core.Neighbor, error)
	Recommend(ctx context.Context, kind ai.PromptKind, records []core.Record, ids []string, filter core.Filter, topN int) (map[string][]core.Neighbor, error)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) storeTokens(c *gin.Context) {
	var req tokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	if _, err := s.store.StoreTokens(c.Request.Context(), req.Contents, req.IDs, nil); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, "ok")
}

func (s *Server) retrieveTokens(c *gin.Context) {
	var req tokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	topN, err := parseTopN(req.TopN, true)
	if err != nil {
		s.fail(c, err)
		return
	}
	filter, err := conditionFilter(req.ConditionDict)
	if err != nil {
		s.fail(c, err)
		return
	}

	results, err := s.retriever.RetrieveTokens(c.Request.Context(), req.Contents, req.IDs, filter, topN)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) storeEvents(c *gin.Context) {
	var req recordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	if _, err := s.store.StoreRecords(c.Request.Context(), ai.PromptEvent, req.Contents, req.IDs, s.eventMetadata); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, "ok")
}

func (s *Server) relatedEvents(c *gin.Context) {
	var req recordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	topN, err := parseTopN(req.TopN, false)
	if err != nil {
		s.fail(c, err)
		return
	}
	filter, err := conditionFilter(req.ConditionDict)
	if err != nil {
		s.fail(c, err)
		return
	}

	results, err := s.retriever.Recommend(c.Request.Context(), ai.PromptInterest, req.Contents, req.IDs, filter, topN)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// fail reports client errors with their message, an open model breaker as
// 503 and everything else as an opaque internal error. The cause is always
// logged.
func (s *Server) fail(c *gin.Context, err error) {
	logger := loggerFrom(c)
	if isClientError(err) {
		logger.Warn("rejected request", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, ai.ErrModelUnavailable) {
		logger.Warn("model unavailable", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}
	logger.Error("request failed", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func isClientError(err error) bool {
	return errors.Is(err, errBadRequest) ||
		errors.Is(err, core.ErrInvalidTopN) ||
		errors.Is(err, core.ErrInvalidEntry)
}
