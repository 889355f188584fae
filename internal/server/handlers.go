package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idilsaglam/questlog/internal/collection"
	"github.com/idilsaglam/questlog/internal/generate"
	"github.com/idilsaglam/questlog/internal/metrics"
	"github.com/idilsaglam/questlog/internal/model"
)

type collectionHandler[C model.Category] struct {
	kind     model.Kind
	store    *collection.Store[C]
	fallback C
	gen      generate.Generator
	log      *slog.Logger
}

type listResponse[C model.Category] struct {
	Items     []model.Item[C] `json:"items"`
	IsLoading bool            `json:"isLoading"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// mount registers the collection routes on g and forwards store changes to
// the hub. The returned func stops forwarding.
func mount[C model.Category](g *gin.RouterGroup, hb *hub, h *collectionHandler[C]) func() {
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/stats", h.stats)
	g.POST("/generate", h.generate)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/toggle", h.toggle)

	hb.addSnapshot(func() event { return newEvent(h.kind, h.store.Items()) })
	return h.store.Subscribe(func(items []model.Item[C]) {
		hb.broadcast(newEvent(h.kind, items))
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *collectionHandler[C]) list(c *gin.Context) {
	f := collection.Filter[C]{
		Search:   c.Query("q"),
		Category: C(c.Query("category")),
	}
	if f.Category != "" && !f.Category.Valid() {
		badRequest(c, model.ErrUnknownCategory)
		return
	}
	switch s := model.Status(c.Query("status")); s {
	case "", "all":
	case model.StatusActive, model.StatusCompleted:
		f.Status = s
	default:
		badRequest(c, errors.New("unknown status"))
		return
	}
	c.JSON(http.StatusOK, listResponse[C]{
		Items:     collection.Apply(h.store.Items(), f),
		IsLoading: h.store.IsLoading(),
	})
}

func (h *collectionHandler[C]) create(c *gin.Context) {
	var f model.Fields[C]
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, err)
		return
	}
	f = f.Normalize(h.fallback)
	if err := f.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.store.Add(f))
}

// update answers 204 for unknown ids too; the store treats them as no-ops.
func (h *collectionHandler[C]) update(c *gin.Context) {
	var p model.Patch[C]
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if err := p.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	h.store.Update(c.Param("id"), p)
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler[C]) delete(c *gin.Context) {
	h.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler[C]) toggle(c *gin.Context) {
	h.store.ToggleStatus(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler[C]) stats(c *gin.Context) {
	c.JSON(http.StatusOK, collection.Summarize(h.store.Items()))
}

func (h *collectionHandler[C]) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := generate.Fill(c.Request.Context(), h.gen, req.Prompt, model.Fields[C]{})
	switch {
	case errors.Is(err, generate.ErrNotConfigured):
		metrics.Generations.WithLabelValues(string(h.kind), "unconfigured").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case errors.Is(err, generate.ErrEmptyPrompt):
		badRequest(c, err)
		return
	case err != nil:
		metrics.Generations.WithLabelValues(string(h.kind), "error").Inc()
		h.log.Warn("generation failed", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed, try again or enter it manually"})
		return
	}
	metrics.Generations.WithLabelValues(string(h.kind), "ok").Inc()
	c.JSON(http.StatusOK, generate.Suggestion{Title: f.Title, Description: f.Description})
}
