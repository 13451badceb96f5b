package lookup

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Index *Index
}

func NewHandler(idx *Index) *Handler {
	return &Handler{Index: idx}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.search)          // GET /works?q=
	rg.GET("/*work", h.getByWork) // GET /works/{work}, work may contain "/"
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit := parseInt(c.Query("limit"), DefaultLimit)

	c.JSON(http.StatusOK, gin.H{
		"query": q,
		"items": h.Index.Search(q, limit),
	})
}

func (h *Handler) getByWork(c *gin.Context) {
	work := strings.TrimPrefix(c.Param("work"), "/")
	items := h.Index.Appearances(work)
	if items == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"work":  work,
		"items": items,
	})
}

// NewRouter mounts the lookup API and a health probe reporting the snapshot
// size.
func NewRouter(idx *Index) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "works": idx.Works(), "rows": idx.Rows()})
	})
	NewHandler(idx).RegisterRoutes(router.Group("/works"))

	return router
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
