package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reception-dedup/models"
	"reception-dedup/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type receptionReader interface {
	List(ctx context.Context, q services.ListQuery) ([]models.ReceptionRecord, int64, error)
	Statistics(ctx context.Context, f models.Filter) (models.Statistics, error)
	Metadata(ctx context.Context) (models.Metadata, error)
	Healthy(ctx context.Context) bool
}

type duplicateDetector interface {
	Detect(ctx context.Context, t models.DuplicateType, f models.Filter, sortBy, sortOrder string) ([]models.DuplicateGroup, error)
}

type recordMutator interface {
	Delete(ctx context.Context, scope string, ids []int64, filter *models.Filter) (models.DeleteResponse, error)
	Restore(ctx context.Context, ids []int64) models.RestoreResponse
}

// routerDeps bündelt die Abhängigkeiten der HTTP-Schicht.
type routerDeps struct {
	Data           receptionReader
	Duplicates     duplicateDetector
	Mutations      recordMutator
	Location       *time.Location
	Logger         *zap.Logger
	AllowedOrigins []string
}

// listParams sind die Query-Parameter von GET /api/reception-data.
type listParams struct {
	models.FilterInput
	Offset    int    `form:"offset,default=0" binding:"min=0"`
	Limit     int    `form:"limit,default=100" binding:"min=1,max=500"`
	SortBy    string `form:"sort_by,default=reception_datetime"`
	SortOrder string `form:"sort_order,default=desc"`
}

// duplicateParams sind die Query-Parameter der Duplikaterkennung.
type duplicateParams struct {
	models.FilterInput
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

func newRouter(d routerDeps) *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware(d.AllowedOrigins))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupHealthRoutes(router, d.Data)
	api := router.Group("/api")
	setupReceptionRoutes(api, d.Data, d.Location, d.Logger)
	setupDuplicateRoutes(api, d.Duplicates, d.Location, d.Logger)
	setupOperationRoutes(api, d.Mutations, d.Location, d.Logger)
	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type")
	corsConfig.AllowCredentials = true
	return cors.New(corsConfig)
}

func setupHealthRoutes(router *gin.Engine, data receptionReader) {
	router.GET("/health", func(c *gin.Context) {
		if data.Healthy(c.Request.Context()) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "disconnected"})
	})
}

func setupReceptionRoutes(rg *gin.RouterGroup, data receptionReader, loc *time.Location, log *zap.Logger) {
	rg.GET("/reception-data", func(c *gin.Context) {
		var p listParams
		if err := c.ShouldBindQuery(&p); err != nil {
			abortInvalid(c, bindingErrorMessage(err))
			return
		}
		// Sortierrichtungen vor jeder Abfrage prüfen
		orders, err := services.ParseSortOrders(p.SortOrder)
		if err != nil {
			abortInvalid(c, err.Error())
			return
		}
		filter, ok := parseFilter(c, p.FilterInput, loc, log)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		records, total, err := data.List(ctx, services.ListQuery{
			Offset:     p.Offset,
			Limit:      p.Limit,
			SortBy:     p.SortBy,
			SortOrders: orders,
			Filter:     filter,
		})
		if err != nil {
			respondError(c, log, "Reception data query failed", err)
			return
		}
		stats, err := data.Statistics(ctx, filter)
		if err != nil {
			respondError(c, log, "Statistics query failed", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":       records,
			"total":      total,
			"offset":     p.Offset,
			"limit":      p.Limit,
			"has_more":   int64(p.Offset+p.Limit) < total,
			"statistics": stats,
		})
	})

	rg.GET("/metadata", func(c *gin.Context) {
		meta, err := data.Metadata(c.Request.Context())
		if err != nil {
			respondError(c, log, "Metadata query failed", err)
			return
		}
		c.JSON(http.StatusOK, meta)
	})
}

func setupDuplicateRoutes(rg *gin.RouterGroup, dups duplicateDetector, loc *time.Location, log *zap.Logger) {
	// detect prüft Typ und Parameter und liefert die Gruppen; false bedeutet,
	// dass bereits eine Fehlerantwort geschrieben wurde.
	detect := func(c *gin.Context) (models.DuplicateType, []models.DuplicateGroup, bool) {
		t := models.DuplicateType(c.Param("type"))
		if !t.Valid() {
			c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Not Found"})
			return t, nil, false
		}
		var p duplicateParams
		if err := c.ShouldBindQuery(&p); err != nil {
			abortInvalid(c, bindingErrorMessage(err))
			return t, nil, false
		}
		filter, ok := parseFilter(c, p.FilterInput, loc, log)
		if !ok {
			return t, nil, false
		}
		groups, err := dups.Detect(c.Request.Context(), t, filter, p.SortBy, p.SortOrder)
		if err != nil {
			respondError(c, log, "Duplicate detection failed", err)
			return t, nil, false
		}
		return t, groups, true
	}

	rg.GET("/duplicates/:type", func(c *gin.Context) {
		_, groups, ok := detect(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"duplicates":       groups,
			"total_groups":     len(groups),
			"total_duplicates": services.TotalRecords(groups),
		})
	})

	rg.GET("/duplicates/:type/export", func(c *gin.Context) {
		t, groups, ok := detect(c)
		if !ok {
			return
		}
		wb, err := services.BuildDuplicateWorkbook(map[models.DuplicateType][]models.DuplicateGroup{t: groups})
		if err != nil {
			respondError(c, log, "Duplicate export failed", err)
			return
		}
		defer wb.Close()
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="duplicates-%s.xlsx"`, t))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := wb.Write(c.Writer); err != nil {
			log.Error("Writing duplicate export failed", zap.Error(err))
		}
	})
}

func setupOperationRoutes(rg *gin.RouterGroup, mut recordMutator, loc *time.Location, log *zap.Logger) {
	rg.POST("/delete-duplicates", func(c *gin.Context) {
		var req models.DeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortInvalid(c, bindingErrorMessage(err))
			return
		}
		var filter *models.Filter
		if req.FilterConditions != nil {
			f, ok := parseFilter(c, *req.FilterConditions, loc, log)
			if !ok {
				return
			}
			filter = &f
		}
		scope := req.DeleteScope
		if scope == "" {
			scope = models.ScopeSelected
		}
		resp, err := mut.Delete(c.Request.Context(), scope, req.TargetIDs, filter)
		if err != nil {
			respondError(c, log, "Delete failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	rg.POST("/restore-records", func(c *gin.Context) {
		var req models.RestoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortInvalid(c, bindingErrorMessage(err))
			return
		}
		c.JSON(http.StatusOK, mut.Restore(c.Request.Context(), req.TargetIDs))
	})
}

// parseFilter wandelt die rohe Filterangabe um und schreibt bei Fehlern eine 400-Antwort.
func parseFilter(c *gin.Context, in models.FilterInput, loc *time.Location, log *zap.Logger) (models.Filter, bool) {
	f, err := services.ParseFilter(in, loc)
	if err != nil {
		abortInvalid(c, err.Error())
		return f, false
	}
	if f.DateFrom != nil && f.DateTo != nil && !services.KnownDateField(f.DateField) {
		log.Warn("Unknown date_field, date filter ignored", zap.String("date_field", string(f.DateField)))
	}
	return f, true
}

func abortInvalid(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": true, "message": msg})
}

func respondError(c *gin.Context, log *zap.Logger, msg string, err error) {
	if services.IsInputError(err) {
		abortInvalid(c, err.Error())
		return
	}
	log.Error(msg, zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
}

// bindingErrorMessage macht Validierungsfehler lesbar (Feld: Regel).
func bindingErrorMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "Invalid request: " + err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return "Invalid request: " + strings.Join(parts, ", ")
}
