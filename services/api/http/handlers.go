package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/schtekar/rigwatch/internal/mapview"
	"github.com/schtekar/rigwatch/internal/model"
	"github.com/schtekar/rigwatch/internal/stats"
)

// logDiagnostics reports pipeline failures to the server log. The map build
// degrades instead of failing, so this is the only place they surface.
var logDiagnostics = mapview.DiagnosticsFunc(func(stage string, err error) {
	log.Printf("map build: %s: %v", stage, err)
})

// handleListWells returns the wells document.
// GET /api/v1/wells
func (s *Server) handleListWells(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	wells, err := s.store.ListWells(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": wells,
		"meta": gin.H{"count": len(wells)},
	})
}

// handleRigAnalysis returns the latest analysis document.
// GET /api/v1/rigs
func (s *Server) handleRigAnalysis(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	doc, err := s.store.LatestAnalysis(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": doc,
		"meta": gin.H{"rig_count": len(doc.Rigs)},
	})
}

// handleMapFeatures runs the map build over the two documents and returns
// the collected marker/path requests with the legend.
// GET /api/v1/map/features
func (s *Server) handleMapFeatures(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	docs := s.loadDocuments(ctx)

	features := mapview.NewFeatureSet()
	index := mapview.Render(docs, features, logDiagnostics)

	c.JSON(http.StatusOK, gin.H{
		"markers": features.Markers,
		"paths":   features.Paths,
		"legend":  mapview.Legend(),
		"meta": gin.H{
			"marker_count":  len(features.Markers),
			"path_count":    len(features.Paths),
			"wells_indexed": len(index),
			"generated_at":  docs.Analysis.GeneratedAt,
		},
	})
}

// handleStats returns the key-statistics summary.
// GET /api/v1/stats
func (s *Server) handleStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	// Either document may be missing; the summary degrades to whatever
	// loaded, like the map build.
	docs := s.loadDocuments(ctx)
	if docs.WellsErr != nil {
		logDiagnostics.ReportFailure("load wells", docs.WellsErr)
	}
	if docs.AnalysisErr != nil {
		logDiagnostics.ReportFailure("load rig analysis", docs.AnalysisErr)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats.Compute(docs.Wells, docs.Analysis.Rigs, time.Now().UTC()),
	})
}

// loadDocuments fetches the wells and analysis documents concurrently. The
// errors stay attached to their document: the pipelines fail independently
// and consumption order (index before correlation) is enforced by Render.
func (s *Server) loadDocuments(ctx context.Context) mapview.Documents {
	var docs mapview.Documents

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var wells []model.Well
		wells, docs.WellsErr = s.store.ListWells(gctx)
		if docs.WellsErr == nil {
			docs.Wells = wells
		}
		return nil
	})
	g.Go(func() error {
		var doc model.AnalysisDoc
		doc, docs.AnalysisErr = s.store.LatestAnalysis(gctx)
		if docs.AnalysisErr == nil {
			docs.Analysis = doc
		}
		return nil
	})
	_ = g.Wait()

	return docs
}
