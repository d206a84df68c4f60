package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/raymonds/internal/chart"
	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
)

const (
	defaultRadarSize = 320
	maxRadarSize     = 1200
)

// chartTarget splits "{id}.svg" or "{id}.png" after prefix. A bare id is PNG.
func chartTarget(r *http.Request, prefix string) (string, chart.Format) {
	rest := PathParam(r, prefix, "")
	switch {
	case strings.HasSuffix(rest, ".svg"):
		return strings.TrimSuffix(rest, ".svg"), chart.FormatSVG
	case strings.HasSuffix(rest, ".png"):
		return strings.TrimSuffix(rest, ".png"), chart.FormatPNG
	}
	return rest, chart.FormatPNG
}

func radarSize(r *http.Request) int {
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		return defaultRadarSize
	}
	if size > maxRadarSize {
		return maxRadarSize
	}
	return size
}

func writeImage(w http.ResponseWriter, format chart.Format, data []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeFetchError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if raymonds.IsNotFound(err) {
		status = http.StatusNotFound
	}
	WriteError(w, status, raymonds.UserMessage(err))
}

func renderRadar(format chart.Format, size int, labels []string, series ...chart.Series) ([]byte, error) {
	if format == chart.FormatSVG {
		return chart.RenderRadarSVG(size, labels, series...)
	}
	return chart.RenderRadarPNG(size, labels, series...)
}

// handleRadarChart draws one company's sub-index radar.
func (s *Server) handleRadarChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	id, format := chartTarget(r, "/charts/radar/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Company id is required")
		return
	}

	res := s.app.Hooks.Company(r.Context(), id)
	if res.Err != nil {
		writeFetchError(w, res.Err)
		return
	}
	if res.Data == nil {
		WriteError(w, http.StatusNotFound, "Company not found")
		return
	}

	data, err := renderRadar(format, radarSize(r), chart.SubIndexLabels(), chart.CompanySeries(res.Data, ""))
	if err != nil {
		s.logger.Error().Err(err).Str("company_id", id).Msg("Radar render failed")
		WriteError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}
	writeImage(w, format, data)
}

// handleCompareChart overlays every selected company on one radar.
func (s *Server) handleCompareChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	items := s.app.Compare.Items()
	if len(items) == 0 {
		WriteError(w, http.StatusBadRequest, "No companies selected for comparison")
		return
	}

	series := make([]chart.Series, 0, len(items))
	for i := range items {
		color := chart.ComparePalette[i%len(chart.ComparePalette)]
		series = append(series, chart.CompanySeries(&items[i], color))
	}

	data, err := chart.RenderRadarSVG(radarSize(r), chart.SubIndexLabels(), series...)
	if err != nil {
		s.logger.Error().Err(err).Int("series", len(series)).Msg("Comparison radar render failed")
		WriteError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}
	writeImage(w, chart.FormatSVG, data)
}

// handleStockChart draws monthly closes for the requested period.
func (s *Server) handleStockChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	id, format := chartTarget(r, "/charts/stock/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Company id is required")
		return
	}

	res := s.app.Hooks.StockPrices(r.Context(), id, r.URL.Query().Get("period"))
	if res.Err != nil {
		writeFetchError(w, res.Err)
		return
	}

	data, err := chart.RenderStockChart(res.Data, format)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeImage(w, format, data)
}
