package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"digibouquet/internal/core"
	"digibouquet/pkg/musiclink"
)

const createAction = "create"

type embedResponse struct {
	Embed *musiclink.Embed `json:"embed"`
	// Detected names the provider owning the link's host when no embed could be built.
	Detected musiclink.Platform `json:"detected,omitempty"`
}

type platformsResponse struct {
	Platforms []musiclink.Platform `json:"platforms"`
}

type metadataResponse struct {
	Title string `json:"title"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) embedHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	hint := musiclink.ParsePlatform(query.Get("platform"))
	link := query.Get("url")

	embed, err := s.resolver.Resolve(link, hint)
	if err != nil {
		detected := s.resolver.Detect(link)
		platform := hint
		if platform == musiclink.PlatformAuto {
			platform = detected
		}

		s.logger.Debug("Song link did not resolve",
			zap.String("platform", string(platform)),
			zap.Error(err))
		s.metrics.RecordEmbedResolution(string(platform), resolutionOutcome(err))

		response := embedResponse{}
		if detected != musiclink.PlatformAuto {
			response.Detected = detected
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	s.metrics.RecordEmbedResolution(string(embed.Platform), "ok")
	writeJSON(w, http.StatusOK, embedResponse{Embed: embed})
}

func (s *Server) platformsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, platformsResponse{Platforms: musiclink.SupportedPlatforms()})
}

// resolutionOutcome names why a link did not resolve.
func resolutionOutcome(err error) string {
	switch {
	case errors.Is(err, musiclink.ErrEmptyLink):
		return "empty"
	case errors.Is(err, musiclink.ErrInvalidLink):
		return "invalid"
	case errors.Is(err, musiclink.ErrUnsupportedHost):
		return "unsupported"
	case errors.Is(err, musiclink.ErrNoResourceID):
		return "no_id"
	default:
		return "error"
	}
}

func (s *Server) songInfoHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	hint := musiclink.ParsePlatform(query.Get("platform"))

	ctx, cancel := context.WithTimeout(r.Context(), s.lookupTimeout)
	defer cancel()

	info, err := s.bouquets.LookupSong(ctx, query.Get("url"), hint)
	switch {
	case errors.Is(err, core.ErrNoEmbed):
		s.writeError(w, http.StatusNotFound, "error.no_embed")
		return
	case err != nil:
		s.logger.Warn("Song info lookup failed", zap.Error(err))
		s.metrics.RecordError("lookup", "upstream")
		s.writeError(w, http.StatusBadGateway, "error.song_lookup")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *Server) createBouquetHandler(w http.ResponseWriter, r *http.Request) {
	if s.floodgate != nil && !s.floodgate.Allow(createAction, clientIP(r)) {
		s.logger.Info("Bouquet creation blocked by flood gate", zap.String("client", clientIP(r)))
		s.metrics.RecordFloodBlocked()
		s.writeError(w, http.StatusTooManyRequests, "error.flood")
		return
	}

	var draft core.Bouquet
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "error.invalid", "malformed request body")
		return
	}

	b, err := s.bouquets.Create(r.Context(), &draft)
	if err != nil {
		var validationErr *core.ValidationError
		if errors.As(err, &validationErr) {
			s.writeError(w, http.StatusBadRequest, "error.invalid", validationErr.Error())
			return
		}
		s.logger.Error("Failed to create bouquet", zap.Error(err))
		s.metrics.RecordError("store", "save")
		s.writeError(w, http.StatusInternalServerError, "error.generic")
		return
	}

	s.metrics.RecordBouquetCreated()
	writeJSON(w, http.StatusCreated, s.bouquets.View(b))
}

func (s *Server) getBouquetHandler(w http.ResponseWriter, r *http.Request) {
	b, err := s.bouquets.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "error.not_found")
		return
	case err != nil:
		s.logger.Error("Failed to load bouquet", zap.String("id", r.PathValue("id")), zap.Error(err))
		s.metrics.RecordError("store", "get")
		s.writeError(w, http.StatusInternalServerError, "error.generic")
		return
	}

	writeJSON(w, http.StatusOK, s.bouquets.View(b))
}

// metadataHandler always answers with a title so link previews never fail.
func (s *Server) metadataHandler(w http.ResponseWriter, r *http.Request) {
	b, err := s.bouquets.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.Warn("Failed to load bouquet for metadata", zap.Error(err))
			s.metrics.RecordError("store", "get")
		}
		b = nil
	}

	writeJSON(w, http.StatusOK, metadataResponse{Title: s.bouquets.MetadataTitle(b)})
}

func (s *Server) sharedHandler(w http.ResponseWriter, r *http.Request) {
	b, err := s.bouquets.DecodeShared(r.URL.Query().Get("data"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "error.invalid_share")
		return
	}

	writeJSON(w, http.StatusOK, s.bouquets.View(b))
}

func (s *Server) writeError(w http.ResponseWriter, status int, key string, args ...interface{}) {
	writeJSON(w, status, errorResponse{Error: s.bouquets.Localizer().T(key, args...)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientIP identifies the client for flood protection, preferring the first proxy hop.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
