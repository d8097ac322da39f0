package server

import (
	"errors"
	"net/http"

	hcpdf "github.com/alnah/go-hcpdf"
)

// Content types of rendered output.
const (
	contentTypePDF = "application/pdf"
	contentTypePNG = "image/png"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.Version != "" {
		w.Header().Set(VersionHeader, s.cfg.Version)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) pdfFromURL(w http.ResponseWriter, r *http.Request) {
	req := urlRequest(r)
	buf, err := s.render.PDFFromURL(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, errorBody{URL: req.URL})
		return
	}
	writeBinary(w, contentTypePDF, buf)
}

func (s *Server) pdfFromHTML(w http.ResponseWriter, r *http.Request) {
	values, err := parseBody(w, r, s.cfg.BodyLimit)
	if err != nil {
		s.fail(w, r, err, errorBody{})
		return
	}

	req := htmlRequest(values)
	buf, err := s.render.PDFFromHTML(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, errorBody{HTML: req.HTML})
		return
	}
	writeBinary(w, contentTypePDF, buf)
}

func (s *Server) screenshotFromURL(w http.ResponseWriter, r *http.Request) {
	req := urlRequest(r)
	buf, err := s.render.ScreenshotFromURL(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, errorBody{URL: req.URL})
		return
	}
	writeBinary(w, contentTypePNG, buf)
}

func (s *Server) screenshotFromHTML(w http.ResponseWriter, r *http.Request) {
	values, err := parseBody(w, r, s.cfg.BodyLimit)
	if err != nil {
		s.fail(w, r, err, errorBody{})
		return
	}

	req := htmlRequest(values)
	buf, err := s.render.ScreenshotFromHTML(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, errorBody{HTML: req.HTML})
		return
	}
	writeBinary(w, contentTypePNG, buf)
}

func (s *Server) pdfOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.render.Presets())
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Stats.Stats())
}

// fail maps err to a status. Invalid requests get the bare message; render
// failures echo the request input from echo. Only the HTML size is logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, echo errorBody) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case hcpdf.IsInvalidRequest(err):
		writeError(w, http.StatusBadRequest, invalidMessage(err))
	default:
		s.log.ErrorContext(r.Context(), "render failed",
			"error", err,
			"url", echo.URL,
			"html_size", len(echo.HTML),
		)
		echo.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, echo)
	}
}

// invalidMessage returns the sentinel message for missing fields so the
// body reads {"error":"url is required"}.
func invalidMessage(err error) string {
	for _, sentinel := range []error{hcpdf.ErrURLRequired, hcpdf.ErrHTMLRequired} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
