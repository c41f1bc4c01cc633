package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
	"github.com/RowanDark/xorsift/internal/candidates"
	"github.com/RowanDark/xorsift/internal/cipher"
	"github.com/RowanDark/xorsift/internal/comparison"
	"github.com/RowanDark/xorsift/internal/ranker"
	"github.com/RowanDark/xorsift/internal/search"
	"github.com/RowanDark/xorsift/internal/xor"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// DecodeRequest asks for one text to be decoded.
type DecodeRequest struct {
	Text          string `json:"text"`
	Format        string `json:"format"`
	NumeralPolicy string `json:"numeral_policy"`
	Reverse       bool   `json:"reverse"`
}

// DecodeResponse carries the decoded bytes and the format that was used.
type DecodeResponse struct {
	Bytes  analysis.ByteSeq `json:"bytes"`
	Format cipher.Format    `json:"format"`
	Length int              `json:"length"`
}

// DetectRequest asks which formats a text could be.
type DetectRequest struct {
	Text string `json:"text"`
}

// DetectResponse lists every matching format; Format is the one auto
// decoding would pick.
type DetectResponse struct {
	Format     cipher.Format            `json:"format"`
	Detections []cipher.DetectionResult `json:"detections"`
}

// InputRequest is the ciphertext and key shared by the analysis endpoints.
type InputRequest struct {
	Ciphertext       string `json:"ciphertext"`
	Key              string `json:"key"`
	CiphertextFormat string `json:"ciphertext_format"`
	KeyFormat        string `json:"key_format"`
	NumeralPolicy    string `json:"numeral_policy"`
	Reverse          bool   `json:"reverse"`
}

// MatrixOptionsRequest asks for the matrix shapes that fit a ciphertext.
type MatrixOptionsRequest struct {
	Ciphertext       string `json:"ciphertext"`
	CiphertextFormat string `json:"ciphertext_format"`
	NumeralPolicy    string `json:"numeral_policy"`
	Reverse          bool   `json:"reverse"`
}

// MatrixOptionsResponse lists the shapes in ascending row order.
type MatrixOptionsResponse struct {
	BitCount   int                `json:"bit_count"`
	Dimensions []bitops.Dimension `json:"dimensions"`
}

// AnalyzeRequest runs a single matrix configuration.
type AnalyzeRequest struct {
	InputRequest
	Matrix string `json:"matrix"`
	Mode   string `json:"mode"`
}

// AnalyzeResponse is the single-run report plus the resolved input formats.
type AnalyzeResponse struct {
	*search.SingleReport
	Input search.Decoded `json:"input"`
}

// AutoRequest runs the exhaustive search. Top limits the returned rows;
// omitted means the server default and zero means every row.
type AutoRequest struct {
	InputRequest
	Top *int `json:"top"`
}

// AutoResponse is the ranked outcome of an exhaustive run.
type AutoResponse struct {
	RunID      string                `json:"run_id"`
	Total      int                   `json:"total"`
	Skipped    int                   `json:"skipped"`
	DurationMS int64                 `json:"duration_ms"`
	Summary    candidates.Summary    `json:"cache"`
	Results    []ranker.RankedResult `json:"results"`
	Input      search.Decoded        `json:"input"`
}

// CompareRequest compares two combinations written matrix:mode:scenario:rotation.
type CompareRequest struct {
	InputRequest
	A       string `json:"a" binding:"required"`
	B       string `json:"b" binding:"required"`
	Context int    `json:"context"`
}

func (s *Server) handleDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidRequest(c, err)
		return
	}
	format, err := cipher.ParseFormat(req.Format)
	if err != nil {
		s.invalidParameter(c, err)
		return
	}
	policy, err := s.policy(req.NumeralPolicy)
	if err != nil {
		s.invalidParameter(c, err)
		return
	}

	decoded, err := cipher.Decoder{Policy: policy, Reverse: req.Reverse}.Decode(c.Request.Context(), req.Text, format)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DecodeResponse{
		Bytes:  decoded.Bytes,
		Format: decoded.Format,
		Length: len(decoded.Bytes),
	})
}

func (s *Server) handleDetect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidRequest(c, err)
		return
	}
	detections, err := cipher.NewSmartDetector().Detect(c.Request.Context(), []byte(req.Text))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DetectResponse{
		Format:     detections[0].Format,
		Detections: detections,
	})
}

func (s *Server) handleMatrixOptions(c *gin.Context) {
	var req MatrixOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Ciphertext) == "" {
		s.fail(c, search.ErrEmptyInput)
		return
	}
	format, err := cipher.ParseFormat(req.CiphertextFormat)
	if err != nil {
		s.invalidParameter(c, err)
		return
	}
	policy, err := s.policy(req.NumeralPolicy)
	if err != nil {
		s.invalidParameter(c, err)
		return
	}

	decoded, err := cipher.Decoder{Policy: policy, Reverse: req.Reverse}.Decode(c.Request.Context(), req.Ciphertext, format)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MatrixOptionsResponse{
		BitCount:   len(decoded.Bytes) * 8,
		Dimensions: search.MatrixOptions(decoded.Bytes),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidRequest(c, err)
		return
	}
	matrix, err := analysis.ParseMatrixConfig(req.Matrix)
	if err != nil {
		s.invalidParameter(c, err)
		return
	}
	mode := bitops.Standard
	if strings.TrimSpace(req.Mode) != "" {
		if mode, err = bitops.ParseMatrixMode(req.Mode); err != nil {
			s.invalidParameter(c, err)
			return
		}
	}

	opts := s.searchOptions()
	decoded, ok := s.decodeInput(c, req.InputRequest, opts)
	if !ok {
		return
	}
	report, err := search.RunSingle(c.Request.Context(), decoded.Ciphertext, decoded.Key, matrix, mode, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AnalyzeResponse{SingleReport: report, Input: decoded})
}

func (s *Server) handleAnalyzeAuto(c *gin.Context) {
	var req AutoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidRequest(c, err)
		return
	}
	top := s.cfg.Top
	if req.Top != nil {
		if *req.Top < 0 {
			s.invalidParameter(c, errors.New("top must not be negative"))
			return
		}
		top = *req.Top
	}

	opts := s.searchOptions()
	decoded, ok := s.decodeInput(c, req.InputRequest, opts)
	if !ok {
		return
	}
	report, err := search.RunExhaustive(c.Request.Context(), decoded.Ciphertext, decoded.Key, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	ranked := ranker.Annotate(ranker.Top(report.Results, top), s.cfg.HighMatch)
	c.JSON(http.StatusOK, AutoResponse{
		RunID:      report.RunID,
		Total:      report.Total,
		Skipped:    report.Skipped,
		DurationMS: report.Duration.Milliseconds(),
		Summary:    report.Summary,
		Results:    ranked,
		Input:      decoded,
	})
}

func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidRequest(c, err)
		return
	}
	a, err := analysis.ParseCombination(req.A)
	if err != nil {
		s.invalidParameter(c, err)
		return
	}
	b, err := analysis.ParseCombination(req.B)
	if err != nil {
		s.invalidParameter(c, err)
		return
	}

	decoded, ok := s.decodeInput(c, req.InputRequest, s.searchOptions())
	if !ok {
		return
	}
	if len(decoded.Key) == 0 {
		s.fail(c, xor.ErrEmptyKey)
		return
	}
	opts := comparison.DefaultCompareOptions()
	if req.Context > 0 {
		opts.Context = req.Context
	}
	result, err := comparison.CompareCombinations(decoded.Ciphertext, decoded.Key, a, b, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) searchOptions() search.Options {
	return search.Options{
		Workers: s.cfg.Workers,
		Logger:  s.logger,
		Audit:   s.cfg.Audit,
		RunID:   uuid.NewString(),
	}
}

func (s *Server) policy(name string) (cipher.NumeralPolicy, error) {
	if strings.TrimSpace(name) == "" {
		return s.cfg.NumeralPolicy, nil
	}
	return cipher.ParseNumeralPolicy(name)
}

// decodeInput writes the error response itself and reports ok=false on
// failure.
func (s *Server) decodeInput(c *gin.Context, req InputRequest, opts search.Options) (search.Decoded, bool) {
	ctFormat, err := cipher.ParseFormat(req.CiphertextFormat)
	if err != nil {
		s.invalidParameter(c, err)
		return search.Decoded{}, false
	}
	keyFormat, err := cipher.ParseFormat(req.KeyFormat)
	if err != nil {
		s.invalidParameter(c, err)
		return search.Decoded{}, false
	}
	policy, err := s.policy(req.NumeralPolicy)
	if err != nil {
		s.invalidParameter(c, err)
		return search.Decoded{}, false
	}

	in := search.Input{
		Ciphertext:       req.Ciphertext,
		Key:              req.Key,
		CiphertextFormat: ctFormat,
		KeyFormat:        keyFormat,
		Policy:           policy,
		Reverse:          req.Reverse,
	}
	decoded, err := in.Decode(c.Request.Context(), opts)
	if err != nil {
		s.fail(c, err)
		return search.Decoded{}, false
	}
	return decoded, true
}

func (s *Server) invalidRequest(c *gin.Context, err error) {
	s.logger.Warn("invalid request body", "request_id", requestID(c), "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "invalid request body: " + err.Error(),
		Code:  "INVALID_REQUEST",
	})
}

func (s *Server) invalidParameter(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: err.Error(),
		Code:  "INVALID_PARAMETER",
	})
}

// fail maps engine errors onto status codes: caller mistakes are 400,
// input that parses but cannot be decoded or evaluated is 422.
func (s *Server) fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "ANALYSIS_FAILED"
	var decodeErr *cipher.DecodeError
	switch {
	case errors.Is(err, search.ErrEmptyInput):
		status, code = http.StatusBadRequest, "EMPTY_INPUT"
	case errors.Is(err, xor.ErrEmptyKey):
		status, code = http.StatusBadRequest, "EMPTY_KEY"
	case errors.As(err, &decodeErr):
		status, code = http.StatusUnprocessableEntity, "DECODE_FAILED"
	case errors.Is(err, bitops.ErrDimensionMismatch), errors.Is(err, comparison.ErrLengthMismatch):
		status, code = http.StatusUnprocessableEntity, "EVALUATION_FAILED"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, "CANCELLED"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", requestID(c), "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}
