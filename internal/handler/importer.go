package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/pkordes/fleetlog/internal/fuelimport"
)

// uploadField is the multipart form field holding the file.
const uploadField = "file"

// multipartMemory is how much of a multipart upload is buffered in memory
// before spilling to temporary files.
const multipartMemory = 10 << 20

// PreviewResponse is the body of POST /api/fuel/import/preview.
type PreviewResponse struct {
	Encoding   string                  `json:"encoding"`
	Delimiter  string                  `json:"delimiter"`
	Header     []string                `json:"header"`
	Counts     fuelimport.Counts       `json:"counts"`
	Candidates []fuelimport.Candidate  `json:"candidates"`
	Dropped    []fuelimport.DroppedRow `json:"dropped"`
}

// GetTemplate handles GET /api/fuel/template.
func (s *Server) GetTemplate(w http.ResponseWriter, _ *http.Request) {
	body := fuelimport.Template()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fuelimport.TemplateFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the client went away; nothing useful to do.
	w.Write(body)
}

// PreviewImport handles POST /api/fuel/import/preview.
//
// The file is sent either as the "file" field of a multipart form or as the
// raw request body. It is decoded, parsed and validated exactly as the
// importer would, and nothing is stored. ?delimiter= accepts auto, comma,
// tab, semicolon or pipe.
func (s *Server) PreviewImport(w http.ResponseWriter, r *http.Request) {
	opts, err := fuelimport.DelimiterOption(fuelimport.ParseOptions{Logger: s.logger}, r.URL.Query().Get("delimiter"))
	if err != nil {
		requestError(w, "delimiter must be auto, comma, tab, semicolon or pipe")
		return
	}

	raw, err := readUpload(r)
	if err != nil {
		bodyError(w, err, "upload must be a CSV file in the \"file\" form field or the request body")
		return
	}

	text, encoding, err := fuelimport.Decode(raw)
	if err != nil {
		requestError(w, "file is not valid UTF-8 or Shift_JIS text")
		return
	}

	res, err := fuelimport.Parse(text, opts)
	if err != nil {
		if errors.Is(err, fuelimport.ErrInvalidFile) {
			requestError(w, err.Error())
			return
		}
		s.serviceError(w, r, err, "")
		return
	}

	candidates, dropped := res.Candidates, res.Dropped
	if candidates == nil {
		candidates = []fuelimport.Candidate{}
	}
	if dropped == nil {
		dropped = []fuelimport.DroppedRow{}
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		Encoding:   encoding,
		Delimiter:  string(res.Delimiter),
		Header:     res.Header,
		Counts:     res.Counts(),
		Candidates: candidates,
		Dropped:    dropped,
	})
}

// readUpload returns the uploaded file bytes from a multipart form or the raw body.
func readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}
	f, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
