package handlers

import (
	"io"
	"mime"
	"net/http"

	"github.com/agentstation/tablesync/internal/server/response"
	"github.com/agentstation/tablesync/internal/workbook"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/extract"
)

// ExportFileName is the attachment name of an exported workbook.
const ExportFileName = "extracted_data.xlsx"

// ExtractRequest is the JSON body of POST /extract.
type ExtractRequest struct {
	Text string `json:"text"`
}

// HandleExtract handles POST /api/v1/extract. The body is either JSON
// {"text": "..."} or the raw text itself.
// @Summary Extract a table from free text
// @Tags extract
// @Accept json,plain
// @Produce json
// @Success 200 {object} response.Response{data=extract.Result}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/extract [post].
func (h *Handlers) HandleExtract(w http.ResponseWriter, r *http.Request) {
	text, err := requestText(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	result, err := extract.Extract(text)
	if err != nil {
		if errors.Is(err, errors.ErrNoInput) {
			response.NoInput(w, "Request text is empty")
			return
		}
		response.ErrorFromType(w, err)
		return
	}

	h.logger.Debug().
		Str("mode", string(result.Mode)).
		Int("records", len(result.Records)).
		Msg("Text extracted")
	response.OK(w, result)
}

func requestText(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req ExtractRequest
		if err := decodeJSON(r, &req); err != nil {
			if errors.Is(err, io.EOF) {
				return "", nil
			}
			return "", err
		}
		return req.Text, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HandleExport handles POST /api/v1/export. The body is an extraction
// result ({columns, data}); the response is an xlsx workbook.
// @Summary Export extracted rows as a workbook
// @Tags extract
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/export [post].
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var result extract.Result
	if err := decodeJSON(r, &result); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if len(result.Columns) == 0 || len(result.Records) == 0 {
		response.NoInput(w, "No data to export")
		return
	}

	data, err := workbook.Export(result.Columns, result.Rows())
	if err != nil {
		h.logger.Error().Err(err).Msg("Export failed")
		response.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
