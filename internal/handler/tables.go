package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/citybike/warehouse/internal/domain"
)

// TableResponse is the JSON body of GET /tables/{name}.
type TableResponse struct {
	Model      string     `json:"model"`
	Columns    []string   `json:"columns"`
	Rows       [][]any    `json:"rows"`
	Pagination Pagination `json:"pagination"`
}

// Pagination echoes the applied paging values plus the total row count.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ListTables handles GET /tables: the names of all materialized models.
func (s *Server) ListTables(w http.ResponseWriter, r *http.Request) {
	models, err := s.store.Models(r.Context())
	if err != nil {
		slog.Error("list tables", "error", err)
		writeServerError(w)
		return
	}
	if models == nil {
		models = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": models})
}

// GetTable handles GET /tables/{name}.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20,
// max=100) for JSON; ?format=csv streams the whole table instead.
func (s *Server) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, err := s.store.Read(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotMaterialized) {
			writeNotFound(w, "table not found: "+name)
			return
		}
		slog.Error("read table", "model", name, "error", err)
		writeServerError(w)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeTableCSV(w, t)
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	writeJSON(w, http.StatusOK, TableResponse{
		Model:   t.Name,
		Columns: t.Columns,
		Rows:    t.Slice(params.Offset(), params.Limit),
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: t.Len(),
		},
	})
}

// writeTableCSV streams the full table as CSV: a header row of column names,
// then one record per row.
func writeTableCSV(w http.ResponseWriter, t *domain.Table) {
	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)

	//nolint:errcheck // csv errors surface on Flush below.
	cw.Write(t.Columns)
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		//nolint:errcheck
		cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("write table csv", "model", t.Name, "error", err)
	}
}

// formatCell encodes one cell for CSV output. Nulls become empty strings;
// date-valued timestamps (midnight UTC) print as plain dates.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		u := x.UTC()
		if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
			return u.Format("2006-01-02")
		}
		return u.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
