package apihttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/emirmehmedovic/dataavioservis-sub001/internal/audit"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/auth"
	billingapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/application"
	billinghttp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/interfaces"
	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/observability/metrics"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXML  = "application/xml"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"

	dateLayout = "2006-01-02"
)

// BillingHandlers serves invoices and consolidated summaries.
type BillingHandlers struct {
	invoices *billingapp.InvoiceService
	audit    audit.Logger
	tenant   string
	log      zerolog.Logger
}

// RegisterRoutes mounts billing routes.
func (h *BillingHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/operations/{id}", func(r chi.Router) {
		r.Get("/invoice", h.handleInvoice)
		r.Get("/invoice.pdf", h.handleInvoiceDocument("pdf", contentTypePDF, billinghttp.BuildInvoicePDF))
		r.Get("/invoice.xml", h.handleInvoiceDocument("xml", contentTypeXML, billinghttp.BuildInvoiceXML))
	})
	r.Route("/billing", func(r chi.Router) {
		r.Get("/summary", h.handleSummary)
		r.Get("/summary.pdf", h.handleSummaryExport("pdf", contentTypePDF, billinghttp.BuildSummaryPDF))
		r.Get("/summary.xlsx", h.handleSummaryExport("xlsx", contentTypeXLSX, billinghttp.BuildSummaryXLSX))
		r.Get("/summary.csv", h.handleSummaryExport("csv", contentTypeCSV, billinghttp.BuildSummaryCSV))
	})
}

func (h *BillingHandlers) handleInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.OperationInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *BillingHandlers) handleInvoiceDocument(format, contentType string, render func(billingapp.Invoice) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := chi.URLParam(r, "id")
		inv, err := h.invoices.OperationInvoice(r.Context(), id)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		data, err := render(inv)
		metrics.ObserveExport("invoice_"+format, metrics.Result(err), time.Since(start))
		if err != nil {
			writeError(w, h.log, fmt.Errorf("render invoice %s: %w", format, err))
			return
		}
		h.record(r, audit.ResourceInvoice, id, format, nil)
		writeAttachment(w, contentType, "invoice-"+id+"."+format, data)
	}
}

func (h *BillingHandlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReportFilter(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	result, err := h.invoices.Consolidate(r.Context(), filter)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *BillingHandlers) handleSummaryExport(format, contentType string, render billingapp.RenderFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		filter, err := parseReportFilter(r)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		result, err := h.invoices.Consolidate(r.Context(), filter)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		data, err := render(result)
		metrics.ObserveExport("summary_"+format, metrics.Result(err), time.Since(start))
		if err != nil {
			writeError(w, h.log, fmt.Errorf("render summary %s: %w", format, err))
			return
		}
		meta, _ := json.Marshal(map[string]any{
			"operations": result.Summary.Totals.Operations,
			"dominant":   result.Summary.DominantCurrency,
		})
		h.record(r, audit.ResourceSummary, result.FilterDescription, format, meta)
		writeAttachment(w, contentType, "consolidated-summary."+format, data)
	}
}

func (h *BillingHandlers) record(r *http.Request, resourceType, resourceID, format string, meta json.RawMessage) {
	entry := audit.FromRequest(r, audit.ActionExport, resourceType, resourceID)
	entry.TenantID = auth.ResolveTenant(r.Context(), h.tenant)
	entry.Actor = auth.SubjectFromContext(r.Context())
	entry.Role = string(auth.RoleFromContext(r.Context()))
	entry.Format = format
	entry.Metadata = meta
	if err := h.audit.Log(r.Context(), entry); err != nil {
		h.log.Warn().Err(err).Str("action", entry.Action).Str("resource_type", resourceType).Msg("audit log failed")
	}
}

// parseReportFilter reads the summary filter from query parameters. Dates are
// either RFC3339 or plain days; a plain "to" day includes the whole day.
func parseReportFilter(r *http.Request) (billingapp.ReportFilter, error) {
	q := r.URL.Query()
	var filter billingapp.ReportFilter
	var err error
	if filter.From, err = parseFilterTime(q.Get("from"), false); err != nil {
		return filter, fmt.Errorf("%w: from: %v", billingapp.ErrInvalidFilter, err)
	}
	if filter.To, err = parseFilterTime(q.Get("to"), true); err != nil {
		return filter, fmt.Errorf("%w: to: %v", billingapp.ErrInvalidFilter, err)
	}
	filter.AirlineID = strings.TrimSpace(q.Get("airline_id"))
	filter.Destination = strings.TrimSpace(q.Get("destination"))
	filter.TrafficType = fueling.TrafficType(strings.TrimSpace(q.Get("traffic_type")))
	filter.Description = q.Get("description")
	return filter, filter.Validate()
}

func parseFilterTime(value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	day, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("want RFC3339 or %s, got %q", dateLayout, value)
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}
