package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chartfeed/internal/feed"
	"chartfeed/internal/logger"
	"chartfeed/internal/metrics"
	"chartfeed/internal/normalize"
	"chartfeed/internal/quote"
)

type quotesResponse struct {
	Quotes []quote.Quote `json:"quotes"`
}

type contractSource interface {
	OpenContract(ctx context.Context, contractID int64) (*feed.OpenContract, error)
}

type api struct {
	history   feed.HistorySource
	contracts contractSource
	metrics   *metrics.Metrics
	log       logger.Interface
	timeout   time.Duration
	maxBody   int64
}

// routes builds the full handler. /metrics stays outside the JSON and gzip
// chain since promhttp negotiates its own encoding.
func (a *api) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /api/normalize/{kind}", a.handleNormalize)
	mux.HandleFunc("GET /api/history", a.handleHistory)
	mux.HandleFunc("GET /api/contracts/{id}/ticks", a.handleContractTicks)

	root := http.NewServeMux()
	root.Handle("GET /metrics", a.metrics.Handler())
	root.Handle("/", withRequestID(withJSONHeaders(withGzip(recoverPanic(a.log, limitBody(a.maxBody, mux))))))
	return root
}

func (a *api) handleNormalize(w http.ResponseWriter, r *http.Request) {
	kind := normalize.Kind(r.PathValue("kind"))
	if !kind.IsAvailable() {
		http.Error(w, "unknown kind "+strconv.Quote(string(kind)), http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	out, err := normalize.Payload(kind, body)
	if err != nil {
		a.log.WarnContext(r.Context(), "normalize rejected payload",
			logger.NewField("kind", string(kind)), logger.NewField("error", err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.writeOutcome(w, string(kind), out)
}

func (a *api) handleHistory(w http.ResponseWriter, r *http.Request) {
	req, err := parseHistoryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()
	resp, err := a.history.History(ctx, req)
	if err != nil {
		a.log.ErrorContext(r.Context(), err, logger.NewField("symbol", req.Symbol))
		http.Error(w, "upstream: "+err.Error(), http.StatusBadGateway)
		return
	}
	quotes, ok := normalize.History(resp)
	out := normalize.Outcome{Quotes: quotes}
	if !ok {
		out.Status = normalize.StatusAbsent
	}
	a.writeOutcome(w, string(normalize.KindHistory), out)
}

func (a *api) handleContractTicks(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid contract id", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()
	c, err := a.contracts.OpenContract(ctx, id)
	if err != nil {
		a.log.ErrorContext(r.Context(), err, logger.NewField("contract_id", id))
		http.Error(w, "upstream: "+err.Error(), http.StatusBadGateway)
		return
	}
	quotes, err := normalize.ContractStream(c)
	out := normalize.Outcome{Quotes: quotes}
	if errors.Is(err, normalize.ErrIncompleteContract) {
		out.Status = normalize.StatusIncomplete
	}
	a.writeOutcome(w, string(normalize.KindContract), out)
}

func (a *api) writeOutcome(w http.ResponseWriter, converter string, out normalize.Outcome) {
	a.metrics.ObserveQuotes(converter, out.Status.String(), out.Quotes)
	switch out.Status {
	case normalize.StatusAbsent:
		w.WriteHeader(http.StatusNoContent)
		return
	case normalize.StatusIncomplete:
		http.Error(w, normalize.ErrIncompleteContract.Error(), http.StatusUnprocessableEntity)
		return
	}
	resp := quotesResponse{Quotes: out.Quotes}
	if resp.Quotes == nil {
		resp.Quotes = []quote.Quote{}
	}
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func parseHistoryRequest(r *http.Request) (feed.HistoryRequest, error) {
	q := r.URL.Query()
	req := feed.HistoryRequest{
		Symbol: strings.TrimSpace(q.Get("symbol")),
		Style:  feed.Style(q.Get("style")),
	}
	if req.Style == "" {
		req.Style = feed.StyleTicks
	}
	var err error
	if req.Count, err = queryInt(q.Get("count")); err != nil {
		return req, errors.New("count must be a non-negative integer")
	}
	if req.Granularity, err = queryInt(q.Get("granularity")); err != nil {
		return req, errors.New("granularity must be a non-negative integer")
	}
	return req, req.Validate()
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
