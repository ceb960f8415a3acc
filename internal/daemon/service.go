// Package daemon provides the long-running background forecast refresh service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/forecast"
	"github.com/runwaydev/runway/internal/invoicing"
	"github.com/runwaydev/runway/internal/model"
	"github.com/runwaydev/runway/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath          string
	WeekStart       time.Weekday
	Assumptions     forecast.CollectionAssumptions
	Invoicing       *invoicing.Client // nil when receivables are disabled
	BalanceOverride *decimal.Decimal  // nil means use the bank-reported balance
	Interval        time.Duration
	Addr            string
	EventsBuffer    int
}

// Snapshot is a compact forecast state for status/event payloads.
type Snapshot struct {
	At              time.Time       `json:"at"`
	Transactions    int             `json:"transactions"`
	Estimates       int             `json:"estimates"`
	Receivables     int             `json:"receivables"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
	LowestBalance   decimal.Decimal `json:"lowest_balance"`
	LowestWeek      int             `json:"lowest_week"`
	NetOverHorizon  decimal.Decimal `json:"net_over_horizon"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Transactions  int             `json:"transactions"`
	Receivables   int             `json:"receivables"`
	EndingBalance decimal.Decimal `json:"ending_balance"`
}

func (d Delta) isZero() bool {
	return d.Transactions == 0 &&
		d.Receivables == 0 &&
		d.EndingBalance.IsZero()
}

// Event is emitted whenever the forecast snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	rows        []model.WeeklyCashflow
	ar          []model.AREstimate
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < time.Minute {
		cfg.Interval = time.Hour
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/forecast", s.handleForecast)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	result, counts, err := s.rebuild(ctx)
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		log.Printf("runway daemon poll error: %v", err)
		return
	}

	snap := snapshotFromResult(result, counts, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.rows = result.Rows
	s.ar = result.AR
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     Delta{},
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "forecast_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

// counts carries store totals alongside a rebuilt forecast.
type counts struct {
	transactions int
	estimates    int
}

// rebuild loads everything fresh and reruns the forecast. The store is
// reopened each poll so imports from another process are picked up.
func (s *Service) rebuild(ctx context.Context) (forecast.Result, counts, error) {
	db, err := store.Open(s.cfg.DBPath)
	if err != nil {
		return forecast.Result{}, counts{}, fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = db.Close() }()

	txns, err := db.LoadTransactions()
	if err != nil {
		return forecast.Result{}, counts{}, fmt.Errorf("loading transactions: %w", err)
	}
	estimates, err := db.LoadEstimates()
	if err != nil {
		return forecast.Result{}, counts{}, fmt.Errorf("loading estimates: %w", err)
	}

	balance := decimal.Zero
	if s.cfg.BalanceOverride != nil {
		balance = *s.cfg.BalanceOverride
	} else if reported, ok, err := db.LatestReportedBalance(); err == nil && ok {
		balance = reported
	}

	// The invoicing service is best-effort: a failed fetch degrades to a
	// forecast without the AR overlay rather than no forecast at all.
	var invoices []model.ReceivableInvoice
	if s.cfg.Invoicing != nil && s.cfg.Assumptions.Enabled {
		invoices, err = s.cfg.Invoicing.ListOutstanding(ctx)
		if err != nil {
			log.Printf("runway daemon: invoice fetch failed, forecasting without receivables: %v", err)
			invoices = nil
		}
	}

	result := forecast.Build(forecast.Inputs{
		Transactions:    txns,
		Estimates:       estimates,
		Invoices:        invoices,
		Assumptions:     s.cfg.Assumptions,
		StartingBalance: balance,
		Now:             time.Now(),
		WeekStart:       s.cfg.WeekStart,
	})
	return result, counts{transactions: len(txns), estimates: len(estimates)}, nil
}

func snapshotFromResult(r forecast.Result, c counts, at time.Time) Snapshot {
	snap := Snapshot{
		At:           at,
		Transactions: c.transactions,
		Estimates:    c.estimates,
		Receivables:  len(r.AR),
	}

	net := decimal.Zero
	for i, row := range r.Rows {
		net = net.Add(row.Net)
		if i == 0 || row.RunningBalance.LessThan(snap.LowestBalance) {
			snap.LowestBalance = row.RunningBalance
			snap.LowestWeek = row.WeekIndex
		}
	}
	snap.NetOverHorizon = net

	if len(r.Rows) > 0 {
		last := r.Rows[len(r.Rows)-1]
		snap.EndingBalance = last.RunningBalance
		snap.StartingBalance = last.RunningBalance.Sub(net)
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Transactions:  curr.Transactions - prev.Transactions,
		Receivables:   curr.Receivables - prev.Receivables,
		EndingBalance: curr.EndingBalance.Sub(prev.EndingBalance),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleForecast(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	payload := struct {
		At    time.Time              `json:"at"`
		Weeks []model.WeeklyCashflow `json:"weeks"`
		AR    []model.AREstimate     `json:"receivables,omitempty"`
	}{
		At:    s.lastPollAt,
		Weeks: s.rows,
		AR:    s.ar,
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
