package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/advisor"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs/inmemory"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/ledger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/pipeline"
)

type mockReceiptExtractor struct {
	ExtractReceiptFunc func(ctx context.Context, image []byte, mimeType string) (pipeline.Candidate, error)
}

func (m *mockReceiptExtractor) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (pipeline.Candidate, error) {
	return m.ExtractReceiptFunc(ctx, image, mimeType)
}

type mockAdvisor struct {
	AskFunc      func(ctx context.Context, req advisor.Request) (advisor.Answer, error)
	SimulateFunc func(ctx context.Context, scenario string, profile domain.UserProfile, summary metrics.FinancialSummary) (string, error)
}

func (m *mockAdvisor) Ask(ctx context.Context, req advisor.Request) (advisor.Answer, error) {
	return m.AskFunc(ctx, req)
}

func (m *mockAdvisor) Simulate(ctx context.Context, scenario string, profile domain.UserProfile, summary metrics.FinancialSummary) (string, error) {
	return m.SimulateFunc(ctx, scenario, profile, summary)
}

type testServer struct {
	mux      *http.ServeMux
	store    *ledger.Store
	jobStore *inmemory.Store
}

func newTestServer(t *testing.T, extractor pipeline.ReceiptExtractor, adv Advisor) *testServer {
	t.Helper()

	backend, err := ledger.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	store, err := ledger.Open(context.Background(), backend)
	if err != nil {
		t.Fatalf("ledger.Open() error = %v", err)
	}

	log := zerolog.Nop()
	engine := metrics.Engine{WarnThreshold: metrics.DefaultWarnThreshold}
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(10, jobStore)
	t.Cleanup(func() { queue.Close() })

	mux := NewRouter(Handlers{
		Ledger:     NewLedgerHandler(store, engine, log),
		Receipts:   NewReceiptsHandler(extractor, store, pipeline.NewNormalizer(), log),
		Statements: NewStatementsHandler(queue, log),
		Jobs:       NewJobsHandler(jobStore, log),
		Export:     NewExportHandler(store, engine, log),
		Advice:     NewAdviceHandler(adv, store, engine, log),
	})
	return &testServer{mux: mux, store: store, jobStore: jobStore}
}

func (s *testServer) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestTransactionsEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}
	var txs []domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(txs) != 5 {
		t.Fatalf("got %d seed transactions, want 5", len(txs))
	}

	rec = s.do(http.MethodPost, "/api/transactions", []byte(`{"date":"2024-05-20","amount":-45,"description":"Books","category":"shopping","type":"expense"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var tx domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tx.Amount != 45 || tx.Category != domain.CategoryShopping || tx.Source != domain.SourceManual {
		t.Errorf("created = %+v", tx)
	}
	if n := len(s.store.Transactions()); n != 6 {
		t.Errorf("ledger has %d transactions, want 6", n)
	}
}

func TestCreateTransaction_BadInput(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"bad date", `{"date":"20/05/2024","amount":10}`},
		{"zero amount", `{"amount":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/transactions", []byte(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
	if n := len(s.store.Transactions()); n != 5 {
		t.Errorf("ledger has %d transactions, want 5", n)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodGet, "/api/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Summary metrics.FinancialSummary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Summary.TotalBalance != 3370 || body.Summary.MonthlyExpenses != 1630 {
		t.Errorf("summary = %+v", body.Summary)
	}
}

func TestBudgetsAndProfile(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodPut, "/api/budgets", []byte(`[{"id":"b9","category":"Food","limit":0,"spent":0}]`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid budget status = %d, want 400", rec.Code)
	}

	rec = s.do(http.MethodPut, "/api/budgets", []byte(`[{"id":"b9","category":"Food","limit":100,"spent":90}]`))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT budgets status = %d, want 200", rec.Code)
	}

	rec = s.do(http.MethodGet, "/api/budgets/progress", nil)
	var progress []metrics.BudgetProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(progress) != 1 || !progress[0].OverLimit {
		t.Errorf("progress = %+v, want one over-limit budget", progress)
	}

	rec = s.do(http.MethodPut, "/api/profile", []byte(`{"baseSalary":-1,"currency":"USD"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid profile status = %d, want 400", rec.Code)
	}

	rec = s.do(http.MethodPut, "/api/profile", []byte(`{"baseSalary":6000,"otherIncome":0,"initialAssets":0,"initialLiabilities":0,"currency":"EUR"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT profile status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if p := s.store.Profile(); p.Currency != "EUR" || p.BaseSalary != 6000 {
		t.Errorf("profile = %+v", p)
	}
}

func TestScanReceipt(t *testing.T) {
	extractor := &mockReceiptExtractor{
		ExtractReceiptFunc: func(ctx context.Context, image []byte, mimeType string) (pipeline.Candidate, error) {
			amount := 42.5
			desc, cat := "Corner Cafe", "Food"
			return pipeline.Candidate{Amount: &amount, Description: &desc, Category: &cat}, nil
		},
	}
	s := newTestServer(t, extractor, nil)

	rec := s.do(http.MethodPost, "/api/receipts", pngBytes(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	txs := s.store.Transactions()
	last := txs[len(txs)-1]
	if last.Source != domain.SourceReceipt || last.Amount != 42.5 {
		t.Errorf("last transaction = %+v", last)
	}
}

func TestScanReceipt_Failures(t *testing.T) {
	failing := &mockReceiptExtractor{
		ExtractReceiptFunc: func(ctx context.Context, image []byte, mimeType string) (pipeline.Candidate, error) {
			return pipeline.Candidate{}, errors.New("model unavailable")
		},
	}
	s := newTestServer(t, failing, nil)

	if rec := s.do(http.MethodPost, "/api/receipts", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/api/receipts", pngBytes(t)); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("extraction failure status = %d, want 422", rec.Code)
	}
	if n := len(s.store.Transactions()); n != 5 {
		t.Errorf("ledger has %d transactions, want 5", n)
	}
}

func TestSubmitStatement_QueuesJob(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodPost, "/api/statements?filename=may.txt", []byte("05/01 COFFEE 4.50\n05/02 RENT 1200.00"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = s.do(http.MethodGet, "/api/jobs/"+body["job_id"], nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET job status = %d, want 200", rec.Code)
	}
	var job jobs.StatementImportJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.Status != jobs.JobStatusPending || job.Filename != "may.txt" {
		t.Errorf("job = %+v", job)
	}
	if strings.Contains(rec.Body.String(), "COFFEE") {
		t.Error("job listing exposes statement text")
	}

	if rec := s.do(http.MethodPost, "/api/statements", []byte("   ")); rec.Code != http.StatusBadRequest {
		t.Errorf("blank statement status = %d, want 400", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/jobs/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d, want 404", rec.Code)
	}
}

func TestExportEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodGet, "/api/export/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "id,date,amount,description,category,type,source\n") {
		t.Errorf("unexpected CSV header: %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	s.do(http.MethodPost, "/api/reset", nil)
	if rec := s.do(http.MethodGet, "/api/export/transactions", nil); rec.Code != http.StatusNotFound {
		t.Errorf("empty export status = %d, want 404", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/export/summary", nil); rec.Code != http.StatusOK {
		t.Errorf("summary export status = %d, want 200", rec.Code)
	}
}

func TestAdvise(t *testing.T) {
	adv := &mockAdvisor{
		AskFunc: func(ctx context.Context, req advisor.Request) (advisor.Answer, error) {
			if len(req.Transactions) != 5 || req.Summary.MonthlyIncome != 5000 {
				t.Errorf("advisor got %d transactions, income %v", len(req.Transactions), req.Summary.MonthlyIncome)
			}
			return advisor.Answer{Text: "Spend less on concerts."}, nil
		},
		SimulateFunc: func(ctx context.Context, scenario string, profile domain.UserProfile, summary metrics.FinancialSummary) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	s := newTestServer(t, nil, adv)

	rec := s.do(http.MethodPost, "/api/advice", []byte(`{"question":"How am I doing?"}`))
	var answer advisor.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.Text != "Spend less on concerts." {
		t.Errorf("answer = %q", answer.Text)
	}

	rec = s.do(http.MethodPost, "/api/advice", []byte(`{"scenario":"buy a house"}`))
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.Text != advisor.FallbackAnswer {
		t.Errorf("failed simulation answer = %q, want fallback", answer.Text)
	}

	if rec := s.do(http.MethodPost, "/api/advice", []byte(`{}`)); rec.Code != http.StatusBadRequest {
		t.Errorf("empty question status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil, nil)
	if rec := s.do(http.MethodDelete, "/api/transactions", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
