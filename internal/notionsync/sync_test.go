package notionsync

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

type MockNotionService struct {
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabaseFunc func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	ArchivePageFunc   func(ctx context.Context, pageID string) error

	created  []notionapi.Properties
	archived []string
}

func (m *MockNotionService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, databaseID, properties)
	}
	m.created = append(m.created, properties)
	return &notionapi.Page{}, nil
}

func (m *MockNotionService) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.QueryDatabaseFunc != nil {
		return m.QueryDatabaseFunc(ctx, databaseID, filter)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func (m *MockNotionService) ArchivePage(ctx context.Context, pageID string) error {
	if m.ArchivePageFunc != nil {
		return m.ArchivePageFunc(ctx, pageID)
	}
	m.archived = append(m.archived, pageID)
	return nil
}

func pageWithID(pageID, txID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			PropTransactionID: &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func testLedger() []domain.Transaction {
	return []domain.Transaction{
		{ID: "1", Date: civil.Date{Year: 2024, Month: 5, Day: 1}, Amount: 4500, Category: domain.CategoryIncome, Description: "Salary", Type: domain.TypeIncome, Source: domain.SourceManual},
		{ID: "2", Date: civil.Date{Year: 2024, Month: 5, Day: 2}, Amount: 120.5, Category: domain.CategoryFood, Description: "Groceries", Type: domain.TypeExpense, Source: domain.SourceReceipt},
		{ID: "3", Date: civil.Date{Year: 2024, Month: 5, Day: 3}, Amount: 60, Category: domain.CategoryTransportation, Description: "Fuel", Type: domain.TypeExpense, Source: domain.SourceBankSync},
	}
}

func TestSyncLedger_SkipsMirroredEntries(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{pageWithID("p1", "1")}}, nil
		},
	}

	created, skipped, err := SyncLedger(context.Background(), testLedger(), mock, "db", false)
	if err != nil {
		t.Fatalf("SyncLedger() error = %v", err)
	}
	if created != 2 || skipped != 1 {
		t.Errorf("created, skipped = %d, %d, want 2, 1", created, skipped)
	}
	if len(mock.created) != 2 {
		t.Fatalf("CreatePage called %d times, want 2", len(mock.created))
	}
}

func TestSyncLedger_DryRunWritesNothing(t *testing.T) {
	mock := &MockNotionService{
		CreatePageFunc: func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
			t.Fatal("CreatePage called during dry run")
			return nil, nil
		},
	}

	created, skipped, err := SyncLedger(context.Background(), testLedger(), mock, "db", true)
	if err != nil {
		t.Fatalf("SyncLedger() error = %v", err)
	}
	if created != 3 || skipped != 0 {
		t.Errorf("created, skipped = %d, %d, want 3, 0", created, skipped)
	}
}

func TestSyncLedger_QueryFailureAborts(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return nil, errors.New("unauthorized")
		},
	}

	if _, _, err := SyncLedger(context.Background(), testLedger(), mock, "db", false); err == nil {
		t.Fatal("SyncLedger() expected error")
	}
}

func TestMirror_PerPageFailuresAreCounted(t *testing.T) {
	mock := &MockNotionService{
		CreatePageFunc: func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
			title := properties[PropDescription].(notionapi.TitleProperty)
			if title.Title[0].Text.Content == "Groceries" {
				return nil, errors.New("rate limited")
			}
			return &notionapi.Page{}, nil
		},
	}

	res, err := Mirror(context.Background(), testLedger(), mock, "db", Options{})
	if err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}
	if res.Created != 2 || res.Failed != 1 {
		t.Errorf("Mirror() = %+v, want 2 created and 1 failed", res)
	}
}

func TestMirror_Paginates(t *testing.T) {
	calls := 0
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			calls++
			if filter.StartCursor == "" {
				return &notionapi.DatabaseQueryResponse{
					Results:    []notionapi.Page{pageWithID("p1", "1")},
					HasMore:    true,
					NextCursor: "next",
				}, nil
			}
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{pageWithID("p2", "2")}}, nil
		},
	}

	res, err := Mirror(context.Background(), testLedger(), mock, "db", Options{})
	if err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("QueryDatabase called %d times, want 2", calls)
	}
	if res.Skipped != 2 || res.Created != 1 {
		t.Errorf("Mirror() = %+v, want 2 skipped and 1 created", res)
	}
}

func TestMirror_PruneArchivesStalePages(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{
				pageWithID("p1", "1"),
				pageWithID("p9", "gone"),
			}}, nil
		},
	}

	res, err := Mirror(context.Background(), testLedger(), mock, "db", Options{Prune: true})
	if err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}
	if res.Archived != 1 || len(mock.archived) != 1 || mock.archived[0] != "p9" {
		t.Errorf("archived = %v (%d), want [p9]", mock.archived, res.Archived)
	}
}

func TestTransactionToNotionProperties(t *testing.T) {
	tx := testLedger()[1]
	props := TransactionToNotionProperties(tx)

	amount := props[PropAmount].(notionapi.NumberProperty)
	if amount.Number != -120.5 {
		t.Errorf("Amount = %v, want -120.5", amount.Number)
	}
	cat := props[PropCategory].(notionapi.SelectProperty)
	if cat.Select.Name != string(domain.CategoryFood) {
		t.Errorf("Category = %q, want %q", cat.Select.Name, domain.CategoryFood)
	}
	id := props[PropTransactionID].(notionapi.RichTextProperty)
	if id.RichText[0].Text.Content != "2" {
		t.Errorf("Transaction ID = %q, want 2", id.RichText[0].Text.Content)
	}
}
