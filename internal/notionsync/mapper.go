package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

// Property names of the mirror database.
const (
	PropDescription   = "Description"
	PropTransactionID = "Transaction ID"
	PropDate          = "Date"
	PropAmount        = "Amount"
	PropCategory      = "Category"
	PropType          = "Type"
	PropSource        = "Source"
)

// TransactionToNotionProperties converts a ledger entry to Notion page properties.
// Amount is written signed so the database can sum a column into a balance.
func TransactionToNotionProperties(tx domain.Transaction) notionapi.Properties {
	date := notionapi.Date(time.Date(tx.Date.Year, tx.Date.Month, tx.Date.Day, 0, 0, 0, 0, time.UTC))

	return notionapi.Properties{
		PropDescription: notionapi.TitleProperty{
			Title: []notionapi.RichText{textOf(tx.Description)},
		},
		PropTransactionID: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{textOf(tx.ID)},
		},
		PropDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &date},
		},
		PropAmount: notionapi.NumberProperty{
			Number: tx.Signed(),
		},
		PropCategory: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Category)},
		},
		PropType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
		PropSource: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Source)},
		},
	}
}

func textOf(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}

// extractTransactionID extracts the transaction ID from a Notion page's properties.
// Returns empty string if not found.
func extractTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties[PropTransactionID]
	if !ok {
		return ""
	}
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		if len(p.RichText) > 0 {
			return p.RichText[0].PlainText
		}
	case notionapi.RichTextProperty:
		if len(p.RichText) > 0 {
			if p.RichText[0].PlainText != "" {
				return p.RichText[0].PlainText
			}
			if p.RichText[0].Text != nil {
				return p.RichText[0].Text.Content
			}
		}
	}
	return ""
}
