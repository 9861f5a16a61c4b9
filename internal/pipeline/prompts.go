package pipeline

import (
	"strings"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

// categoryList renders the closed category set for prompts.
func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func statementPrompt(text string) string {
	return "You are a financial data extractor. Convert the following raw bank statement, " +
		"CSV, or document text into a structured JSON array of transactions.\n\n" +
		"Rules:\n" +
		"1. Detect the Date (YYYY-MM-DD), Description, and Amount of every transaction.\n" +
		"2. \"amount\" is always a positive number; money in has \"type\" \"income\", money out has \"type\" \"expense\".\n" +
		"3. Categorize into: " + categoryList() + ".\n" +
		"4. Skip opening/closing balance lines and page totals.\n\n" +
		"Raw Data: \"\"\"" + text + "\"\"\""
}

func receiptPrompt() string {
	return "Analyze this receipt image. Extract: Amount (number, the total paid), " +
		"Description (store name), Date (YYYY-MM-DD), Category (one of: " + categoryList() + ") " +
		"and Type (\"expense\" unless the receipt is a refund)."
}
