package pipeline

import (
	"strings"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

const receiptPromptHeader = `You are an expert AI assistant for a student engineering club treasurer (e.g., FSAE, Robotics). Your task is to analyze the attached receipt IMAGE and convert it into a structured JSON format.

**CONTEXT:**
- You are looking directly at a photo of a receipt. Read all text, including logos and layouts, to understand the contents.
- The club can only reimburse expenses directly related to its projects.
`

const receiptPromptInstructions = `
**INSTRUCTIONS:**
1.  **Analyze the Image:** Carefully read all text in the image to identify the merchant, date, and line items.
2.  **Extract Key Information:**
    - ` + "`merchant`" + `: The name of the store or vendor. Find it near the top.
    - ` + "`date`" + `: The transaction date in "YYYY-MM-DD" format. If unavailable, use "Not Available".
    - ` + "`location`" + `: City and State, if present. Otherwise, "Not Available".
    - ` + "`receipt_total`, `subtotal`, `tax`" + `: Extract these values precisely as numbers in string format (e.g., "123.45"). If a value is missing, use "0.00".
3.  **Process Line Items:** put them in a ` + "`line_items`" + ` list.
    - Extract EVERY SINGLE item purchased with its price.
    - ` + "`item`" + `: The description of the item.
    - ` + "`amount`" + `: The price of the item as a number in a string (e.g., "19.99").
    - ` + "`category`" + `: Assign a category from this specific list: **[%CATEGORIES%]**.
    - ` + "`justification`" + `: Briefly explain why this item is a valid expense for the club. Be specific.
    - ` + "`needs_approval`" + `: Set to ` + "`true`" + ` if the item is unusual, a personal item (like clothing), alcohol, or costs more than $75. Otherwise, ` + "`false`" + `.
    - ` + "`approval_reason`" + `: If ` + "`needs_approval`" + ` is true, state why (e.g., "High-value item", "Potential personal expense").
4.  **Add Flags:**
    - Create a list of strings in the ` + "`flags`" + ` field for any major problems, such as "Receipt total does not match sum of line items", "Potentially personal items found", or "Date is missing". **Do not** flag store numbers or transaction IDs.
5.  **Assess Quality:**
    - ` + "`completeness_score`" + `: Give an A-F grade based on how clear and complete the receipt image is. (A=perfect, C=readable but missing info, F=unreadable).

**REQUIRED OUTPUT FORMAT:**
Your entire response MUST be a single, valid JSON object. Do not include any text, explanations, or markdown formatting outside of the JSON structure itself.
`

const questionPromptTemplate = `You are a helpful assistant that answers questions about business receipts.
You have access to the following receipt data:

%CONTEXT%

User Question: %QUESTION%

Instructions:
- Answer the question based ONLY on the provided receipt data
- Be specific and reference actual values from the receipt
- If the information is not available in the receipt, say so clearly
- Keep responses concise but informative
- For monetary amounts, always include the currency symbol

Answer:`

// buildQuestionPrompt grounds a question in the formatted receipt context.
func buildQuestionPrompt(receiptContext, question string) string {
	return strings.NewReplacer("%CONTEXT%", receiptContext, "%QUESTION%", question).Replace(questionPromptTemplate)
}

// buildReceiptPrompt returns the extraction prompt, mentioning the event when one is set.
func buildReceiptPrompt(eventName string) string {
	quoted := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		quoted = append(quoted, `"`+c+`"`)
	}

	var b strings.Builder
	b.WriteString(receiptPromptHeader)
	if ev := strings.TrimSpace(eventName); ev != "" {
		b.WriteString("- This receipt is for the club event: '" + ev + "'.\n")
	}
	b.WriteString(strings.Replace(receiptPromptInstructions, "%CATEGORIES%", strings.Join(quoted, ", "), 1))
	return b.String()
}
