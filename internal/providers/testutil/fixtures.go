// internal/providers/testutil/fixtures.go
package testutil

// SampleWebSearchResponse is a trimmed OpenAI responses-API payload with one
// web search call and a cited answer.
const SampleWebSearchResponse = `{
	"id": "resp_test_123",
	"status": "completed",
	"output": [
		{
			"id": "ws_1",
			"type": "web_search_call",
			"status": "completed",
			"action": {"type": "search", "query": "best crm tools 2026"}
		},
		{
			"id": "msg_1",
			"type": "message",
			"content": [
				{
					"type": "output_text",
					"text": "Acme CRM is widely considered the best option, followed by Globex.",
					"annotations": [
						{"type": "url_citation", "start_index": 0, "end_index": 8, "title": "Acme review", "url": "https://www.example.com/acme-review"},
						{"type": "url_citation", "start_index": 40, "end_index": 60, "title": "CRM roundup", "url": "https://reviews.example.org/crm"}
					]
				}
			]
		}
	],
	"usage": {"input_tokens": 120, "output_tokens": 80, "total_tokens": 200}
}`

// SampleErrorResponse is a provider-side failure payload.
const SampleErrorResponse = `{
	"error": {"message": "Rate limit reached", "type": "rate_limit_error"}
}`
