package schema

import "strings"

// CleanJSONResponse strips a markdown code fence wrapped around a model
// response. Anything else is returned trimmed but otherwise untouched.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if !strings.HasPrefix(response, "```") || !strings.HasSuffix(response, "```") || len(response) < 6 {
		return response
	}

	response = strings.TrimSuffix(strings.TrimPrefix(response, "```"), "```")
	// drop an optional language tag such as ```json
	if nl := strings.IndexByte(response, '\n'); nl >= 0 && !strings.ContainsAny(response[:nl], "{[") {
		response = response[nl+1:]
	}
	return strings.TrimSpace(response)
}
