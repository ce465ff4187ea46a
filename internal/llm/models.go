package llm

import "strings"

const DefaultGeminiModel = "gemini-2.5-flash"

// SupportedGeminiModels lists the model ids the Gemini provider accepts.
var SupportedGeminiModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-flash-latest",
	"gemini-pro-latest",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// NormalizeModel maps a model id or builder display name such as
// "Gemini 2.5 Flash-Lite" onto a supported id. ok is false when name was not
// recognised and fallback was returned instead.
func NormalizeModel(name, fallback string) (model string, ok bool) {
	id := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	id = strings.TrimPrefix(id, "models/")
	for _, m := range SupportedGeminiModels {
		if id == m {
			return m, true
		}
	}
	if fallback == "" {
		fallback = DefaultGeminiModel
	}
	return fallback, false
}
