package domain

// ReferenceData is the static configuration document loaded at startup.
// Keywords seed the challenge questions; Reference is free-form context text
// fed to the completion service. Read-only at runtime.
type ReferenceData struct {
	Keywords  []string `json:"verification_keywords"`
	Reference string   `json:"verification_reference"`
}

// DefaultReferenceData is the typed fallback when reference.json is missing
// or unreadable.
func DefaultReferenceData() ReferenceData {
	return ReferenceData{}
}
