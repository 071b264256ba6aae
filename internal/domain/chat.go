package domain

// ChatMessage is the provider-agnostic chat message shape shared by the
// inbound request history and the LLM integration.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the normalized inbound chat payload. History and Policies
// are always non-nil after normalization; Message is already truncated.
type ChatRequest struct {
	Message  string            `json:"message"`
	History  []ChatMessage     `json:"history"`
	Policies map[string]string `json:"policies"`
}

// Product is a single catalog match from the storefront search.
type Product struct {
	Title          string `json:"title"`
	Handle         string `json:"handle"`
	OnlineStoreURL string `json:"onlineStoreUrl,omitempty"`
}
