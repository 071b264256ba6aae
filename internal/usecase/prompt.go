package usecase

import (
	"fmt"
	"strings"

	"storefront-agent/internal/domain"
)

const (
	fallbackReply = "Sorry, I could not generate a reply."
	noMatchesLine = "No product matches."
)

// policyFields fixes the rendering order and the fallback text used when the
// caller omits a policy.
var policyFields = []struct {
	key      string
	label    string
	fallback string
}{
	{"shipping", "Shipping", "Standard shipping in 3-5 business days."},
	{"returns", "Returns", "30-day returns on unworn items."},
	{"regions", "Regions", "We ship worldwide."},
	{"contact", "Contact", "support@example.com"},
}

// buildPromptMessages assembles the exact outbound message list:
// [system] ++ history (verbatim, in order) ++ [user]. The user message is the
// truncated customer message followed by the rendered product-match block.
func buildPromptMessages(req domain.ChatRequest, products []domain.Product, links LinkStyle) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, domain.ChatMessage{
		Role:    "system",
		Content: buildSystemPrompt(req.Policies, links),
	})
	messages = append(messages, req.History...)
	messages = append(messages, domain.ChatMessage{
		Role:    "user",
		Content: req.Message + "\n\n" + renderProductBlock(products, links),
	})
	return messages
}

func buildSystemPrompt(policies map[string]string, links LinkStyle) string {
	return personaPrompt(links) + "\nPolicies:\n" + renderPolicyBlock(policies)
}

func personaPrompt(links LinkStyle) string {
	lines := []string{
		"You are a friendly shopping assistant for an online store.",
		"Keep replies short, warm, and helpful.",
		"Answer questions using only the store policies listed below.",
		"When product matches are listed in the customer's message, recommend from them.",
		"For order-specific issues (tracking, refunds, order changes), ask the customer to contact a human agent.",
	}
	if links == LinkRelative {
		lines = append(lines, "Refer to products by their in-app link in the form /products/{handle} and never include raw URLs in your reply.")
	}
	return strings.Join(lines, "\n")
}

func renderPolicyBlock(policies map[string]string) string {
	lines := make([]string, 0, len(policyFields))
	for _, f := range policyFields {
		value := policies[f.key]
		if value == "" {
			value = f.fallback
		}
		lines = append(lines, f.label+": "+value)
	}
	return strings.Join(lines, "\n")
}

func renderProductBlock(products []domain.Product, links LinkStyle) string {
	if len(products) == 0 {
		return noMatchesLine
	}
	lines := make([]string, 0, len(products)+1)
	lines = append(lines, "Product matches:")
	for _, p := range products {
		if links == LinkRelative {
			lines = append(lines, fmt.Sprintf("- [%s](/products/%s)", p.Title, p.Handle))
			continue
		}
		url := p.OnlineStoreURL
		if url == "" {
			url = "/products/" + p.Handle
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", p.Title, url))
	}
	return strings.Join(lines, "\n")
}
