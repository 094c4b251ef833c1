package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/pkg/logger"
	"github.com/ignite/inbox-triage/internal/reasoner"
)

// Completer is the external reasoning service boundary: one prompt in, one
// free-text response out. The engine owns parsing and never trusts the
// response shape.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Candidate is one message offered for deep escalation, carrying the
// already-computed composite result as its fallback.
type Candidate struct {
	MessageID string
	From      string
	Subject   string
	Snippet   string
	Composite domain.ScoringResult
}

// Escalator sends low-confidence composite results to the external reasoning
// service in bounded batches. Failures at this boundary are never fatal:
// every candidate always has its composite result to fall back on.
type Escalator struct {
	completer Completer
	users     UserContextProvider
	behavior  BehaviorSummaryProvider
	cfg       config.ReasonerConfig
}

// NewEscalator creates an escalator. behavior may be nil; the prompt then
// omits the learned-patterns section.
func NewEscalator(completer Completer, users UserContextProvider, behavior BehaviorSummaryProvider, cfg config.ReasonerConfig) *Escalator {
	return &Escalator{completer: completer, users: users, behavior: behavior, cfg: cfg}
}

// adjustment is one per-item verdict parsed out of the reasoning response.
type adjustment struct {
	Index           int     `json:"index"`
	AdjustedScore   float64 `json:"adjusted_score"`
	Reasoning       string  `json:"reasoning"`
	SuggestedAction string  `json:"suggested_action"`
}

// Refine returns one result per candidate, in input order. Candidates whose
// composite confidence is below the threshold (or whose sender is unknown)
// are batched to the reasoning service, at most MaxBatchSize of them; each
// verdict that comes back well-formed replaces that one item's score and
// reasoning. Timeouts, transport errors and malformed responses leave the
// affected items on their composite results — isolation is per item, never
// per batch.
func (e *Escalator) Refine(ctx context.Context, userID string, cands []Candidate) []domain.ScoringResult {
	results := make([]domain.ScoringResult, len(cands))
	for i, c := range cands {
		results[i] = c.Composite
	}
	if e.completer == nil || len(cands) == 0 {
		return results
	}

	var needy []int
	for i, c := range cands {
		if c.Composite.Confidence < e.cfg.EscalateBelowConfidence ||
			c.Composite.Relationship == domain.RelationshipUnknown {
			needy = append(needy, i)
		}
		if len(needy) == e.cfg.MaxBatchSize {
			break
		}
	}
	if len(needy) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	prompt := e.buildPrompt(ctx, userID, cands, needy)
	text, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("escalation failed, keeping composite scores",
			"user_id", userID, "batch_size", len(needy), "error", err)
		return results
	}

	var adjustments []adjustment
	if err := json.Unmarshal([]byte(reasoner.ExtractJSON(text)), &adjustments); err != nil {
		logger.Warn("escalation response unparseable, keeping composite scores",
			"user_id", userID, "error", err)
		return results
	}

	applied := 0
	for _, adj := range adjustments {
		if adj.Index < 0 || adj.Index >= len(needy) {
			continue
		}
		action := domain.SuggestedAction(adj.SuggestedAction)
		switch action {
		case domain.ActionReplyNow, domain.ActionReviewToday, domain.ActionReadLater,
			domain.ActionArchiveIfNotUrgent, domain.ActionAutoArchive, domain.ActionUserDecides:
		default:
			continue // unknown action verb, keep composite for this item
		}
		i := needy[adj.Index]
		r := &results[i]
		r.ImportanceScore = domain.ClampScore(adj.AdjustedScore)
		r.SuggestedAction = action
		if adj.Reasoning != "" {
			r.Reasoning = adj.Reasoning
		}
		r.Escalated = true
		applied++
	}

	logger.Info("escalation batch applied",
		"user_id", userID, "requested", len(needy), "applied", applied)
	return results
}

func (e *Escalator) buildPrompt(ctx context.Context, userID string, cands []Candidate, needy []int) string {
	user, err := e.users.UserContext(ctx, userID)
	if err != nil {
		user = domain.DefaultUserContext(userID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an inbox triage assistant for a %s.\n\n", user.Role)
	fmt.Fprintf(&b, "USER CONTEXT:\n- Role: %s\n", user.Role)
	if len(user.Priorities) > 0 {
		fmt.Fprintf(&b, "- Current Priorities: %s\n", strings.Join(user.Priorities, ", "))
	}
	fmt.Fprintf(&b, "- Communication Style: %s\n", user.CommunicationStyle)

	if e.behavior != nil {
		if summary, err := e.behavior.BehaviorSummary(ctx, userID); err == nil {
			fmt.Fprintf(&b, "\nLEARNED PATTERNS (from %d recent actions):\n", summary.TotalActions)
			fmt.Fprintf(&b, "- Senders user always archives: %d identified\n", len(summary.ConsistentArchives))
			fmt.Fprintf(&b, "- Senders user always opens: %d identified\n", len(summary.ConsistentOpens))
		}
	}

	b.WriteString("\nMESSAGES NEEDING ANALYSIS:\n")
	type promptItem struct {
		Index        int     `json:"index"`
		From         string  `json:"from"`
		Subject      string  `json:"subject"`
		Snippet      string  `json:"snippet"`
		Relationship string  `json:"sender_relationship"`
		InitialScore int     `json:"initial_score"`
		Confidence   float64 `json:"confidence"`
	}
	items := make([]promptItem, 0, len(needy))
	for batchIdx, i := range needy {
		c := cands[i]
		snippet := c.Snippet
		if len(snippet) > 150 {
			snippet = snippet[:150]
		}
		items = append(items, promptItem{
			Index:        batchIdx,
			From:         c.From,
			Subject:      c.Subject,
			Snippet:      snippet,
			Relationship: string(c.Composite.Relationship),
			InitialScore: c.Composite.ImportanceScore,
			Confidence:   c.Composite.Confidence,
		})
	}
	encoded, _ := json.MarshalIndent(items, "", "  ")
	b.Write(encoded)

	b.WriteString("\n\nQUESTION: Which of these messages truly matter to this user given their role, priorities, and behavior patterns?\n\n")
	b.WriteString("For each message, provide:\n")
	b.WriteString("1. adjusted_score (0-100): your contextual importance score\n")
	b.WriteString("2. reasoning: why this matters (or doesn't) to this specific user\n")
	b.WriteString("3. suggested_action: reply_now | review_today | read_later | archive_if_not_urgent | auto_archive | user_decides\n\n")
	b.WriteString(`Return ONLY a valid JSON array: [{"index": 0, "adjusted_score": 85, "reasoning": "...", "suggested_action": "reply_now"}, ...]`)
	return b.String()
}
