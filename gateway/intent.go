package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gigdesk/modgate/internal/jsonutil"
	"github.com/gigdesk/modgate/llm"
)

// ClassifyInput is the contract with the intent inference service: the
// running transcript, the new message, and the serialized snapshot that
// grounds the classification.
type ClassifyInput struct {
	History      string
	Message      string
	SnapshotJSON string
}

// Classification is the service's structured verdict. Every field is
// untrusted until normalized; the gateway validates it again before any
// store write.
type Classification struct {
	Response          string `json:"response"`
	Intent            string `json:"intent"`
	IsAction          bool   `json:"is_action"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
	ActionType        string `json:"action_type"`
	TargetID          string `json:"target_id"`
	Reason            string `json:"reason,omitempty"`
	DurationDays      int    `json:"duration_days,omitempty"`
}

type Inference interface {
	Classify(ctx context.Context, in ClassifyInput) (Classification, error)
}

// LLMInference implements Inference over an OpenAI-compatible chat client.
type LLMInference struct {
	Client llm.Client
	Model  string
}

const classifySystemPrompt = "You are the intent classifier for a marketplace moderation console. " +
	"Return ONLY JSON with keys: response (string, what to say to the admin), " +
	"intent (question|action|research), is_action (boolean), needs_confirmation (boolean), " +
	"action_type (suspend|approve|deny|none), target_id (string, the exact account email or empty), " +
	"reason (string), duration_days (number). " +
	"Rules: target_id must be a single exact email taken from the snapshot or the message; " +
	"never guess an email. If several accounts could match, set is_action true, " +
	"needs_confirmation false, and explain the ambiguity in response. " +
	"For any concrete action on one account set needs_confirmation true. " +
	"Ground every fact in the snapshot; do not invent records."

func (li *LLMInference) Classify(ctx context.Context, in ClassifyInput) (Classification, error) {
	if li == nil || li.Client == nil {
		return Classification{}, fmt.Errorf("nil llm client")
	}
	// The snapshot rides along as a string: a budget-trimmed snapshot ends in
	// a marker and is intentionally not valid JSON on its own.
	payload := map[string]any{
		"conversation_history": in.History,
		"user_message":         in.Message,
		"snapshot":             in.SnapshotJSON,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Classification{}, err
	}

	res, err := li.Client.Chat(ctx, llm.Request{
		Model:     li.Model,
		ForceJSON: true,
		Messages: []llm.Message{
			{Role: "system", Content: classifySystemPrompt},
			{Role: "user", Content: string(b)},
		},
		Parameters: map[string]any{
			"max_tokens":  600,
			"temperature": 0,
		},
	})
	if err != nil {
		return Classification{}, err
	}
	raw := strings.TrimSpace(res.Text)
	if raw == "" {
		return Classification{}, fmt.Errorf("empty classification response")
	}

	var out Classification
	if err := jsonutil.DecodeWithFallback(raw, &out); err != nil {
		return Classification{}, fmt.Errorf("invalid classification json")
	}
	return normalizeClassification(out), nil
}

func normalizeClassification(c Classification) Classification {
	c.Response = strings.TrimSpace(c.Response)
	c.TargetID = strings.TrimSpace(strings.ToLower(c.TargetID))
	c.Reason = strings.TrimSpace(c.Reason)
	c.ActionType = string(ParseActionType(c.ActionType))
	if c.DurationDays < 0 {
		c.DurationDays = 0
	}
	switch strings.ToLower(strings.TrimSpace(c.Intent)) {
	case "action":
		c.Intent = "action"
	case "research":
		c.Intent = "research"
	default:
		c.Intent = "question"
	}
	if c.ActionType == string(ActionNone) {
		c.IsAction = false
		c.NeedsConfirmation = false
	}
	return c
}
