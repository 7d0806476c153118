package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ritualos/internal/metrics"
	"ritualos/internal/ritual"

	"go.uber.org/zap"
)

const ritualSystemPrompt = `You are a habit architect specialized in Kaizen and antifragility.
Your mission: convert abstract goals into repeatable systems.

RULES:
1. KAIZEN: the initial step must be ridiculously small.
2. DUAL MODES: produce two versions of the routine:
   - IDEAL MODE: what to do on a normal day (challenging but doable).
   - BAD-DAY MODE: the absolute minimum to keep the chain alive (e.g. 1 push-up, read 1 sentence).
3. VALID JSON ONLY.

REQUIRED JSON OUTPUT:
{
  "system_title": "creative ritual name",
  "description": "short explanation of why it works",
  "frequency": "daily",
  "time_of_day": "morning",
  "micro_actions": [
    {
      "action_ideal": "full action (e.g. Run 5km)",
      "action_bad_day": "survival action (e.g. Put on running shoes and walk 5min)",
      "duration_minutes": 30
    }
  ]
}`

const insightSystemPrompt = "You are a Kaizen coach specialized in habit formation. " +
	"Act like a gentle stoic trainer: praise consistency where it exists, suggest making the habit " +
	"ridiculously smaller where there are gaps, and give one practical tip for next week. " +
	"Answer in one short paragraph, three sentences at most."

// InsightFallback is returned whenever the collaborator cannot produce an
// insight. Never surfaced as an error.
const InsightFallback = "Consistency is the key. Keep showing up every day, even if only for the minimum."

const (
	fallbackIdealMinutes  = 20
	fallbackBadDayMinutes = 1
)

// Gateway abstracts the text-generation collaborator behind the engine's
// blueprint contract. Every call makes at most one attempt with a bounded
// timeout; malformed or missing output degrades to a deterministic fallback,
// so the gateway is total and never raises.
type Gateway struct {
	Gen     TextGenerator // nil means the collaborator is unconfigured
	Timeout time.Duration
	Log     *zap.Logger
}

type wireAction struct {
	ActionIdeal     string `json:"action_ideal"`
	ActionBadDay    string `json:"action_bad_day"`
	DurationMinutes int    `json:"duration_minutes"`
}

type wireRitual struct {
	SystemTitle  string       `json:"system_title"`
	Description  string       `json:"description"`
	Frequency    string       `json:"frequency"`
	TimeOfDay    string       `json:"time_of_day"`
	MicroActions []wireAction `json:"micro_actions"`
}

// GenerateRitual produces one System plus its MicroActions for a goal.
func (g *Gateway) GenerateRitual(ctx context.Context, goal, pillar string) ritual.Blueprint {
	fallback := func() ritual.Blueprint {
		metrics.GenerationFallbacks.Inc()
		return FallbackRitual(goal)
	}

	if g.Gen == nil {
		return fallback()
	}

	ctx, cancel := g.bound(ctx)
	defer cancel()

	user := fmt.Sprintf("Create a system for the goal: %q. Pillar: %s.", goal, pillar)
	raw, err := g.Gen.Generate(ctx, ritualSystemPrompt, user)
	if err != nil {
		g.Log.Warn("ritual_generation_failed", zap.Error(err))
		return fallback()
	}

	bp, err := parseRitual(raw)
	if err != nil {
		g.Log.Warn("ritual_generation_invalid", zap.Error(err))
		return fallback()
	}
	return bp
}

// WeeklyInsight turns the 7-day stats series into a short coaching paragraph.
// Best effort: any failure yields the static encouragement string.
func (g *Gateway) WeeklyInsight(ctx context.Context, stats []ritual.DayCount) string {
	if g.Gen == nil {
		return InsightFallback
	}

	ctx, cancel := g.bound(ctx)
	defer cancel()

	data, err := json.Marshal(stats)
	if err != nil {
		return InsightFallback
	}
	user := fmt.Sprintf("Analyze this user's weekly ritual performance (completions per day): %s", data)

	out, err := g.Gen.Generate(ctx, insightSystemPrompt, user)
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			g.Log.Warn("insight_generation_failed", zap.Error(err))
		}
		return InsightFallback
	}
	return strings.TrimSpace(out)
}

func (g *Gateway) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func parseRitual(raw string) (ritual.Blueprint, error) {
	raw = stripFences(raw)

	var w wireRitual
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return ritual.Blueprint{}, fmt.Errorf("decode ritual: %w", err)
	}

	w.SystemTitle = strings.TrimSpace(w.SystemTitle)
	if w.SystemTitle == "" {
		return ritual.Blueprint{}, fmt.Errorf("missing system_title")
	}
	if len(w.MicroActions) == 0 {
		return ritual.Blueprint{}, fmt.Errorf("no micro_actions")
	}

	bp := ritual.Blueprint{
		SystemTitle: w.SystemTitle,
		Description: strings.TrimSpace(w.Description),
		Frequency:   strings.ToLower(strings.TrimSpace(w.Frequency)),
		TimeOfDay:   strings.TrimSpace(w.TimeOfDay),
	}
	if bp.Frequency == "" {
		bp.Frequency = ritual.FrequencyDaily
	}

	for _, a := range w.MicroActions {
		a.ActionIdeal = strings.TrimSpace(a.ActionIdeal)
		a.ActionBadDay = strings.TrimSpace(a.ActionBadDay)
		if a.ActionIdeal == "" || a.ActionBadDay == "" {
			return ritual.Blueprint{}, fmt.Errorf("micro action missing a variant")
		}
		if a.DurationMinutes <= 0 {
			return ritual.Blueprint{}, fmt.Errorf("non-positive duration_minutes")
		}
		bp.Actions = append(bp.Actions, ritual.ActionSpec{
			ActionIdeal:     a.ActionIdeal,
			ActionBadDay:    a.ActionBadDay,
			DurationMinutes: a.DurationMinutes,
		})
	}
	return bp, nil
}

// FallbackRitual is the deterministic substitute used whenever the
// collaborator is unavailable or returns a malformed structure: a single
// system with one action, a 20-minute ideal variant referencing the goal and
// a 1-minute bad-day variant.
func FallbackRitual(goal string) ritual.Blueprint {
	goal = strings.TrimSpace(goal)
	return ritual.Blueprint{
		SystemTitle: fmt.Sprintf("Ritual for %s", goal),
		Description: "Automatically generated starter system.",
		Frequency:   ritual.FrequencyDaily,
		TimeOfDay:   "morning",
		Actions: []ritual.ActionSpec{
			{
				ActionIdeal:     fmt.Sprintf("Spend %d focused minutes on: %s", fallbackIdealMinutes, goal),
				ActionBadDay:    fmt.Sprintf("Spend %d minute on: %s", fallbackBadDayMinutes, goal),
				DurationMinutes: fallbackIdealMinutes,
			},
		},
	}
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
