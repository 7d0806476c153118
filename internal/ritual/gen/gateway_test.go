package gen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ritualos/internal/ritual"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGen struct {
	out string
	err error
}

func (f fakeGen) Generate(ctx context.Context, system, user string) (string, error) {
	return f.out, f.err
}

func newGateway(g TextGenerator) *Gateway {
	return &Gateway{Gen: g, Timeout: time.Second, Log: zap.NewNop()}
}

func requireFallback(t *testing.T, bp ritual.Blueprint, goal string) {
	t.Helper()
	require.Len(t, bp.Actions, 1)
	a := bp.Actions[0]
	require.Contains(t, a.ActionIdeal, goal)
	require.NotEmpty(t, a.ActionBadDay)
	require.Contains(t, a.ActionBadDay, "1 minute")
	require.Equal(t, 20, a.DurationMinutes)
	require.Equal(t, ritual.FrequencyDaily, bp.Frequency)
	require.NotEmpty(t, bp.SystemTitle)
}

func TestGenerateRitualNoCollaborator(t *testing.T) {
	bp := newGateway(nil).GenerateRitual(context.Background(), "Run 5km", "health")
	requireFallback(t, bp, "Run 5km")
}

func TestGenerateRitualCollaboratorError(t *testing.T) {
	g := newGateway(fakeGen{err: errors.New("unreachable")})
	bp := g.GenerateRitual(context.Background(), "Run 5km", "health")
	requireFallback(t, bp, "Run 5km")
}

func TestGenerateRitualGarbageResponse(t *testing.T) {
	for _, out := range []string{"", "not json at all", `{"system_title": 12`} {
		g := newGateway(fakeGen{out: out})
		bp := g.GenerateRitual(context.Background(), "Run 5km", "health")
		requireFallback(t, bp, "Run 5km")
	}
}

func TestGenerateRitualMissingFields(t *testing.T) {
	cases := map[string]string{
		"no title":       `{"system_title":"","micro_actions":[{"action_ideal":"a","action_bad_day":"b","duration_minutes":5}]}`,
		"no actions":     `{"system_title":"T","micro_actions":[]}`,
		"missing badday": `{"system_title":"T","micro_actions":[{"action_ideal":"a","action_bad_day":"","duration_minutes":5}]}`,
		"zero duration":  `{"system_title":"T","micro_actions":[{"action_ideal":"a","action_bad_day":"b","duration_minutes":0}]}`,
	}
	for name, out := range cases {
		t.Run(name, func(t *testing.T) {
			g := newGateway(fakeGen{out: out})
			bp := g.GenerateRitual(context.Background(), "Run 5km", "health")
			requireFallback(t, bp, "Run 5km")
		})
	}
}

func TestGenerateRitualValidResponse(t *testing.T) {
	out := "```json\n" + `{
		"system_title": "  Dawn Runner Protocol ",
		"description": "Momentum before willpower runs out.",
		"frequency": "",
		"time_of_day": "morning",
		"micro_actions": [
			{"action_ideal": "Run 5km", "action_bad_day": "Put on shoes, walk 5min", "duration_minutes": 30},
			{"action_ideal": "Stretch", "action_bad_day": "Touch toes once", "duration_minutes": 10}
		]
	}` + "\n```"

	g := newGateway(fakeGen{out: out})
	bp := g.GenerateRitual(context.Background(), "Run 5km", "health")

	require.Equal(t, "Dawn Runner Protocol", bp.SystemTitle)
	require.Equal(t, ritual.FrequencyDaily, bp.Frequency) // empty frequency defaults
	require.Len(t, bp.Actions, 2)
	require.Equal(t, "Put on shoes, walk 5min", bp.Actions[0].ActionBadDay)
	require.Equal(t, 30, bp.Actions[0].DurationMinutes)
}

func TestFallbackRitualDeterministic(t *testing.T) {
	a := FallbackRitual("Run 5km")
	b := FallbackRitual("Run 5km")
	require.Equal(t, a, b)
	requireFallback(t, a, "Run 5km")
}

func TestWeeklyInsight(t *testing.T) {
	stats := []ritual.DayCount{{Date: "2026-08-28", Count: 2}}

	t.Run("no collaborator", func(t *testing.T) {
		require.Equal(t, InsightFallback, newGateway(nil).WeeklyInsight(context.Background(), stats))
	})

	t.Run("collaborator error", func(t *testing.T) {
		g := newGateway(fakeGen{err: errors.New("timeout")})
		require.Equal(t, InsightFallback, g.WeeklyInsight(context.Background(), stats))
	})

	t.Run("blank response", func(t *testing.T) {
		g := newGateway(fakeGen{out: "   \n"})
		require.Equal(t, InsightFallback, g.WeeklyInsight(context.Background(), stats))
	})

	t.Run("valid response is trimmed", func(t *testing.T) {
		g := newGateway(fakeGen{out: "  Keep going, two completions is momentum.  "})
		got := g.WeeklyInsight(context.Background(), stats)
		require.Equal(t, "Keep going, two completions is momentum.", got)
		require.False(t, strings.HasPrefix(got, " "))
	})
}
