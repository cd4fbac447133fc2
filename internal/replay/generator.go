package replay

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/momentum/internal/domain/momentum"
)

// matchMinutes is the span synthetic events are spread over.
const matchMinutes = 94

// eventWeights sets how often each event type appears in a synthetic match.
// Goals and cards are rare; build-up play is common.
var eventWeights = []struct {
	name   string
	weight int
}{
	{"possession_sequence", 14},
	{"key_pass", 12},
	{"tackle", 10},
	{"interception", 9},
	{"successful_dribble", 8},
	{"high_press_sequence", 7},
	{"corner", 6},
	{"missed_chance", 6},
	{"shot_on_target", 6},
	{"save", 5},
	{"counter_attack", 4},
	{"crowd_surge", 3},
	{"referee_decision", 2},
	{"yellow_card", 2},
	{"goal", 2},
	{"red_card", 1},
	{"tactical_substitution", 1},
	{"formation_change", 1},
	{"injury", 1},
	{"var_review", 1},
}

// Generate builds a synthetic match of n events. The same seed always yields
// the same script, ids included.
func Generate(n int, seed int64) *Script {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data, not security sensitive

	cfg := momentum.DefaultInitConfig()
	cfg.HomeStrength = 0.3 + rng.Float64()*0.5
	cfg.AwayStrength = 0.3 + rng.Float64()*0.5
	cfg.Importance = rng.Float64()
	cfg.CrowdFactor = rng.Float64()
	cfg.WeatherFactor = rng.Float64() * 0.5

	total := 0
	for _, w := range eventWeights {
		total += w.weight
	}
	// Stronger sides see more of the ball.
	homeShare := 0.5 + (cfg.HomeStrength-cfg.AwayStrength)/2

	s := &Script{
		MatchID: mustUUID(rng),
		Config:  cfg,
		Events:  make([]ScriptEvent, n),
	}
	minutes := make([]int, n)
	for i := range minutes {
		minutes[i] = rng.Intn(matchMinutes + 1)
	}
	sort.Ints(minutes)

	for i := 0; i < n; i++ {
		side := string(momentum.Away)
		if rng.Float64() < homeShare {
			side = string(momentum.Home)
		}
		s.Events[i] = ScriptEvent{
			ID:     mustUUID(rng),
			Type:   pickType(rng, total),
			Side:   side,
			Minute: minutes[i],
		}
	}
	return s
}

func pickType(rng *rand.Rand, total int) string {
	r := rng.Intn(total)
	for _, w := range eventWeights {
		if r < w.weight {
			return w.name
		}
		r -= w.weight
	}
	return eventWeights[0].name
}

// mustUUID draws a random UUID from rng. Reading from a math/rand source
// cannot fail.
func mustUUID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
