package momentum

import "sort"

const (
	triggerRise       = 0.15
	minTriggerEvents  = 5
	triggerSaturation = 3
)

// TriggerStat ranks one event type by the momentum rises it produced.
type TriggerStat struct {
	EventType     EventType `json:"event_type"`
	AverageImpact float64   `json:"average_impact"`
	Frequency     int       `json:"frequency"`
	Effectiveness float64   `json:"effectiveness"`
}

// TriggerReport holds ranked triggers per analysed side.
type TriggerReport struct {
	Side     Side                   `json:"side"`
	Triggers map[Side][]TriggerStat `json:"triggers"`
	Warnings []Warning              `json:"warnings,omitempty"`
}

// RankTriggers attributes every rise above 0.15 in side's global momentum
// to the event that produced it, when that event belongs to side.
// Effectiveness is the average rise scaled by min(1, frequency/3).
func RankTriggers(snaps []Snapshot, side Side) []TriggerStat {
	rises := make(map[EventType][]float64)
	for i := 1; i < len(snaps); i++ {
		curr := snaps[i]
		if curr.Trigger.Side != side {
			continue
		}
		rise := curr.Global.For(side) - snaps[i-1].Global.For(side)
		if rise > triggerRise {
			rises[curr.Trigger.Type] = append(rises[curr.Trigger.Type], rise)
		}
	}

	out := make([]TriggerStat, 0, len(rises))
	for t := EventUnknown; t < eventTypeCount; t++ {
		vals, ok := rises[t]
		if !ok {
			continue
		}
		var sum float64
		for _, v := range vals {
			sum += v
		}
		avg := sum / float64(len(vals))
		sat := float64(len(vals)) / triggerSaturation
		if sat > 1 {
			sat = 1
		}
		out = append(out, TriggerStat{
			EventType:     t,
			AverageImpact: avg,
			Frequency:     len(vals),
			Effectiveness: avg * sat,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Effectiveness > out[j].Effectiveness })
	return out
}
