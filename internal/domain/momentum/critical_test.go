package momentum

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// flatWith returns n level snapshots, one per minute, with the given minutes
// overridden.
func flatWith(n int, at map[int][2]float64) []Snapshot {
	pairs := make([][2]float64, n)
	for i := range pairs {
		pairs[i] = [2]float64{0.5, 0.5}
		if p, ok := at[i+1]; ok {
			pairs[i] = p
		}
	}
	return series(pairs...)
}

// swings makes minutes 1 to 5 alternate between 0.2 and 0.8.
func swings() map[int][2]float64 {
	return map[int][2]float64{
		1: {0.2, 0.8}, 2: {0.8, 0.2}, 3: {0.2, 0.8}, 4: {0.8, 0.2}, 5: {0.2, 0.8},
	}
}

func TestDominantPeriods(t *testing.T) {
	Convey("Given home leading by 0.3 from minute 3 to 8 and away briefly from 10", t, func() {
		win := series(
			homeLead(), homeLead(),
			[2]float64{0.7, 0.4}, [2]float64{0.7, 0.4}, [2]float64{0.7, 0.4},
			[2]float64{0.7, 0.4}, [2]float64{0.7, 0.4}, [2]float64{0.7, 0.4},
			awayLead(),
			[2]float64{0.3, 0.7}, [2]float64{0.3, 0.7}, [2]float64{0.3, 0.7}, [2]float64{0.3, 0.7},
		)

		Convey("Then only the six-minute home run is kept", func() {
			got := dominantPeriods(win)
			So(got, ShouldHaveLength, 1)
			So(got[0].Type, ShouldEqual, MomentDominantPeriod)
			So(got[0].Side, ShouldEqual, Home)
			So(got[0].Minute, ShouldEqual, 3)
			So(got[0].EndMinute, ShouldEqual, 8)
			So(got[0].Magnitude, ShouldAlmostEqual, 0.3, 1e-9)
			So(got[0].Significance, ShouldAlmostEqual, 0.3*6/20, 1e-9)
		})
	})

	Convey("Given dominance changing hands without a neutral gap", t, func() {
		h, a := [2]float64{0.8, 0.4}, [2]float64{0.4, 0.8}
		win := series(h, h, h, h, h, a, a, a, a, a)

		Convey("Then each side gets its own five-minute period", func() {
			got := dominantPeriods(win)
			So(got, ShouldHaveLength, 2)
			So(got[0].Side, ShouldEqual, Home)
			So(got[0].Minute, ShouldEqual, 1)
			So(got[0].EndMinute, ShouldEqual, 5)
			So(got[1].Side, ShouldEqual, Away)
			So(got[1].Minute, ShouldEqual, 6)
			So(got[1].EndMinute, ShouldEqual, 10)
			So(got[1].Magnitude, ShouldAlmostEqual, 0.4, 1e-9)
		})
	})

	Convey("Given a lead of exactly 0.25", t, func() {
		l := [2]float64{0.625, 0.375}
		win := series(l, l, l, l, l, l)

		Convey("Then it does not count as dominance", func() {
			So(dominantPeriods(win), ShouldBeEmpty)
		})
	})
}

func TestVolatilePhases(t *testing.T) {
	Convey("Given swings in minutes 1 to 5 and a spike at minute 14", t, func() {
		at := swings()
		at[14] = [2]float64{0.2, 0.8}
		snaps := flatWith(20, at)

		Convey("Then the windows merge into one phase since they are within two minutes", func() {
			got := volatilePhases(snaps, nil)
			So(got, ShouldHaveLength, 1)
			So(got[0].Type, ShouldEqual, MomentVolatilePhase)
			So(got[0].Side, ShouldEqual, Both)
			So(got[0].Minute, ShouldEqual, 1)
			So(got[0].EndMinute, ShouldEqual, 18)
			So(got[0].Magnitude, ShouldBeGreaterThan, 0.58)
			So(got[0].Significance, ShouldEqual, 1.0)
		})
	})

	Convey("Given swings in minutes 1 to 5 and a spike at minute 16", t, func() {
		at := swings()
		at[16] = [2]float64{0.2, 0.8}
		snaps := flatWith(20, at)

		Convey("Then two separate phases are reported", func() {
			got := volatilePhases(snaps, nil)
			So(got, ShouldHaveLength, 2)
			So(got[0].Minute, ShouldEqual, 1)
			So(got[0].EndMinute, ShouldEqual, 9)
			So(got[1].Minute, ShouldEqual, 12)
			So(got[1].EndMinute, ShouldEqual, 20)
			// one 0.3 outlier in five gives sigma 0.12 per side
			So(got[1].Magnitude, ShouldAlmostEqual, 0.24, 1e-9)
		})
	})

	Convey("Given fewer than ten snapshots", t, func() {
		snaps := flatWith(9, swings())

		Convey("Then no volatile phase is reported", func() {
			So(volatilePhases(snaps, nil), ShouldBeEmpty)
		})
	})

	Convey("Given shifts around the major transition threshold", t, func() {
		shifts := []MomentumShift{
			{Type: ShiftSwitch, Minute: 1, ToSide: Home, Magnitude: 0.4},
			{Type: ShiftSwitch, Minute: 30, ToSide: Away, Magnitude: 0.35},
			{Type: ShiftAmplification, Minute: 60, ToSide: Away, Magnitude: 0.5},
		}

		Convey("Then only shifts above 0.35 become transitions spanning two minutes either side", func() {
			got := volatilePhases(nil, shifts)
			So(got, ShouldHaveLength, 2)
			So(got[0].Type, ShouldEqual, MomentMajorTransition)
			So(got[0].Minute, ShouldEqual, 0)
			So(got[0].EndMinute, ShouldEqual, 3)
			So(got[0].Side, ShouldEqual, Home)
			So(got[0].Significance, ShouldAlmostEqual, 0.6, 1e-9)
			So(got[1].Minute, ShouldEqual, 58)
			So(got[1].EndMinute, ShouldEqual, 62)
			So(got[1].Significance, ShouldEqual, 0.75)
		})
	})
}

func TestFindCriticalMoments(t *testing.T) {
	Convey("Given fewer than five snapshots", t, func() {
		cm := FindCriticalMoments(flatWith(4, nil), nil, nil)

		Convey("Then no moments are returned and a warning is raised", func() {
			So(cm.Moments, ShouldBeEmpty)
			So(cm.MostCritical, ShouldBeNil)
			So(cm.Warnings, ShouldHaveLength, 1)
			So(cm.Warnings[0].Code, ShouldEqual, WarnInsufficientHistory)
		})
	})

	Convey("Given a large shift and two momentum goals", t, func() {
		shifts := []MomentumShift{{Type: ShiftSwitch, Minute: 2, FromSide: Home, ToSide: Away, Magnitude: 0.3, TriggeredBy: EventGoal}}
		goals := []MomentumGoal{{Minute: 4, Side: Home, Momentum: 0.75}, {Minute: 6, Side: Home, Momentum: 0.8}}
		cm := FindCriticalMoments(flatWith(6, nil), shifts, goals)

		Convey("Then moments within three minutes of a kept one are dropped", func() {
			So(cm.Moments, ShouldHaveLength, 2)
			So(cm.Moments[0].Type, ShouldEqual, MomentShift)
			So(cm.Moments[0].Minute, ShouldEqual, 2)
			So(*cm.Moments[0].TriggeredBy, ShouldEqual, EventGoal)
			So(cm.Moments[0].Significance, ShouldAlmostEqual, 0.45, 1e-9)
			So(cm.Moments[1].Type, ShouldEqual, MomentMomentumGoal)
			So(cm.Moments[1].Minute, ShouldEqual, 6)
		})

		Convey("Then the most critical is the most significant", func() {
			So(cm.MostCritical, ShouldNotBeNil)
			So(cm.MostCritical.Type, ShouldEqual, MomentMomentumGoal)
			So(cm.MostCritical.Significance, ShouldEqual, 0.8)
		})
	})
}
