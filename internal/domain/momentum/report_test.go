package momentum

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSummarize(t *testing.T) {
	reg := DefaultRegistry()

	Convey("Given four snapshots with home ahead twice, away once and one tie", t, func() {
		snaps := series(
			[2]float64{0.55, 0.45},
			[2]float64{0.45, 0.55},
			[2]float64{0.55, 0.45},
			[2]float64{0.5, 0.5},
		)
		shifts := []MomentumShift{
			{Type: ShiftSwitch, Minute: 2},
			{Type: ShiftSwitch, Minute: 3},
			{Type: ShiftAmplification, Minute: 4},
		}
		r := Summarize(reg, snaps, shifts, nil, nil)

		Convey("Then volatility is the mean absolute step over both sides", func() {
			// steps per side: 0.1, 0.1, 0.05
			So(r.Volatility, ShouldAlmostEqual, 0.5/6, 1e-9)
			So(r.VolatilityIndex, ShouldAlmostEqual, 5.0/6, 1e-9)
		})

		Convey("Then dominance time counts snapshots led by each side", func() {
			So(r.DominanceSnapshots, ShouldResemble, Tally{Home: 2, Away: 1})
			So(r.DominanceTime.Home, ShouldAlmostEqual, 50, 1e-9)
			So(r.DominanceTime.Away, ShouldAlmostEqual, 25, 1e-9)
		})

		Convey("Then averages pick the dominant side", func() {
			So(r.Average.Home, ShouldAlmostEqual, 0.5125, 1e-9)
			So(r.Average.Away, ShouldAlmostEqual, 0.4875, 1e-9)
			So(r.DominantSide, ShouldEqual, Home)
			So(r.DominancePercentage, ShouldAlmostEqual, 51.25, 1e-9)
			So(r.Final, ShouldResemble, SidePair{Home: 0.5, Away: 0.5})
		})

		Convey("Then shifts are counted by type", func() {
			So(r.ShiftCount, ShouldEqual, 3)
			So(r.ShiftsByType[ShiftSwitch], ShouldEqual, 2)
			So(r.ShiftsByType[ShiftAmplification], ShouldEqual, 1)
		})
	})

	Convey("Given wild swings", t, func() {
		r := Summarize(reg, series([2]float64{0.1, 0.9}, [2]float64{0.9, 0.1}), nil, nil, nil)

		Convey("Then the volatility index saturates at 1", func() {
			So(r.Volatility, ShouldAlmostEqual, 0.8, 1e-9)
			So(r.VolatilityIndex, ShouldEqual, 1.0)
		})
	})

	Convey("Given a single snapshot", t, func() {
		r := Summarize(reg, series(homeLead()), nil, nil, nil)

		Convey("Then volatility is zero and home held all the time", func() {
			So(r.Volatility, ShouldEqual, 0)
			So(r.VolatilityIndex, ShouldEqual, 0)
			So(r.DominanceTime.Home, ShouldEqual, 100)
		})
	})

	Convey("Given no snapshots", t, func() {
		r := Summarize(reg, nil, nil, nil, nil)

		Convey("Then the report is flagged as insufficient rather than failing", func() {
			So(r.InsufficientData, ShouldBeTrue)
			So(r.DominantSide, ShouldEqual, NoSide)
			So(r.Snapshots, ShouldEqual, 0)
			So(r.ShiftsByType[ShiftSwitch], ShouldEqual, 0)
		})
	})
}
