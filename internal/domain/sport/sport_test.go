package sport_test

import (
	"errors"
	"testing"

	"github.com/okian/puddin/internal/domain/sport"
	"github.com/okian/puddin/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver_Resolve(t *testing.T) {
	Convey("Given a resolver with the built-in sports", t, func() {
		r, err := sport.NewResolver(nil)
		So(err, ShouldBeNil)

		Convey("Then every supported sport resolves to a non-empty field set", func() {
			for _, d := range r.Supported() {
				got, err := r.Resolve(string(d.Tag))
				So(err, ShouldBeNil)
				So(len(got.Fields), ShouldBeGreaterThan, 0)
				So(got.Dataset, ShouldNotBeEmpty)
				So(got.TeamColumn, ShouldNotBeEmpty)
			}
		})

		Convey("When resolving MLB", func() {
			d, err := r.Resolve("MLB")

			Convey("Then it uses the MLB summary dataset and fields in order", func() {
				So(err, ShouldBeNil)
				So(d.Dataset, ShouldEqual, "MLB_6_stats_summary.xlsx")
				So([]string(d.Fields), ShouldResemble, []string{"wOBA", "xFIP", "Barrel %"})
			})
		})

		Convey("When the tag differs in case and spacing", func() {
			d, err := r.Resolve("  nhl ")

			Convey("Then it still resolves", func() {
				So(err, ShouldBeNil)
				So(d.Tag, ShouldEqual, sport.NHL)
			})
		})

		Convey("When resolving an unsupported sport", func() {
			_, err := r.Resolve("XFL")

			Convey("Then it fails with UnsupportedSport", func() {
				So(errors.Is(err, types.ErrUnsupportedSport), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "XFL")
			})
		})

		Convey("When the sport is blank", func() {
			_, err := r.Resolve("   ")

			Convey("Then it fails with InvalidInput", func() {
				So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When a caller mutates a returned field set", func() {
			d, _ := r.Resolve("MLB")
			d.Fields[0] = "changed"
			again, _ := r.Resolve("MLB")

			Convey("Then the resolver is unaffected", func() {
				So(again.Fields[0], ShouldEqual, "wOBA")
			})
		})
	})
}

func TestNewResolver_Overrides(t *testing.T) {
	Convey("Given dataset overrides", t, func() {
		Convey("When the override names a supported sport", func() {
			r, err := sport.NewResolver(map[string]string{"mlb": "mlb_stats"})
			So(err, ShouldBeNil)
			d, err := r.Resolve("MLB")

			Convey("Then the locator replaces the default dataset", func() {
				So(err, ShouldBeNil)
				So(d.Dataset, ShouldEqual, "mlb_stats")
			})
		})

		Convey("When the override names an unknown sport", func() {
			_, err := sport.NewResolver(map[string]string{"XFL": "xfl.csv"})

			Convey("Then construction fails", func() {
				So(errors.Is(err, types.ErrUnsupportedSport), ShouldBeTrue)
			})
		})

		Convey("When two override keys name the same sport", func() {
			_, err := sport.NewResolver(map[string]string{"mlb": "a.csv", "MLB": "b.csv"})

			Convey("Then construction fails instead of picking one", func() {
				So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "MLB")
			})
		})

		Convey("When the override locator is empty", func() {
			_, err := sport.NewResolver(map[string]string{"NBA": " "})

			Convey("Then construction fails", func() {
				So(errors.Is(err, types.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}
