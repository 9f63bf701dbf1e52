package matcher_test

import (
	"errors"
	"testing"

	"github.com/okian/puddin/internal/domain/dataset"
	"github.com/okian/puddin/internal/domain/matcher"
	"github.com/okian/puddin/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var mlbFields = []string{"wOBA", "xFIP", "Barrel %"}

func mlbDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Name:    "MLB_6_stats_summary.xlsx",
		Sport:   "MLB",
		Columns: []string{"Team", "wOBA", "xFIP", "Barrel %"},
		Records: []dataset.Record{
			{"Team": "New York Yankees", "wOBA": ".341", "xFIP": "3.78", "Barrel %": "10.5"},
			{"Team": "Boston Red Sox", "wOBA": ".322", "xFIP": "4.01", "Barrel %": "8.9"},
			{"Team": "Chicago White Sox", "wOBA": 0.298, "xFIP": 4.52, "Barrel %": int64(7)},
			{"Team": "New York Mets", "wOBA": ".315", "xFIP": "3.95"},
		},
	}
}

func TestFind(t *testing.T) {
	Convey("Given an MLB dataset", t, func() {
		ds := mlbDataset()

		Convey("When the fragment matches one team", func() {
			m := matcher.Find(ds, "Team", "Yankees")

			Convey("Then the match is unique", func() {
				So(m.Status, ShouldEqual, matcher.Unique)
				So(len(m.Candidates), ShouldEqual, 1)
				So(m.Candidates[0].Row, ShouldEqual, 0)
			})
		})

		Convey("When the fragment differs only in case", func() {
			lower := matcher.Find(ds, "Team", "red sox")
			upper := matcher.Find(ds, "Team", "RED SOX")

			Convey("Then both find the same record", func() {
				So(lower.Status, ShouldEqual, matcher.Unique)
				So(upper.Candidates, ShouldResemble, lower.Candidates)
			})
		})

		Convey("When the fragment matches several teams", func() {
			m := matcher.Find(ds, "Team", "sox")

			Convey("Then the match is ambiguous and keeps dataset order", func() {
				So(m.Status, ShouldEqual, matcher.Ambiguous)
				So(len(m.Candidates), ShouldEqual, 2)
				So(m.Candidates[0].Record["Team"], ShouldEqual, "Boston Red Sox")
				So(m.Candidates[1].Record["Team"], ShouldEqual, "Chicago White Sox")
			})
		})

		Convey("When nothing matches", func() {
			m := matcher.Find(ds, "Team", "Dodgers")

			Convey("Then the match is not found", func() {
				So(m.Status, ShouldEqual, matcher.NotFound)
				So(m.Candidates, ShouldBeEmpty)
			})
		})

		Convey("When the fragment is blank", func() {
			m := matcher.Find(ds, "Team", "   ")

			Convey("Then nothing matches", func() {
				So(m.Status, ShouldEqual, matcher.NotFound)
			})
		})

		Convey("When matching twice with the same input", func() {
			first, _, err1 := matcher.Lookup(ds, "Team", "yankees", mlbFields, matcher.FirstMatch)
			second, _, err2 := matcher.Lookup(ds, "Team", "yankees", mlbFields, matcher.FirstMatch)

			Convey("Then the results are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestSelect(t *testing.T) {
	Convey("Given an ambiguous match", t, func() {
		ds := mlbDataset()
		m := matcher.Find(ds, "Team", "sox")

		Convey("When the policy is first match", func() {
			c, err := matcher.Select(m, "Team", matcher.FirstMatch)

			Convey("Then the first record in dataset order is chosen", func() {
				So(err, ShouldBeNil)
				So(c.Record["Team"], ShouldEqual, "Boston Red Sox")
			})
		})

		Convey("When the policy rejects ambiguity", func() {
			_, err := matcher.Select(m, "Team", matcher.RejectAmbiguous)

			Convey("Then it fails with AmbiguousTeam naming the candidates", func() {
				So(errors.Is(err, types.ErrAmbiguousTeam), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Boston Red Sox")
				So(err.Error(), ShouldContainSubstring, "Chicago White Sox")
			})
		})
	})

	Convey("Given a match with no candidates", t, func() {
		m := matcher.Find(mlbDataset(), "Team", "Dodgers")
		_, err := matcher.Select(m, "Team", matcher.FirstMatch)

		Convey("Then it fails with TeamNotFound", func() {
			So(errors.Is(err, types.ErrTeamNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Dodgers")
		})
	})
}

func TestExtract(t *testing.T) {
	Convey("Given a matched record", t, func() {
		ds := mlbDataset()

		Convey("When all fields are present", func() {
			res, _, err := matcher.Lookup(ds, "Team", "white sox", mlbFields, matcher.FirstMatch)

			Convey("Then exactly the requested fields come back in order", func() {
				So(err, ShouldBeNil)
				So(res.Team, ShouldEqual, "Chicago White Sox")
				So(len(res.Stats), ShouldEqual, 3)
				So(res.Stats[0].Field, ShouldEqual, "wOBA")
				So(res.Stats[0].Value, ShouldAlmostEqual, 0.298, 1e-9)
				So(res.Stats[2].Field, ShouldEqual, "Barrel %")
				So(res.Stats[2].Value, ShouldEqual, 7.0)
			})
		})

		Convey("When a requested field is missing", func() {
			_, _, err := matcher.Lookup(ds, "Team", "mets", mlbFields, matcher.FirstMatch)

			Convey("Then the request fails as dataset unavailable", func() {
				So(errors.Is(err, types.ErrDatasetUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Barrel %")
			})
		})

		Convey("When a field is not numeric", func() {
			ds.Records[0]["xFIP"] = "n/a"
			_, _, err := matcher.Lookup(ds, "Team", "yankees", mlbFields, matcher.FirstMatch)

			Convey("Then the request fails as dataset unavailable", func() {
				So(errors.Is(err, types.ErrDatasetUnavailable), ShouldBeTrue)
				So(errors.Is(err, dataset.ErrNotNumeric), ShouldBeTrue)
			})
		})
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Given policy names", t, func() {
		p, err := matcher.ParsePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, matcher.FirstMatch)

		p, err = matcher.ParsePolicy(" Reject_Ambiguous ")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, matcher.RejectAmbiguous)

		_, err = matcher.ParsePolicy("random")
		So(err, ShouldNotBeNil)
	})
}
