package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/okian/puddin/internal/adapters/source"
	"github.com/okian/puddin/internal/domain/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPostgresLoader(t *testing.T) {
	Convey("Given a postgres table of stats", t, func() {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		So(err, ShouldBeNil)
		defer func() { _ = db.Close() }()

		l := source.NewPostgresLoader(db)
		ref := dataset.Ref{Sport: "MLB", Locator: "MLB_6_stats_summary.xlsx"}

		Convey("When rows come back", func() {
			rows := sqlmock.NewRows([]string{"Team", "wOBA", "xFIP", "Barrel %"}).
				AddRow("New York Yankees", []byte(".341"), 3.78, int64(10)).
				AddRow("Boston Red Sox", ".322", nil, 8.9)
			mock.ExpectQuery(`SELECT * FROM "MLB_6_stats_summary"`).WillReturnRows(rows)

			ds, err := l.LoadDataset(context.Background(), ref)

			Convey("Then each row becomes a record", func() {
				So(err, ShouldBeNil)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
				So(ds.Name, ShouldEqual, "MLB_6_stats_summary.xlsx")
				So(ds.Columns, ShouldResemble, []string{"Team", "wOBA", "xFIP", "Barrel %"})
				So(ds.Len(), ShouldEqual, 2)
				So(ds.Records[0]["wOBA"], ShouldEqual, ".341")
				So(ds.Records[0]["Barrel %"], ShouldEqual, int64(10))
			})

			Convey("And NULL cells are left out", func() {
				_, ok := ds.Records[1]["xFIP"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the table is empty", func() {
			mock.ExpectQuery(`SELECT * FROM "MLB_6_stats_summary"`).
				WillReturnRows(sqlmock.NewRows([]string{"Team"}))
			_, err := l.LoadDataset(context.Background(), ref)
			So(errors.Is(err, source.ErrEmptyTable), ShouldBeTrue)
		})

		Convey("When the query fails", func() {
			mock.ExpectQuery(`SELECT * FROM "MLB_6_stats_summary"`).WillReturnError(errors.New("relation does not exist"))
			_, err := l.LoadDataset(context.Background(), ref)
			So(errors.Is(err, source.ErrFetchFailed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "relation does not exist")
		})

		Convey("When the locator quotes oddly", func() {
			mock.ExpectQuery(`SELECT * FROM "nba""; drop"`).
				WillReturnRows(sqlmock.NewRows([]string{"Team"}).AddRow("Boston Celtics"))
			ds, err := l.LoadDataset(context.Background(), dataset.Ref{Sport: "NBA", Locator: `nba"; drop`})

			Convey("Then the identifier is quoted, not interpolated", func() {
				So(err, ShouldBeNil)
				So(ds.Len(), ShouldEqual, 1)
			})
		})
	})
}
