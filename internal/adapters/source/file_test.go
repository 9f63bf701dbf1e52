package source_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/puddin/internal/adapters/source"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileSource(t *testing.T) {
	Convey("Given a directory of synced files", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "NHL.csv"), []byte("Team,GF/GP\n"), 0o600), ShouldBeNil)
		src := source.NewFileSource(dir)

		Convey("Then existing files are read", func() {
			b, err := src.Fetch(context.Background(), "NHL.csv")
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "Team,GF/GP\n")
			So(src.Kind(), ShouldEqual, "file")
			So(src.Root(), ShouldEqual, dir)
		})

		Convey("And missing files are reported as not found", func() {
			_, err := src.Fetch(context.Background(), "NFL.csv")
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})

		Convey("And traversal is refused", func() {
			_, err := src.Fetch(context.Background(), "../NHL.csv")
			So(errors.Is(err, source.ErrInvalidName), ShouldBeTrue)
			_, err = src.Fetch(context.Background(), " ")
			So(errors.Is(err, source.ErrInvalidName), ShouldBeTrue)
		})

		Convey("And a cancelled context stops the read", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := src.Fetch(ctx, "NHL.csv")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
