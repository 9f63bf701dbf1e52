package source_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/okian/puddin/internal/adapters/cache"
	"github.com/okian/puddin/internal/adapters/source"
	"github.com/okian/puddin/pkg/logger"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

// countingSource serves fixed bytes and counts fetches.
type countingSource struct {
	body  string
	calls int
	err   error
}

func (s *countingSource) Kind() string { return "fake" }

func (s *countingSource) Fetch(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.body), nil
}

// rootedSource is a countingSource served from a named root.
type rootedSource struct {
	countingSource
	root string
}

func (s *rootedSource) Root() string { return s.root }

func TestCached(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Convey("Given an origin fronted by redis", t, func() {
		mr, err := miniredis.Run()
		So(err, ShouldBeNil)
		defer mr.Close()

		rc := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		origin := &countingSource{body: "Team,ORtg\n"}
		c := source.NewCached(origin, rc, time.Minute)
		ctx := context.Background()

		Convey("When the same file is fetched twice", func() {
			first, err1 := c.Fetch(ctx, "NBA.csv")
			second, err2 := c.Fetch(ctx, "NBA.csv")

			Convey("Then the origin is hit once", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(string(second), ShouldEqual, string(first))
				So(origin.calls, ShouldEqual, 1)
				So(c.Kind(), ShouldEqual, "fake")
			})
		})

		Convey("When the cache is bypassed", func() {
			_, _ = c.Fetch(ctx, "NBA.csv")
			origin.body = "Team,ORtg\nBoston Celtics,122.2\n"
			b, err := c.Fetch(source.BypassCache(ctx), "NBA.csv")

			Convey("Then the origin is refetched and the cache overwritten", func() {
				So(err, ShouldBeNil)
				So(origin.calls, ShouldEqual, 2)
				again, _ := c.Fetch(ctx, "NBA.csv")
				So(string(again), ShouldEqual, string(b))
				So(origin.calls, ShouldEqual, 2)
			})
		})

		Convey("When the backend is repointed within the ttl", func() {
			oldOrigin := &rootedSource{countingSource: countingSource{body: "Team,ORtg\nOld,1\n"}, root: "http://old-sync:8000"}
			newOrigin := &rootedSource{countingSource: countingSource{body: "Team,ORtg\nNew,2\n"}, root: "http://new-sync:8000"}
			_, err := source.NewCached(oldOrigin, rc, time.Minute).Fetch(ctx, "NBA.csv")
			So(err, ShouldBeNil)

			b, err := source.NewCached(newOrigin, rc, time.Minute).Fetch(ctx, "NBA.csv")

			Convey("Then the new backend is fetched instead of the old bytes", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "Team,ORtg\nNew,2\n")
				So(newOrigin.calls, ShouldEqual, 1)
				So(len(mr.Keys()), ShouldEqual, 2)
			})
		})

		Convey("When redis is down", func() {
			mr.Close()
			b, err := c.Fetch(ctx, "NBA.csv")

			Convey("Then the origin still serves the file", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "Team,ORtg\n")
			})
		})

		Convey("When the origin fails", func() {
			origin.err = source.ErrNotFound
			_, err := c.Fetch(ctx, "NFL.csv")

			Convey("Then the error is returned and nothing is cached", func() {
				So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
				So(len(mr.Keys()), ShouldEqual, 0)
			})
		})
	})
}
