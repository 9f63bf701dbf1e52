package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/puddin/internal/domain/dataset"
	"github.com/okian/puddin/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errOffline = errors.New("drive sync offline")

// fakeLoader serves in-memory datasets and records every load.
type fakeLoader struct {
	mu    sync.Mutex
	calls []dataset.Ref
	fail  map[string]error
	data  map[string]*dataset.Dataset
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{fail: map[string]error{}, data: fixtureDatasets()}
}

func (f *fakeLoader) LoadDataset(_ context.Context, ref dataset.Ref) (*dataset.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ref)
	if err := f.fail[ref.Sport]; err != nil {
		return nil, err
	}
	ds, ok := f.data[ref.Sport]
	if !ok {
		return nil, errOffline
	}
	out := *ds
	out.Name = ref.Locator
	return &out, nil
}

func (f *fakeLoader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLoader) setFail(sport string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[sport] = err
}

func fixtureDatasets() map[string]*dataset.Dataset {
	return map[string]*dataset.Dataset{
		"MLB": {
			Sport:   "MLB",
			Columns: []string{"Team", "wOBA", "xFIP", "Barrel %"},
			Records: []dataset.Record{
				{"Team": "New York Yankees", "wOBA": ".341", "xFIP": "3.78", "Barrel %": "10.5"},
				{"Team": "Boston Red Sox", "wOBA": ".322", "xFIP": "4.01", "Barrel %": "8.9"},
				{"Team": "Chicago White Sox", "wOBA": ".298", "xFIP": "4.52", "Barrel %": "7.1"},
			},
		},
		"NBA": {
			Sport:   "NBA",
			Columns: []string{"Team", "ORtg", "eFG%", "TS%"},
			Records: []dataset.Record{
				{"Team": "Boston Celtics", "ORtg": 120.0, "eFG%": 57.0, "TS%": 60.0},
				{"Team": "Denver Nuggets", "ORtg": 118.0, "eFG%": 58.0, "TS%": 61.0},
			},
		},
		"NHL": {
			Sport:   "NHL",
			Columns: []string{"Team", "GF/GP", "SV%", "PP%"},
			Records: []dataset.Record{
				{"Team": "Boston Bruins", "GF/GP": "3.4", "SV%": ".912", "PP%": "24%"},
			},
		},
		"NFL": {
			Sport:   "NFL",
			Columns: []string{"Team", "Off EPA/play", "Def EPA/play", "Turnover Diff"},
			Records: []dataset.Record{
				{"Team": "Kansas City Chiefs", "Off EPA/play": "0.12", "Def EPA/play": "-0.05", "Turnover Diff": int64(6)},
			},
		},
	}
}

// slowLoader blocks every load until release is closed, ignoring ctx the
// way a fetch stuck on its timeout does.
type slowLoader struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	inner   *fakeLoader
}

func newSlowLoader() *slowLoader {
	return &slowLoader{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		inner:   newFakeLoader(),
	}
}

func (l *slowLoader) LoadDataset(ctx context.Context, ref dataset.Ref) (*dataset.Dataset, error) {
	l.once.Do(func() { close(l.entered) })
	<-l.release
	return l.inner.LoadDataset(ctx, ref)
}
