package weather_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/i474232898/nea-sg-weather/internal/store"
	"github.com/i474232898/nea-sg-weather/internal/weather"
	"github.com/i474232898/nea-sg-weather/internal/weather/nea"
)

type fakeRefresher struct {
	metric weather.Metric
	err    error
	calls  int
}

func (f *fakeRefresher) Metric() weather.Metric { return f.metric }

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls++
	return f.err
}

func (f *fakeRefresher) Snapshot() (weather.Snapshot, error) {
	return weather.Snapshot{
		Metric:    f.metric,
		Source:    weather.SourcePrimary,
		Timestamp: time.Date(2026, 10, 17, 1, 0, 0, 0, time.UTC),
		Data:      []byte(`{"average":27.5}`),
	}, nil
}

func TestServiceRefreshStoresSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(10, 0)
	temp := &fakeRefresher{metric: weather.MetricTemperature}
	svc := weather.NewService(mem, []weather.Refresher{temp}, zaptest.NewLogger(t))

	if err := svc.Refresh(ctx, weather.MetricTemperature); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := svc.GetLatest(ctx, weather.MetricTemperature)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if snap.FetchedAt.IsZero() {
		t.Errorf("FetchedAt should be filled in")
	}
	if string(snap.Data) != `{"average":27.5}` {
		t.Errorf("Data = %s", snap.Data)
	}

	if err := svc.Refresh(ctx, weather.MetricUVIndex); !errors.Is(err, weather.ErrUnknownMetric) {
		t.Errorf("expected ErrUnknownMetric, got %v", err)
	}
}

func TestServiceRefreshAllKeepsLastGoodSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(10, 0)
	boom := errors.New("upstream 503")
	temp := &fakeRefresher{metric: weather.MetricTemperature}
	rain := &fakeRefresher{metric: weather.MetricRainfall, err: boom}
	svc := weather.NewService(mem, []weather.Refresher{temp, rain}, zaptest.NewLogger(t))

	err := svc.RefreshAll(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined upstream error, got %v", err)
	}
	if temp.calls != 1 || rain.calls != 1 {
		t.Errorf("calls: temp %d rain %d", temp.calls, rain.calls)
	}
	if _, err := svc.GetLatest(ctx, weather.MetricTemperature); err != nil {
		t.Errorf("temperature should be stored: %v", err)
	}
	if _, err := svc.GetLatest(ctx, weather.MetricRainfall); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("failed rainfall must not be stored, got %v", err)
	}

	want := []weather.Metric{weather.MetricTemperature, weather.MetricRainfall}
	got := svc.Metrics()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Metrics() = %v, want %v", got, want)
	}
}

// overlapRefresher records how many callers are inside Refresh or Snapshot at once.
type overlapRefresher struct {
	metric   weather.Metric
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	cycle    int
}

func (o *overlapRefresher) enter() {
	n := o.inFlight.Add(1)
	for {
		seen := o.maxSeen.Load()
		if n <= seen || o.maxSeen.CompareAndSwap(seen, n) {
			return
		}
	}
}

func (o *overlapRefresher) Metric() weather.Metric { return o.metric }

func (o *overlapRefresher) Refresh(context.Context) error {
	o.enter()
	defer o.inFlight.Add(-1)
	time.Sleep(2 * time.Millisecond)
	o.cycle++
	return nil
}

func (o *overlapRefresher) Snapshot() (weather.Snapshot, error) {
	o.enter()
	defer o.inFlight.Add(-1)
	return weather.Snapshot{
		Metric: o.metric,
		Source: weather.SourcePrimary,
		Data:   []byte(fmt.Sprintf(`{"cycle":%d}`, o.cycle)),
	}, nil
}

func TestServiceRefreshSerializesSameMetric(t *testing.T) {
	ctx := context.Background()
	rain := &overlapRefresher{metric: weather.MetricRainfall}
	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Refresher{rain}, zaptest.NewLogger(t))

	const callers = 8
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Refresh(ctx, weather.MetricRainfall); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := rain.maxSeen.Load(); got != 1 {
		t.Errorf("%d callers were inside the refresher at once, want 1", got)
	}
	if rain.cycle != callers {
		t.Errorf("cycles = %d, want %d", rain.cycle, callers)
	}
	history, err := svc.GetRange(ctx, weather.MetricRainfall, time.Time{}, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(history) != callers {
		t.Errorf("stored %d snapshots, want %d", len(history), callers)
	}
}

func TestServiceConcurrentRainRefresh(t *testing.T) {
	body := `{"code":0,"data":{"readings":[{"timestamp":"2026-10-17T09:00:00+08:00","data":[` +
		`{"stationId":"S77","value":0.4},{"stationId":"S109","value":1.2},{"stationId":"S24","value":0}]}]}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := nea.NewFetcher(srv.Client(), zaptest.NewLogger(t), nea.WithEndpoints(map[weather.Metric]nea.EndpointPair{
		weather.MetricRainfall: {Primary: srv.URL + "/rainfall"},
	}))
	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Refresher{nea.NewRain(f)}, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Refresh(context.Background(), weather.MetricRainfall); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	snap, err := svc.GetLatest(context.Background(), weather.MetricRainfall)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if snap.Source != weather.SourcePrimary || snap.Timestamp.IsZero() {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestServiceWithoutRefreshers(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(0, 0), nil, zaptest.NewLogger(t))
	if err := svc.RefreshAll(context.Background()); err == nil {
		t.Fatalf("expected an error with no refreshers")
	}
}

func TestMetricValid(t *testing.T) {
	for _, m := range weather.AllMetrics {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if weather.Metric("snowfall").Valid() {
		t.Errorf("snowfall should not be valid")
	}
}
