package nea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// base carries what every processor shares: its metric, the fetcher, and the
// provenance of the last successful refresh.
type base struct {
	metric    weather.Metric
	fetcher   *Fetcher
	logger    *zap.Logger
	source    weather.Source
	fetchedAt time.Time
}

func newBase(metric weather.Metric, f *Fetcher) base {
	logger := zap.NewNop()
	if f != nil {
		logger = f.logger
	}
	return base{
		metric:  metric,
		fetcher: f,
		logger:  logger.With(zap.String("metric", string(metric))),
	}
}

// Metric returns the dataset this processor handles.
func (b *base) Metric() weather.Metric {
	return b.metric
}

// Source returns which endpoint produced the current reading.
func (b *base) Source() weather.Source {
	return b.source
}

func (b *base) now() time.Time {
	if b.fetcher != nil {
		return b.fetcher.Now()
	}
	return time.Now()
}

func (b *base) refresh(ctx context.Context, p Parser) error {
	if b.fetcher == nil {
		return fmt.Errorf("%s: no fetcher configured", b.metric)
	}
	source, err := b.fetcher.Run(ctx, b.metric, p)
	if err != nil {
		return err
	}
	b.source = source
	b.fetchedAt = b.now().UTC()
	return nil
}

func (b *base) snapshot(ts time.Time, data any) (weather.Snapshot, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("encode %s reading: %w", b.metric, err)
	}
	fetchedAt := b.fetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = b.now().UTC()
	}
	if ts.IsZero() {
		ts = fetchedAt
	}
	return weather.Snapshot{
		Metric:    b.metric,
		Source:    b.source,
		Timestamp: ts,
		FetchedAt: fetchedAt,
		Data:      raw,
	}, nil
}

func shapeError(metric weather.Metric, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrShape, metric, fmt.Sprintf(format, args...))
}

func decode(metric weather.Metric, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return shapeError(metric, "%v", err)
	}
	return nil
}

func parseTimestamp(metric weather.Metric, s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, shapeError(metric, "bad timestamp %q", s)
	}
	return ts, nil
}

// flexFloat decodes a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// conditionText decodes either a plain forecast string or an object carrying
// the forecast under "text".
type conditionText string

func (c *conditionText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*c = conditionText(obj.Text)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = conditionText(s)
	return nil
}
