package nea

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/i474232898/nea-sg-weather/internal/common"
	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// fixedNow is 09:00 on 17 Oct 2026 in Singapore.
var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, common.Singapore)

const forecast2hrPrimaryJSON = `{
  "code": 0,
  "data": {
    "area_metadata": [
      {"name": "Ang Mo Kio", "label_location": {"latitude": 1.375, "longitude": 103.839}},
      {"name": "Bedok", "label_location": {"latitude": 1.321, "longitude": 103.924}},
      {"name": "Bishan", "label_location": {"latitude": 1.350772, "longitude": 103.839}},
      {"name": "Changi", "label_location": {"latitude": 1.357, "longitude": 103.987}}
    ],
    "items": [
      {
        "update_timestamp": "2026-10-17T08:47:00+08:00",
        "timestamp": "2026-10-17T08:30:00+08:00",
        "forecasts": [
          {"area": "Ang Mo Kio", "forecast": "Partly Cloudy (Day)"},
          {"area": "Bedok", "forecast": "Light Rain"},
          {"area": "Bishan", "forecast": {"code": "PD", "text": "Partly Cloudy (Day)"}},
          {"area": "Changi", "forecast": "Light Rain"}
        ]
      }
    ]
  },
  "errorMsg": ""
}`

const forecast2hrSecondaryJSON = `{
  "Channel2HrForecast": {
    "Item": {
      "ForecastIssue": {"DateTimeStr": "8.30AM 17 Oct"},
      "WeatherForecast": {
        "Area": [
          {"Name": "Ang Mo Kio", "Forecast": "PD", "Lat": "1.375", "Lon": "103.839", "Zone": "C"},
          {"Name": "Bedok", "Forecast": "LR", "Lat": "1.321", "Lon": "103.924", "Zone": "E"},
          {"Name": "Bishan", "Forecast": "PD", "Lat": "1.350772", "Lon": "103.839", "Zone": "C"},
          {"Name": "Changi", "Forecast": "LR", "Lat": "1.357", "Lon": "103.987", "Zone": "E"}
        ]
      }
    }
  }
}`

const forecast24hrPrimaryJSON = `{
  "code": 0,
  "data": {
    "records": [
      {
        "date": "2026-10-17",
        "timestamp": "2026-10-17T05:37:00+08:00",
        "periods": [
          {
            "timePeriod": {"start": "2026-10-17T06:00:00+08:00", "end": "2026-10-17T12:00:00+08:00", "text": "6 am to Midday 17 Oct"},
            "regions": {
              "west": {"code": "PD", "text": "Partly Cloudy (Day)"},
              "east": {"code": "PD", "text": "Partly Cloudy (Day)"},
              "central": {"code": "PD", "text": "Partly Cloudy (Day)"},
              "south": {"code": "PD", "text": "Partly Cloudy (Day)"},
              "north": {"code": "PD", "text": "Partly Cloudy (Day)"}
            }
          },
          {
            "timePeriod": {"start": "2026-10-17T12:00:00+08:00", "end": "2026-10-17T18:00:00+08:00"},
            "regions": {
              "west": {"code": "TL", "text": "Thundery Showers"},
              "east": {"code": "PD", "text": "Partly Cloudy (Day)"},
              "central": {"code": "TL", "text": "Thundery Showers"},
              "south": {"code": "TL", "text": "Thundery Showers"},
              "north": {"code": "TL", "text": "Thundery Showers"}
            }
          },
          {
            "timePeriod": {"start": "2026-10-17T18:00:00+08:00", "end": "2026-10-18T06:00:00+08:00"},
            "regions": {
              "west": {"code": "PN", "text": "Partly Cloudy (Night)"},
              "east": {"code": "PN", "text": "Partly Cloudy (Night)"},
              "central": {"code": "PN", "text": "Partly Cloudy (Night)"},
              "south": {"code": "PN", "text": "Partly Cloudy (Night)"},
              "north": {"code": "PN", "text": "Partly Cloudy (Night)"}
            }
          }
        ]
      }
    ]
  }
}`

const forecast24hrSecondaryJSON = `{
  "items": [
    {
      "timestamp": "2026-10-17T05:37:00+08:00",
      "periods": [
        {
          "time": {"start": "2026-10-17T06:00:00+08:00", "end": "2026-10-17T12:00:00+08:00"},
          "regions": {"west": "Partly Cloudy (Day)", "east": "Partly Cloudy (Day)", "central": "Partly Cloudy (Day)", "south": "Partly Cloudy (Day)", "north": "Partly Cloudy (Day)"}
        },
        {
          "time": {"start": "2026-10-17T12:00:00+08:00", "end": "2026-10-17T18:00:00+08:00"},
          "regions": {"west": "Thundery Showers", "east": "Partly Cloudy (Day)", "central": "Thundery Showers", "south": "Thundery Showers", "north": "Thundery Showers"}
        },
        {
          "time": {"start": "2026-10-17T18:00:00+08:00", "end": "2026-10-18T06:00:00+08:00"},
          "regions": {"west": "Partly Cloudy (Night)", "east": "Partly Cloudy (Night)", "central": "Partly Cloudy (Night)", "south": "Partly Cloudy (Night)", "north": "Partly Cloudy (Night)"}
        }
      ]
    }
  ]
}`

const forecast4dayPrimaryJSON = `{
  "code": 0,
  "data": {
    "records": [
      {
        "date": "2026-10-17",
        "timestamp": "2026-10-17T05:30:00+08:00",
        "forecasts": [
          {
            "timestamp": "2026-10-18T00:00:00+08:00",
            "temperature": {"low": 25, "high": 33, "unit": "Degrees Celsius"},
            "relativeHumidity": {"low": 60, "high": 95},
            "forecast": {"summary": "Thundery Showers", "code": "TL", "text": "Late afternoon thundery showers"},
            "wind": {"speed": {"low": 10, "high": 20}, "direction": "SSE"}
          },
          {
            "timestamp": "2026-10-19T00:00:00+08:00",
            "temperature": {"low": 26, "high": 34},
            "forecast": {"text": "Volcanic ash"},
            "wind": {"speed": {"low": 5, "high": 15}, "direction": "S"}
          },
          {
            "timestamp": "2026-10-20T00:00:00+08:00",
            "temperature": {"low": 25, "high": 32},
            "forecast": {"text": "Partly cloudy"},
            "wind": {"speed": {"low": 10, "high": 25}, "direction": "VARIABLE"}
          }
        ]
      }
    ]
  }
}`

const forecast4daySecondaryJSON = `{
  "items": [
    {
      "forecasts": [
        {
          "timestamp": "2026-10-18T00:00:00+08:00",
          "temperature": {"low": "25", "high": "33"},
          "forecast": "Late afternoon thundery showers",
          "wind": {"speed": {"low": "10", "high": "20"}, "direction": "SSE"}
        },
        {
          "timestamp": "2026-10-20T00:00:00+08:00",
          "temperature": {"low": 25, "high": 32},
          "forecast": "Partly cloudy",
          "wind": {"speed": {"low": 10, "high": 25}, "direction": "VARIABLE"}
        }
      ]
    }
  ]
}`

func readingsJSON(timestamp string, readings string) string {
	return `{"code":0,"data":{"stations":[],"readings":[{"timestamp":"` + timestamp + `","data":` + readings + `}],"readingType":"DEFAULT","readingUnit":"deg C"},"errorMsg":""}`
}

const pm25PrimaryJSON = `{"code":0,"data":{"regionMetadata":[{"name":"west","labelLocation":{"latitude":1.35735,"longitude":103.7}}],"items":[{"date":"2026-10-17","updatedTimestamp":"2026-10-17T09:08:52+08:00","timestamp":"2026-10-17T09:00:00+08:00","readings":{"pm25_one_hourly":{"west":12,"east":9,"central":14,"south":11,"north":8}}}]},"errorMsg":""}`

const uvPrimaryJSON = `{"code":0,"data":{"records":[{"date":"2026-10-17","updatedTimestamp":"2026-10-17T09:05:00+08:00","timestamp":"2026-10-17T09:00:00+08:00","index":[{"hour":"2026-10-17T09:00:00+08:00","value":3},{"hour":"2026-10-17T08:00:00+08:00","value":1}]}]},"errorMsg":""}`

// shortErrorJSON is a typical 15-character error body from the open data API.
const shortErrorJSON = `{"error":"bad"}`

// neaServer serves canned bodies by path and records every request URL.
type neaServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	bodies   map[string]string
	statuses map[string]int
}

func newNEAServer(t *testing.T) *neaServer {
	t.Helper()
	s := &neaServer{
		bodies:   make(map[string]string),
		statuses: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		key := r.URL.Path
		// secondary URLs carry a cache-busting suffix after the last slash
		if i := strings.LastIndex(key, "/"); strings.HasPrefix(key, "/secondary/") && i >= 0 {
			key = key[:i+1]
		}
		body, ok := s.bodies[key]
		status := s.statuses[key]
		s.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *neaServer) handle(path, body string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[path] = body
	s.statuses[path] = status
}

func (s *neaServer) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r.URL.Path)
	}
	return out
}

func (s *neaServer) fetcher(t *testing.T, endpoints map[weather.Metric]EndpointPair) *Fetcher {
	t.Helper()
	return NewFetcher(s.Client(), zaptest.NewLogger(t),
		WithEndpoints(endpoints),
		WithClock(func() time.Time { return fixedNow }),
	)
}

// offlineFetcher is used by tests that call the parse methods directly.
func offlineFetcher(t *testing.T) *Fetcher {
	t.Helper()
	return NewFetcher(nil, zaptest.NewLogger(t), WithClock(func() time.Time { return fixedNow }))
}
