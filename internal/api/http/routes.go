package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/nea-sg-weather/internal/store"
	"github.com/i474232898/nea-sg-weather/internal/weather"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("metric", func(fl validator.FieldLevel) bool {
		return weather.Metric(fl.Field().String()).Valid()
	})
	return v
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/metrics", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"metrics": service.Metrics(),
		})
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		if err := service.RefreshAll(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/weather/:metric/current", func(c *fiber.Ctx) error {
		metric, err := parseMetricParam(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.GetLatest(c.UserContext(), metric)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no data for requested metric")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/weather/:metric/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := service.GetRange(c.UserContext(), req.Metric, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"metric":    req.Metric,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Post("/weather/:metric/refresh", func(c *fiber.Ctx) error {
		metric, err := parseMetricParam(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.Refresh(c.UserContext(), metric); err != nil {
			if errors.Is(err, weather.ErrUnknownMetric) {
				return fiber.NewError(fiber.StatusNotFound, "metric is not enabled")
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}

		snapshot, err := service.GetLatest(c.UserContext(), metric)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}
		return c.JSON(snapshot)
	})
}

// metricParam holds the :metric path parameter.
type metricParam struct {
	Metric string `validate:"required,metric"`
}

func parseMetricParam(c *fiber.Ctx) (weather.Metric, error) {
	p := metricParam{Metric: c.Params("metric")}
	if err := validate.Struct(p); err != nil {
		return "", err
	}
	return weather.Metric(p.Metric), nil
}

// historyQuery holds parameters for the history endpoint.
type historyQuery struct {
	Metric weather.Metric `validate:"required"`
	From   time.Time      `validate:"required"`
	To     time.Time      `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	metric, err := parseMetricParam(c)
	if err != nil {
		return err
	}
	h.Metric = metric

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
