package httpapi

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Harini-2202-S/building-weather/internal/buildings"
	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/Harini-2202-S/building-weather/internal/panel"
	"github.com/Harini-2202-S/building-weather/internal/store"
	"github.com/Harini-2202-S/building-weather/internal/weather"
)

var validate = validator.New()

// Deps are the collaborators the HTTP surface exposes.
type Deps struct {
	Panel     *panel.Panel
	Weather   *weather.CachedService
	Store     *store.MemoryStore
	Buildings *buildings.Registry
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	// Read-only snapshot of the panel state for rendering.
	v1.Get("/panel", func(c *fiber.Ctx) error {
		return c.JSON(deps.Panel.Snapshot())
	})

	// Click entry point: either a building name or an explicit coordinate.
	v1.Post("/panel/click", func(c *fiber.Ctx) error {
		coord, err := clickCoordinate(c, deps.Buildings)
		if err != nil {
			return err
		}

		// The fetch outlives the click request, so it must not run under the
		// request's context.
		deps.Panel.Click(context.Background(), coord)
		return c.JSON(deps.Panel.Snapshot())
	})

	// Close entry point for escape-key or backdrop interactions.
	v1.Post("/panel/close", func(c *fiber.Ctx) error {
		deps.Panel.Close()
		return c.JSON(deps.Panel.Snapshot())
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		coord, err := parseCoordinateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		// The adapter never fails; degraded data comes back as a record.
		return c.JSON(deps.Weather.Current(c.Context(), coord))
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := deps.Store.Range(req.Coordinate, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"coordinate": req.Coordinate,
			"from":       req.From,
			"to":         req.To,
			"records":    records,
		})
	})

	v1.Get("/buildings", func(c *fiber.Ctx) error {
		return c.JSON(deps.Buildings.List())
	})
}

// clickCoordinate extracts the click target from the request: a known
// building name takes precedence over raw coordinates.
func clickCoordinate(c *fiber.Ctx, registry *buildings.Registry) (geo.Coordinate, error) {
	if name := c.Query("building"); name != "" {
		b, ok := registry.Lookup(name)
		if !ok {
			return geo.Coordinate{}, fiber.NewError(fiber.StatusNotFound, "unknown building: "+name)
		}
		return b.Coordinate, nil
	}

	coord, err := parseCoordinateQuery(c)
	if err != nil {
		return geo.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return coord, nil
}

// coordinateQuery holds the raw lat/lng query parameters. Range is not
// checked here: out-of-range coordinates are passed through to the upstream
// service, which reports them as a generic failure.
type coordinateQuery struct {
	Lat string `validate:"required,numeric"`
	Lng string `validate:"required,numeric"`
}

func parseCoordinateQuery(c *fiber.Ctx) (geo.Coordinate, error) {
	q := coordinateQuery{
		Lat: c.Query("lat"),
		Lng: c.Query("lng"),
	}
	if err := validate.Struct(q); err != nil {
		return geo.Coordinate{}, err
	}

	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return geo.Coordinate{}, errors.New("lat must be a number")
	}
	lng, err := strconv.ParseFloat(q.Lng, 64)
	if err != nil {
		return geo.Coordinate{}, errors.New("lng must be a number")
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return geo.Coordinate{}, errors.New("lat and lng must be finite numbers")
	}

	return geo.Coordinate{Lat: lat, Lng: lng}, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Coordinate geo.Coordinate
	From       time.Time `validate:"required"`
	To         time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	coord, err := parseCoordinateQuery(c)
	if err != nil {
		return err
	}
	h.Coordinate = coord

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
