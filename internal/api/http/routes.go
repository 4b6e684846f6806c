package httpapi

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weather-dashboard/internal/basemap"
	"weather-dashboard/internal/coordinator"
	"weather-dashboard/internal/geo"
)

var validate = validator.New()

// RegisterRoutes wires the presentation-shell surface into the Fiber app:
// read access to the coordinator state plus the event-injection points.
func RegisterRoutes(app *fiber.App, coord *coordinator.Coordinator, catalog *basemap.Catalog) {
	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(coord.Snapshot())
	})

	v1.Get("/basemaps", func(c *fiber.Ctx) error {
		return c.JSON(catalog.All())
	})

	v1.Post("/events/map-moved", func(c *fiber.Ctx) error {
		var req mapMovedRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord.MapMoved(geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon}, req.Zoom)
		return accepted(c)
	})

	v1.Post("/events/device-location", func(c *fiber.Ctx) error {
		var req deviceLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord.DeviceLocationUpdated(geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
		return accepted(c)
	})

	v1.Post("/events/toggle", func(c *fiber.Ctx) error {
		var req toggleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord.SetToggle(coordinator.Toggle(req.Name), *req.Value)
		return accepted(c)
	})

	v1.Post("/events/basemap", func(c *fiber.Ctx) error {
		var req basemapRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(req.ID) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id is required")
		}

		var sel basemap.Selection
		if err := json.Unmarshal(req.ID, &sel); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord.SelectBasemap(sel)
		return accepted(c)
	})
}

func accepted(c *fiber.Ctx) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// mapMovedRequest is the payload for a settled pan/zoom gesture. Lat/Lon are
// pointers so a legitimate zero coordinate passes the required check.
type mapMovedRequest struct {
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Zoom int      `json:"zoom" validate:"required,gte=1,lte=20"`
}

type deviceLocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

type toggleRequest struct {
	Name  string `json:"name" validate:"required,oneof=showMap geolocationEnabled"`
	Value *bool  `json:"value" validate:"required"`
}

// basemapRequest carries the raw selection: a catalog id number, "random",
// or "none".
type basemapRequest struct {
	ID json.RawMessage `json:"id"`
}
