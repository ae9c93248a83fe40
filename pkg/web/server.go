package web

import (
	"context"
	"net/http"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/adjust/rmq/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/liip/sheriff"
	"github.com/ovapi/bison-gtfsrt/pkg/realtime/tripregistry"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
)

type FeedSource interface {
	FeedMessage() *gtfs.FeedMessage
}

type TripSource interface {
	Snapshot() []*tripregistry.TripState
}

// HealthCheck returns an error when a dependency is unavailable.
type HealthCheck func(ctx context.Context) error

type Server struct {
	TripUpdates      FeedSource
	VehiclePositions FeedSource
	Alerts           FeedSource

	Trips        TripSource
	Metrics      http.Handler
	HealthChecks []HealthCheck
	// QueueConnection enables the exporter queue stats page when set.
	QueueConnection rmq.Connection
}

func (s *Server) App() *fiber.App {
	webApp := fiber.New(fiber.Config{DisableStartupMessage: true})
	webApp.Use(NewLogger())

	webApp.Get("/tripUpdates", feedHandler(s.TripUpdates))
	webApp.Get("/vehiclePositions", feedHandler(s.VehiclePositions))
	webApp.Get("/alerts", feedHandler(s.Alerts))

	webApp.Get("/health", s.health)
	webApp.Get("/trips", s.trips)
	webApp.Get("/blocks", s.blocks)

	if s.Metrics != nil {
		webApp.Get("/metrics", adaptor.HTTPHandler(s.Metrics))
	}
	if s.QueueConnection != nil {
		webApp.Get("/queues", s.queueStats)
	}

	return webApp
}

// Listen serves the app until the context is done.
func (s *Server) Listen(ctx context.Context, listen string) error {
	webApp := s.App()

	go func() {
		<-ctx.Done()
		webApp.Shutdown()
	}()

	return webApp.Listen(listen)
}

// feedHandler serves the binary feed, or its text form when the debug parameter is set.
func feedHandler(source FeedSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		message := source.FeedMessage()

		if c.Context().QueryArgs().Has("debug") {
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.SendString(prototext.Format(message))
		}

		encoded, err := proto.Marshal(message)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		c.Set(fiber.HeaderContentType, "application/x-protobuf")
		return c.Send(encoded)
	}
}

func (s *Server) health(c *fiber.Ctx) error {
	for _, check := range s.HealthChecks {
		if err := check(c.UserContext()); err != nil {
			c.Status(fiber.StatusInternalServerError)
			return c.SendString(err.Error())
		}
	}

	return c.SendString("OK")
}

func (s *Server) trips(c *fiber.Ctx) error {
	groups := []string{"basic"}
	if c.QueryBool("detailed", false) {
		groups = append(groups, "detailed")
	}

	states := s.Trips.Snapshot()
	views := make([]tripregistry.TripView, 0, len(states))
	for _, state := range states {
		views = append(views, state.View())
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{Groups: groups, IncludeEmptyTag: true}, views)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce trips",
		})
	}

	return c.JSON(reduced)
}

// blocks lists the registered journeys per block. With the next parameter set to a journey
// key it returns only the journey that follows it in its block.
func (s *Server) blocks(c *fiber.Ctx) error {
	var journeys []*ridservice.Journey
	for _, state := range s.Trips.Snapshot() {
		journeys = append(journeys, state.Journey)
	}
	blocks := ridservice.GroupBlocks(journeys)

	var reduced any
	var err error
	if journeyKey := c.Query("next"); journeyKey != "" {
		next := nextJourney(blocks, journeyKey)
		if next == nil {
			c.Status(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "No following journey in block",
			})
		}
		reduced, err = sheriff.Marshal(&sheriff.Options{Groups: []string{"basic"}}, next)
	} else {
		reduced, err = sheriff.Marshal(&sheriff.Options{Groups: []string{"basic"}}, blocks)
	}
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce blocks",
		})
	}

	return c.JSON(reduced)
}

func nextJourney(blocks map[string]*ridservice.Block, journeyKey string) *ridservice.Journey {
	for _, block := range blocks {
		if next := block.Next(journeyKey); next != nil {
			return next
		}
	}
	return nil
}

func (s *Server) queueStats(c *fiber.Ctx) error {
	queues, err := s.QueueConnection.GetOpenQueues()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	stats, err := s.QueueConnection.CollectStats(queues)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(stats.GetHtml(c.Query("layout"), c.Query("refresh")))
}
