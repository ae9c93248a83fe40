package bisontracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/config"
	"github.com/ovapi/bison-gtfsrt/pkg/database"
	"github.com/ovapi/bison-gtfsrt/pkg/elastic_client"
	"github.com/ovapi/bison-gtfsrt/pkg/exporter"
	"github.com/ovapi/bison-gtfsrt/pkg/feed"
	"github.com/ovapi/bison-gtfsrt/pkg/journeyprocessor"
	"github.com/ovapi/bison-gtfsrt/pkg/metrics"
	"github.com/ovapi/bison-gtfsrt/pkg/realtime/relay"
	"github.com/ovapi/bison-gtfsrt/pkg/redis_client"
	"github.com/ovapi/bison-gtfsrt/pkg/ridservice"
	"github.com/ovapi/bison-gtfsrt/pkg/web"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "subscribe to the BISON publisher and serve the GTFS-realtime feeds",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "config",
					Aliases: []string{"c"},
					Usage:   "path to a YAML configuration file",
					EnvVars: []string{"BISON_CONFIG"},
				},
			},
			Action: func(c *cli.Context) error {
				cfg, err := config.Load(c.String("config"))
				if err != nil {
					return err
				}

				return run(cfg)
			},
		},
		{
			Name:      "parse",
			Usage:     "parse a BISON payload file and print the records",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "type",
					Usage:    "message family: kv6, kv17 or kv15",
					Required: true,
				},
			},
			Action: func(c *cli.Context) error {
				if c.Args().Len() != 1 {
					return errors.New("expected a single payload file")
				}

				payload, err := os.ReadFile(c.Args().First())
				if err != nil {
					return err
				}

				return printPayload(c.String("type"), payload)
			},
		},
	}
}

func printPayload(family string, payload []byte) error {
	document, err := Decompress(payload)
	if err != nil {
		return err
	}

	var records any
	switch family {
	case "kv6":
		records, err = bison.ParseKV6(bytes.NewReader(document))
	case "kv17":
		records, err = bison.ParseKV17(bytes.NewReader(document))
	case "kv15":
		records, err = bison.ParseKV15(bytes.NewReader(document))
	default:
		return fmt.Errorf("unknown message family %q", family)
	}
	if err != nil {
		return err
	}

	pretty.Println(records)
	return nil
}

func newSource(cfg config.Config) relay.Source {
	if cfg.Transport == "stomp" {
		return &relay.StompSource{
			Address:     cfg.Stomp.Address,
			Username:    cfg.Stomp.Username,
			Password:    cfg.Stomp.Password,
			Destination: cfg.Stomp.Destination,
		}
	}

	return &relay.ZMQSource{
		Endpoint: cfg.Endpoint,
		Topics:   cfg.Topics,
	}
}

func run(cfg config.Config) error {
	location, err := cfg.Location()
	if err != nil {
		return err
	}
	fromDate, err := cfg.FromDateIn(location)
	if err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Disconnect()
	if err := redis_client.Connect(); err != nil {
		return err
	}
	if err := elastic_client.Connect(false); err != nil {
		return err
	}

	lookup := ridservice.NewMongoService(location)
	if cfg.IdentifierCaching > 0 {
		lookup.CreateIdentifierCache(cfg.IdentifierCaching)
	}

	queueExporter, err := exporter.NewQueueExporter(redis_client.QueueConnection)
	if err != nil {
		return err
	}

	queue, err := relay.NewQueue(cfg.QueueCapacity)
	if err != nil {
		return err
	}
	collector := metrics.NewCollector(func() float64 {
		return float64(queue.Len())
	})

	tripUpdates := feed.NewStore("tripUpdates")
	vehiclePositions := feed.NewStore("vehiclePositions")
	alerts := feed.NewStore("alerts")

	settings := DefaultSettings()
	settings.Location = location
	settings.Workers = cfg.Workers
	settings.PositionMaxAge = cfg.PositionMaxAge
	settings.TripExpiration = cfg.TripExpiration
	settings.GCInterval = cfg.GCInterval
	settings.FromDate = fromDate
	settings.CommercialExemptOperator = bison.DataOwnerCode(cfg.CommercialExemptOperator)
	settings.DayRolloverOperator = bison.DataOwnerCode(cfg.DayRolloverOperator)
	settings.DayRolloverCutoffHour = cfg.DayRolloverCutoffHour

	tracker := NewTracker(settings, lookup, journeyprocessor.NewProcessor(location), Feeds{
		TripUpdates:      tripUpdates,
		VehiclePositions: vehiclePositions,
		Alerts:           alerts,
	})
	tracker.Passtimes = queueExporter
	tracker.ServiceInfo = queueExporter
	tracker.Misses = ElasticMissRecorder{}
	tracker.Metrics = collector

	subscription := relay.New(newSource(cfg), queue, cfg.IdleTimeout)
	subscription.Metrics = collector

	server := &web.Server{
		TripUpdates:      tripUpdates,
		VehiclePositions: vehiclePositions,
		Alerts:           alerts,
		Trips:            tracker.Registry,
		Metrics:          collector.Handler(),
		HealthChecks: []web.HealthCheck{
			func(ctx context.Context) error {
				return redis_client.Client.Ping(ctx).Err()
			},
			func(ctx context.Context) error {
				return database.MongoGlobalInstance.Client.Ping(ctx, nil)
			},
		},
		QueueConnection: redis_client.QueueConnection,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		<-signals // wait for signal
		log.Info().Msg("Shutting down")
		cancel()

		<-signals // hard exit on second signal (in case shutdown gets stuck)
		os.Exit(1)
	}()

	if err := tracker.ReplayDisruptions(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to replay active KV15 messages")
	}

	services := pool.New().WithContext(ctx).WithCancelOnError()
	services.Go(func(ctx context.Context) error {
		return ignoreCancel(subscription.Run(ctx))
	})
	services.Go(func(ctx context.Context) error {
		return ignoreCancel(tracker.Dispatch(ctx, queue))
	})
	services.Go(func(ctx context.Context) error {
		tracker.RunGarbageCollector(ctx)
		return nil
	})
	services.Go(func(ctx context.Context) error {
		return server.Listen(ctx, cfg.ListenAddress)
	})

	log.Info().Str("source", subscription.Source.Name()).Str("listen", cfg.ListenAddress).Msg("BISON tracker running")

	err = services.Wait()

	<-redis_client.QueueConnection.StopAllConsuming()
	elastic_client.WaitUntilQueueEmpty()

	return err
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
