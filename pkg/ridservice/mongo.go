package ridservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
	"github.com/ovapi/bison-gtfsrt/pkg/database"
	"github.com/ovapi/bison-gtfsrt/pkg/redis_client"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const fromDateRefreshInterval = time.Hour

type userStop struct {
	DataOwnerCode bison.DataOwnerCode `bson:"dataownercode"`
	UserStopCode  string              `bson:"userstopcode"`
	StopID        string              `bson:"stopid"`
}

type line struct {
	DataOwnerCode      bison.DataOwnerCode `bson:"dataownercode"`
	LinePlanningNumber string              `bson:"lineplanningnumber"`
	RouteID            string              `bson:"routeid"`
}

// MongoService reads the schedule database. Stop and line resolutions are cached in
// Redis when a cache is configured.
type MongoService struct {
	Location *time.Location

	identifierCache *cache.Cache[string]

	fromDateMutex   sync.Mutex
	fromDate        time.Time
	fromDateFetched time.Time
}

func NewMongoService(location *time.Location) *MongoService {
	return &MongoService{
		Location: location,
	}
}

// CreateIdentifierCache stores stop and line resolutions in Redis.
func (s *MongoService) CreateIdentifierCache(expiration time.Duration) {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(expiration))
	s.identifierCache = cache.New[string](redisStore)
}

func (s *MongoService) ResolveTrip(ctx context.Context, tripKey string) (*Journey, error) {
	var journey Journey

	err := database.GetCollection("journeys").FindOne(ctx, bson.M{"key": tripKey}).Decode(&journey)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrJourneyNotFound
	} else if err != nil {
		return nil, fmt.Errorf("finding journey %s: %w", tripKey, err)
	}

	return &journey, nil
}

func (s *MongoService) ResolveStopIDs(ctx context.Context, dataOwner bison.DataOwnerCode, userStopCode string) ([]string, error) {
	cacheKey := fmt.Sprintf("ridservice:userstop:%s:%s", dataOwner, userStopCode)

	return s.cachedIdentifiers(ctx, cacheKey, func() ([]string, error) {
		cursor, err := database.GetCollection("userstops").Find(ctx, bson.M{
			"dataownercode": dataOwner,
			"userstopcode":  userStopCode,
		})
		if err != nil {
			return nil, err
		}

		var userStops []userStop
		if err := cursor.All(ctx, &userStops); err != nil {
			return nil, err
		}

		stopIDs := make([]string, 0, len(userStops))
		for _, userStop := range userStops {
			stopIDs = append(stopIDs, userStop.StopID)
		}
		return stopIDs, nil
	})
}

func (s *MongoService) ResolveLineIDs(ctx context.Context, dataOwner bison.DataOwnerCode, linePlanningNumber string) ([]string, error) {
	cacheKey := fmt.Sprintf("ridservice:line:%s:%s", dataOwner, linePlanningNumber)

	return s.cachedIdentifiers(ctx, cacheKey, func() ([]string, error) {
		cursor, err := database.GetCollection("lines").Find(ctx, bson.M{
			"dataownercode":      dataOwner,
			"lineplanningnumber": linePlanningNumber,
		})
		if err != nil {
			return nil, err
		}

		var lines []line
		if err := cursor.All(ctx, &lines); err != nil {
			return nil, err
		}

		routeIDs := make([]string, 0, len(lines))
		for _, line := range lines {
			routeIDs = append(routeIDs, line.RouteID)
		}
		return routeIDs, nil
	})
}

func (s *MongoService) cachedIdentifiers(ctx context.Context, cacheKey string, lookup func() ([]string, error)) ([]string, error) {
	if s.identifierCache != nil {
		if cached, err := s.identifierCache.Get(ctx, cacheKey); err == nil && cached != "" {
			var identifiers []string
			if err := json.Unmarshal([]byte(cached), &identifiers); err == nil {
				return identifiers, nil
			}
		}
	}

	identifiers, err := lookup()
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", cacheKey, err)
	}

	if s.identifierCache != nil {
		encoded, _ := json.Marshal(identifiers)
		if err := s.identifierCache.Set(ctx, cacheKey, string(encoded)); err != nil {
			log.Debug().Err(err).Str("key", cacheKey).Msg("Failed to cache identifiers")
		}
	}

	return identifiers, nil
}

func (s *MongoService) FromDate(ctx context.Context) (time.Time, error) {
	s.fromDateMutex.Lock()
	defer s.fromDateMutex.Unlock()

	if !s.fromDateFetched.IsZero() && time.Since(s.fromDateFetched) < fromDateRefreshInterval {
		return s.fromDate, nil
	}

	var first Journey
	opts := options.FindOne().SetSort(bson.D{{Key: "operatingday", Value: 1}}).SetProjection(bson.M{"operatingday": 1})
	err := database.GetCollection("journeys").FindOne(ctx, bson.M{}, opts).Decode(&first)
	if err != nil {
		return time.Time{}, fmt.Errorf("finding first operating day: %w", err)
	}

	fromDate, err := first.OperatingDate(s.Location)
	if err != nil {
		return time.Time{}, err
	}

	s.fromDate = fromDate
	s.fromDateFetched = time.Now()

	return fromDate, nil
}

func (s *MongoService) ActiveJourneys(ctx context.Context, now time.Time) ([]*Journey, error) {
	epoch := now.Unix()

	cursor, err := database.GetCollection("journeys").Find(ctx, bson.M{
		"departureepoch": bson.M{"$lt": epoch},
		"endepoch":       bson.M{"$gt": epoch},
	})
	if err != nil {
		return nil, fmt.Errorf("finding active journeys: %w", err)
	}

	var journeys []*Journey
	if err := cursor.All(ctx, &journeys); err != nil {
		return nil, fmt.Errorf("decoding active journeys: %w", err)
	}

	return journeys, nil
}

func (s *MongoService) ActiveDisruptions(ctx context.Context, now time.Time) ([]*bison.KV15Message, error) {
	cursor, err := database.GetCollection("kv15messages").Find(ctx, bson.M{
		"isdelete": false,
		"$or": bson.A{
			bson.M{"messageendtime": nil},
			bson.M{"messageendtime": bson.M{"$gt": now}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("finding active kv15 messages: %w", err)
	}

	var messages []*bison.KV15Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decoding active kv15 messages: %w", err)
	}

	return messages, nil
}
