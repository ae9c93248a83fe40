package redis_client

import (
	"context"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/ovapi/bison-gtfsrt/pkg/util"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueConnectionTag = "bison-gtfsrt"

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["BISON_REDIS_ADDRESS"] != "" {
		address = env["BISON_REDIS_ADDRESS"]
	}

	if env["BISON_REDIS_PASSWORD"] != "" {
		password = env["BISON_REDIS_PASSWORD"]
	}

	if env["BISON_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["BISON_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	err := statusCmd.Err()
	if err != nil {
		return err
	}

	queueErrors := make(chan error, 10)
	go func() {
		for err := range queueErrors {
			log.Error().Err(err).Msg("Redis queue connection error")
		}
	}()

	QueueConnection, err = rmq.OpenConnectionWithRedisClient(queueConnectionTag, Client, queueErrors)
	if err != nil {
		return err
	}

	return nil
}
