package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createJourneysIndexes()
	createIdentifierIndexes()
	createMessagesIndexes()
}

func createJourneysIndexes() {
	journeysCollection := GetCollection("journeys")
	journeysIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "operatingday", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "departureepoch", Value: 1},
				{Key: "endepoch", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "blockref", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := journeysCollection.Indexes().CreateMany(context.Background(), journeysIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createIdentifierIndexes() {
	// User stops
	userStopsCollection := GetCollection("userstops")
	_, err := userStopsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "dataownercode", Value: 1},
				{Key: "userstopcode", Value: 1},
			},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	// Lines
	linesCollection := GetCollection("lines")
	_, err = linesCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "dataownercode", Value: 1},
				{Key: "lineplanningnumber", Value: 1},
			},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createMessagesIndexes() {
	messagesCollection := GetCollection("kv15messages")
	_, err := messagesCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "isdelete", Value: 1},
				{Key: "messageendtime", Value: 1},
			},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
