package feed

import (
	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func TripUpdateEntity(id string, tripUpdate *gtfs.TripUpdate) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id:         proto.String(id),
		TripUpdate: tripUpdate,
	}
}

func VehicleEntity(id string, vehicle *gtfs.VehiclePosition) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id:      proto.String(id),
		Vehicle: vehicle,
	}
}

func AlertEntity(id string, alert *gtfs.Alert) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id:    proto.String(id),
		Alert: alert,
	}
}
