package bison

import "time"

type KV17MutationType string

const (
	KV17Cancel            KV17MutationType = "CANCEL"
	KV17Recover           KV17MutationType = "RECOVER"
	KV17Add               KV17MutationType = "ADD"
	KV17Shorten           KV17MutationType = "SHORTEN"
	KV17Lag               KV17MutationType = "LAG"
	KV17ChangePasstimes   KV17MutationType = "CHANGEPASSTIMES"
	KV17ChangeDestination KV17MutationType = "CHANGEDESTINATION"
	KV17MutationMessage   KV17MutationType = "MUTATIONMESSAGE"
)

// KV17Cvlinfo is one circulation mutation. Mutations on the journey as a whole have no
// UserStopCode.
type KV17Cvlinfo struct {
	DataOwnerCode       DataOwnerCode
	LinePlanningNumber  string
	OperatingDay        string
	JourneyNumber       int
	ReinforcementNumber int

	Timestamp time.Time
	Type      KV17MutationType

	UserStopCode          string
	PassageSequenceNumber int

	LagTime             int
	TargetArrivalTime   string
	TargetDepartureTime string
	JourneyStopType     string

	DestinationCode   string
	DestinationName50 string

	ReasonType    string
	SubReasonType string
	ReasonContent string
	AdviceType    string
	AdviceContent string
}

// IsJourneyMutation reports whether the mutation applies to the journey rather than a stop.
func (c *KV17Cvlinfo) IsJourneyMutation() bool {
	return c.UserStopCode == ""
}

type kv17Element struct {
	Journey struct {
		DataOwnerCode       DataOwnerCode `xml:"dataownercode"`
		LinePlanningNumber  string        `xml:"lineplanningnumber"`
		OperatingDay        string        `xml:"operatingday"`
		JourneyNumber       int           `xml:"journeynumber"`
		ReinforcementNumber int           `xml:"reinforcementnumber"`
	} `xml:"KV17JOURNEY"`

	MutateJourney     []kv17MutateJourney     `xml:"KV17MUTATEJOURNEY"`
	MutateJourneyStop []kv17MutateJourneyStop `xml:"KV17MUTATEJOURNEYSTOP"`
}

type kv17MutateJourney struct {
	Timestamp string `xml:"timestamp"`

	Cancel            []kv17Mutation `xml:"KV17CANCEL"`
	Recover           []kv17Mutation `xml:"KV17RECOVER"`
	Add               []kv17Mutation `xml:"KV17ADD"`
	ChangeDestination []kv17Mutation `xml:"KV17CHANGEDESTINATION"`
	MutationMessage   []kv17Mutation `xml:"KV17MUTATIONMESSAGE"`
}

type kv17MutateJourneyStop struct {
	Timestamp             string `xml:"timestamp"`
	UserStopCode          string `xml:"userstopcode"`
	PassageSequenceNumber int    `xml:"passagesequencenumber"`

	Shorten           []kv17Mutation `xml:"KV17SHORTEN"`
	Lag               []kv17Mutation `xml:"KV17LAG"`
	ChangePasstimes   []kv17Mutation `xml:"KV17CHANGEPASSTIMES"`
	ChangeDestination []kv17Mutation `xml:"KV17CHANGEDESTINATION"`
	MutationMessage   []kv17Mutation `xml:"KV17MUTATIONMESSAGE"`
}

type kv17Mutation struct {
	LagTime             int    `xml:"lagtime"`
	TargetArrivalTime   string `xml:"targetarrivaltime"`
	TargetDepartureTime string `xml:"targetdeparturetime"`
	JourneyStopType     string `xml:"journeystoptype"`
	DestinationCode     string `xml:"destinationcode"`
	DestinationName50   string `xml:"destinationname50"`
	ReasonType          string `xml:"reasontype"`
	SubReasonType       string `xml:"subreasontype"`
	ReasonContent       string `xml:"reasoncontent"`
	AdviceType          string `xml:"advicetype"`
	AdviceContent       string `xml:"advicecontent"`
}

func (e *kv17Element) flatten() ([]KV17Cvlinfo, error) {
	var records []KV17Cvlinfo

	newRecord := func(timestamp time.Time, mutationType KV17MutationType, mutation kv17Mutation) KV17Cvlinfo {
		return KV17Cvlinfo{
			DataOwnerCode:       e.Journey.DataOwnerCode,
			LinePlanningNumber:  e.Journey.LinePlanningNumber,
			OperatingDay:        e.Journey.OperatingDay,
			JourneyNumber:       e.Journey.JourneyNumber,
			ReinforcementNumber: e.Journey.ReinforcementNumber,

			Timestamp: timestamp,
			Type:      mutationType,

			LagTime:             mutation.LagTime,
			TargetArrivalTime:   mutation.TargetArrivalTime,
			TargetDepartureTime: mutation.TargetDepartureTime,
			JourneyStopType:     mutation.JourneyStopType,
			DestinationCode:     mutation.DestinationCode,
			DestinationName50:   mutation.DestinationName50,
			ReasonType:          mutation.ReasonType,
			SubReasonType:       mutation.SubReasonType,
			ReasonContent:       mutation.ReasonContent,
			AdviceType:          mutation.AdviceType,
			AdviceContent:       mutation.AdviceContent,
		}
	}

	for _, mutateJourney := range e.MutateJourney {
		timestamp, err := parseTimestamp(mutateJourney.Timestamp)
		if err != nil {
			return nil, err
		}

		groups := []struct {
			mutationType KV17MutationType
			mutations    []kv17Mutation
		}{
			{KV17Cancel, mutateJourney.Cancel},
			{KV17Recover, mutateJourney.Recover},
			{KV17Add, mutateJourney.Add},
			{KV17ChangeDestination, mutateJourney.ChangeDestination},
			{KV17MutationMessage, mutateJourney.MutationMessage},
		}
		for _, group := range groups {
			for _, mutation := range group.mutations {
				records = append(records, newRecord(timestamp, group.mutationType, mutation))
			}
		}
	}

	for _, mutateStop := range e.MutateJourneyStop {
		timestamp, err := parseTimestamp(mutateStop.Timestamp)
		if err != nil {
			return nil, err
		}

		groups := []struct {
			mutationType KV17MutationType
			mutations    []kv17Mutation
		}{
			{KV17Shorten, mutateStop.Shorten},
			{KV17Lag, mutateStop.Lag},
			{KV17ChangePasstimes, mutateStop.ChangePasstimes},
			{KV17ChangeDestination, mutateStop.ChangeDestination},
			{KV17MutationMessage, mutateStop.MutationMessage},
		}
		for _, group := range groups {
			for _, mutation := range group.mutations {
				record := newRecord(timestamp, group.mutationType, mutation)
				record.UserStopCode = mutateStop.UserStopCode
				record.PassageSequenceNumber = mutateStop.PassageSequenceNumber

				records = append(records, record)
			}
		}
	}

	return records, nil
}
