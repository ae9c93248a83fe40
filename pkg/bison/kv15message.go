package bison

import (
	"fmt"
	"time"
)

type MessagePriority string

const (
	MessagePriorityPTProcess  MessagePriority = "PTPROCESS"
	MessagePriorityCommercial MessagePriority = "COMMERCIAL"
	MessagePriorityMisc       MessagePriority = "MISC"
)

type ReasonType string

const (
	ReasonTypeUndefined   ReasonType = "UNDEF"
	ReasonTypeUnknown     ReasonType = "UNKNOWN"
	ReasonTypeGeneral     ReasonType = "GENERAL"
	ReasonTypePersonnel   ReasonType = "PERSONNEL"
	ReasonTypeEquipment   ReasonType = "EQUIPMENT"
	ReasonTypeEnvironment ReasonType = "ENVIRONMENT"
)

// KV15Message is a rider facing disruption message. Optional fields are nil when the
// element was absent from the payload.
type KV15Message struct {
	DataOwnerCode     DataOwnerCode
	MessageCodeDate   string
	MessageCodeNumber int
	IsDelete          bool

	MessagePriority  MessagePriority
	MessageType      string
	MessageStartTime *time.Time
	MessageEndTime   *time.Time
	MessageTimestamp *time.Time
	MessageContent   *string

	ReasonType    *ReasonType
	SubReasonType *SubReasonType
	ReasonContent *string

	EffectType    *string
	SubEffectType *SubEffectType
	EffectContent *string

	MeasureType    *string
	SubMeasureType *SubMeasureType
	MeasureContent *string

	AdviceType    *string
	AdviceContent *string

	UserStopCodes       []string
	LinePlanningNumbers []string
}

// ID returns the feed identity of the message.
func (m *KV15Message) ID() string {
	return fmt.Sprintf("KV15:%s:%s:%d", m.DataOwnerCode, m.MessageCodeDate, m.MessageCodeNumber)
}

type kv15StopMessage struct {
	DataOwnerCode     DataOwnerCode `xml:"dataownercode"`
	MessageCodeDate   string        `xml:"messagecodedate"`
	MessageCodeNumber int           `xml:"messagecodenumber"`

	UserStopCodes       []string `xml:"userstopcodes>userstopcode"`
	LinePlanningNumbers []string `xml:"lineplanningnumbers>lineplanningnumber"`

	MessagePriority  string  `xml:"messagepriority"`
	MessageType      string  `xml:"messagetype"`
	MessageStartTime *string `xml:"messagestarttime"`
	MessageEndTime   *string `xml:"messageendtime"`
	MessageTimestamp *string `xml:"messagetimestamp"`
	MessageContent   *string `xml:"messagecontent"`

	ReasonType    *string `xml:"reasontype"`
	SubReasonType *string `xml:"subreasontype"`
	ReasonContent *string `xml:"reasoncontent"`

	EffectType    *string `xml:"effecttype"`
	SubEffectType *string `xml:"subeffecttype"`
	EffectContent *string `xml:"effectcontent"`

	MeasureType    *string `xml:"measuretype"`
	SubMeasureType *string `xml:"submeasuretype"`
	MeasureContent *string `xml:"measurecontent"`

	AdviceType    *string `xml:"advicetype"`
	AdviceContent *string `xml:"advicecontent"`
}

func (s *kv15StopMessage) message() (KV15Message, error) {
	message := KV15Message{
		DataOwnerCode:       s.DataOwnerCode,
		MessageCodeDate:     s.MessageCodeDate,
		MessageCodeNumber:   s.MessageCodeNumber,
		MessagePriority:     MessagePriority(s.MessagePriority),
		MessageType:         s.MessageType,
		MessageContent:      nonEmpty(s.MessageContent),
		ReasonContent:       nonEmpty(s.ReasonContent),
		EffectType:          nonEmpty(s.EffectType),
		EffectContent:       nonEmpty(s.EffectContent),
		MeasureType:         nonEmpty(s.MeasureType),
		MeasureContent:      nonEmpty(s.MeasureContent),
		AdviceType:          nonEmpty(s.AdviceType),
		AdviceContent:       nonEmpty(s.AdviceContent),
		UserStopCodes:       s.UserStopCodes,
		LinePlanningNumbers: s.LinePlanningNumbers,
	}

	var err error
	if message.MessageStartTime, err = parseOptionalTimestamp(s.MessageStartTime); err != nil {
		return message, err
	}
	if message.MessageEndTime, err = parseOptionalTimestamp(s.MessageEndTime); err != nil {
		return message, err
	}
	if message.MessageTimestamp, err = parseOptionalTimestamp(s.MessageTimestamp); err != nil {
		return message, err
	}

	if reasonType := nonEmpty(s.ReasonType); reasonType != nil {
		value := ReasonType(*reasonType)
		message.ReasonType = &value
	}
	if subReasonType := nonEmpty(s.SubReasonType); subReasonType != nil {
		message.SubReasonType = ParseSubReasonType(*subReasonType)
	}
	if subEffectType := nonEmpty(s.SubEffectType); subEffectType != nil {
		message.SubEffectType = ParseSubEffectType(*subEffectType)
	}
	if subMeasureType := nonEmpty(s.SubMeasureType); subMeasureType != nil {
		message.SubMeasureType = ParseSubMeasureType(*subMeasureType)
	}

	return message, nil
}

type kv15DeleteMessage struct {
	DataOwnerCode     DataOwnerCode `xml:"dataownercode"`
	MessageCodeDate   string        `xml:"messagecodedate"`
	MessageCodeNumber int           `xml:"messagecodenumber"`
}

func (d *kv15DeleteMessage) message() KV15Message {
	return KV15Message{
		DataOwnerCode:     d.DataOwnerCode,
		MessageCodeDate:   d.MessageCodeDate,
		MessageCodeNumber: d.MessageCodeNumber,
		IsDelete:          true,
	}
}
