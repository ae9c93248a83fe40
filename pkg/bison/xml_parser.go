package bison

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	_ "time/tzdata"
)

// Location is the timezone operating days and local timestamps are expressed in.
var Location, _ = time.LoadLocation("Europe/Amsterdam")

const localTimestampFormat = "2006-01-02T15:04:05"

func newDecoder(reader io.Reader) *xml.Decoder {
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	return d
}

// ParseKV6 decodes a KV6posinfo payload into its position reports.
func ParseKV6(reader io.Reader) ([]*KV6Posinfo, error) {
	var posinfos []*KV6Posinfo

	d := newDecoder(reader)
	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding kv6 token: %w", err)
		}

		ty, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		messageType, ok := kv6PosinfoTypes[ty.Name.Local]
		if !ok {
			continue
		}

		var posinfo KV6Posinfo
		if err = d.DecodeElement(&posinfo, &ty); err != nil {
			return nil, fmt.Errorf("decoding kv6 %s: %w", ty.Name.Local, err)
		}
		posinfo.MessageType = messageType

		if posinfo.ReinforcementNumber < 0 || posinfo.ReinforcementNumber > MaxReinforcementNumber {
			return nil, fmt.Errorf("kv6 %s has invalid reinforcementnumber %d", ty.Name.Local, posinfo.ReinforcementNumber)
		}

		if posinfo.Timestamp, err = parseTimestamp(posinfo.RawTimestamp); err != nil {
			return nil, err
		}

		posinfos = append(posinfos, &posinfo)
	}

	return posinfos, nil
}

// ParseKV17 decodes a KV17cvlinfo payload into flattened circulation mutations.
func ParseKV17(reader io.Reader) ([]*KV17Cvlinfo, error) {
	var cvlinfos []*KV17Cvlinfo

	d := newDecoder(reader)
	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding kv17 token: %w", err)
		}

		ty, ok := tok.(xml.StartElement)
		if !ok || ty.Name.Local != "KV17cvlinfo" {
			continue
		}

		var element kv17Element
		if err = d.DecodeElement(&element, &ty); err != nil {
			return nil, fmt.Errorf("decoding kv17 cvlinfo: %w", err)
		}

		records, err := element.flatten()
		if err != nil {
			return nil, err
		}
		for i := range records {
			cvlinfos = append(cvlinfos, &records[i])
		}
	}

	return cvlinfos, nil
}

// ParseKV15 decodes a KV15messages payload. Delete messages are returned with IsDelete set.
func ParseKV15(reader io.Reader) ([]*KV15Message, error) {
	var messages []*KV15Message

	d := newDecoder(reader)
	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding kv15 token: %w", err)
		}

		ty, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch ty.Name.Local {
		case "STOPMESSAGE":
			var stopMessage kv15StopMessage
			if err = d.DecodeElement(&stopMessage, &ty); err != nil {
				return nil, fmt.Errorf("decoding kv15 stopmessage: %w", err)
			}

			message, err := stopMessage.message()
			if err != nil {
				return nil, err
			}
			messages = append(messages, &message)
		case "DELETEMESSAGE":
			var deleteMessage kv15DeleteMessage
			if err = d.DecodeElement(&deleteMessage, &ty); err != nil {
				return nil, fmt.Errorf("decoding kv15 deletemessage: %w", err)
			}

			message := deleteMessage.message()
			messages = append(messages, &message)
		}
	}

	return messages, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if timestamp, err := time.Parse(time.RFC3339, value); err == nil {
		return timestamp, nil
	}

	timestamp, err := time.ParseInLocation(localTimestampFormat, value, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}

	return timestamp, nil
}

func parseOptionalTimestamp(value *string) (*time.Time, error) {
	value = nonEmpty(value)
	if value == nil {
		return nil, nil
	}

	timestamp, err := parseTimestamp(*value)
	if err != nil {
		return nil, err
	}

	return &timestamp, nil
}

func nonEmpty(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
