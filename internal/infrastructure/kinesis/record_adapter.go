package kinesis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/printshop/internal/infrastructure/store"
)

// ConvertFromKinesisRecord decodes a Kinesis record into a store.Event.
// The DynamoDB Kinesis integration delivers records in DynamoDB Streams
// format, so the Kinesis payload is itself a stream record. Returns
// (nil, nil) for non-INSERT records, which carry no new events.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*store.Event, error) {
	var streamRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &streamRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB record: %w", err)
	}
	return ConvertFromDynamoDBStreamRecord(streamRecord)
}

// ConvertFromDynamoDBStreamRecord decodes a DynamoDB Stream record
// directly, for consumers attached to the table's stream.
func ConvertFromDynamoDBStreamRecord(record events.DynamoDBEventRecord) (*store.Event, error) {
	// The event log is append-only; MODIFY and REMOVE are noise
	if record.EventName != "INSERT" {
		return nil, nil
	}
	return eventFromImage(record.Change.NewImage)
}

func stringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok {
		return v.String()
	}
	return ""
}

func eventFromImage(image map[string]events.DynamoDBAttributeValue) (*store.Event, error) {
	if image == nil {
		return nil, fmt.Errorf("DynamoDB image is nil")
	}

	event := &store.Event{
		ID:            stringAttr(image, "id"),
		AggregateID:   stringAttr(image, "aggregate_id"),
		AggregateType: stringAttr(image, "aggregate_type"),
		EventType:     stringAttr(image, "event_type"),
	}
	if data := stringAttr(image, "data"); data != "" {
		event.Data = json.RawMessage(data)
	}

	if createdAt := stringAttr(image, "created_at"); createdAt != "" {
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		event.Timestamp = t
	}
	if v, ok := image["version"]; ok {
		version, err := v.Integer()
		if err != nil {
			return nil, fmt.Errorf("failed to parse version: %w", err)
		}
		event.Version = int(version)
	}

	if event.ID == "" || event.AggregateID == "" || event.EventType == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, aggregate_id=%s, event_type=%s",
			event.ID, event.AggregateID, event.EventType)
	}

	return event, nil
}

// BatchConvertFromKinesisEvent converts every record in a Kinesis event,
// returning the decoded events alongside per-record errors.
func BatchConvertFromKinesisEvent(kinesisEvent events.KinesisEvent) ([]*store.Event, []error) {
	var eventList []*store.Event
	var errs []error

	for _, record := range kinesisEvent.Records {
		event, err := ConvertFromKinesisRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		if event != nil {
			eventList = append(eventList, event)
		}
	}

	return eventList, errs
}
