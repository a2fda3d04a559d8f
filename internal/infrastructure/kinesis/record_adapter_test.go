package kinesis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueImage() map[string]events.DynamoDBAttributeValue {
	return map[string]events.DynamoDBAttributeValue{
		"id":             events.NewStringAttribute("event-123"),
		"aggregate_id":   events.NewStringAttribute("issue-456"),
		"aggregate_type": events.NewStringAttribute("Issue"),
		"event_type":     events.NewStringAttribute("IssueSubmitted"),
		"data":           events.NewStringAttribute(`{"reason":"damaged"}`),
		"created_at":     events.NewStringAttribute(time.Now().Format(time.RFC3339Nano)),
		"version":        events.NewNumberAttribute("1"),
	}
}

func TestEventFromImage(t *testing.T) {
	t.Run("valid event", func(t *testing.T) {
		event, err := eventFromImage(issueImage())
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "event-123", event.ID)
		assert.Equal(t, "issue-456", event.AggregateID)
		assert.Equal(t, "Issue", event.AggregateType)
		assert.Equal(t, "IssueSubmitted", event.EventType)
		assert.Equal(t, 1, event.Version)
	})

	t.Run("nil image", func(t *testing.T) {
		_, err := eventFromImage(nil)
		assert.Error(t, err)
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := eventFromImage(map[string]events.DynamoDBAttributeValue{
			"id": events.NewStringAttribute("event-123"),
		})
		assert.Error(t, err)
	})
}

func TestConvertFromDynamoDBStreamRecord(t *testing.T) {
	t.Run("INSERT event converts successfully", func(t *testing.T) {
		record := events.DynamoDBEventRecord{
			EventName: "INSERT",
			Change: events.DynamoDBStreamRecord{
				NewImage: issueImage(),
			},
		}

		event, err := ConvertFromDynamoDBStreamRecord(record)
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "event-123", event.ID)
	})

	t.Run("MODIFY event returns nil", func(t *testing.T) {
		event, err := ConvertFromDynamoDBStreamRecord(events.DynamoDBEventRecord{EventName: "MODIFY"})
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("REMOVE event returns nil", func(t *testing.T) {
		event, err := ConvertFromDynamoDBStreamRecord(events.DynamoDBEventRecord{EventName: "REMOVE"})
		require.NoError(t, err)
		assert.Nil(t, event)
	})
}

func TestConvertFromKinesisRecord(t *testing.T) {
	dynamoRecord := events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change: events.DynamoDBStreamRecord{
			NewImage: issueImage(),
		},
	}
	dynamoRecordJSON, err := json.Marshal(dynamoRecord)
	require.NoError(t, err)

	kinesisRecord := events.KinesisEventRecord{
		EventID: "kinesis-event-1",
		Kinesis: events.KinesisRecord{
			Data: dynamoRecordJSON,
		},
	}

	event, err := ConvertFromKinesisRecord(kinesisRecord)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "issue-456", event.AggregateID)
}

func TestBatchConvertFromKinesisEvent(t *testing.T) {
	validRecord := events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change: events.DynamoDBStreamRecord{
			NewImage: issueImage(),
		},
	}
	validJSON, _ := json.Marshal(validRecord)

	modifyRecord := events.DynamoDBEventRecord{EventName: "MODIFY"}
	modifyJSON, _ := json.Marshal(modifyRecord)

	kinesisEvent := events.KinesisEvent{
		Records: []events.KinesisEventRecord{
			{EventID: "1", Kinesis: events.KinesisRecord{Data: validJSON}},
			{EventID: "2", Kinesis: events.KinesisRecord{Data: modifyJSON}},
			{EventID: "3", Kinesis: events.KinesisRecord{Data: []byte("invalid json")}},
		},
	}

	eventList, errors := BatchConvertFromKinesisEvent(kinesisEvent)

	assert.Len(t, eventList, 1)
	assert.Len(t, errors, 1)
	assert.Equal(t, "event-123", eventList[0].ID)
}
