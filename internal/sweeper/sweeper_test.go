package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/example/printshop/internal/readmodel"
)

func seedInfoRequestedIssue(t *testing.T, eventStore *mocks.MockEventStore, readStore *mocks.MockReadStore, issueID string, requestedAt time.Time) {
	t.Helper()

	require.NoError(t, eventStore.AddEvent(issueID, issue.AggregateType, issue.EventIssueSubmitted, issue.IssueSubmitted{
		IssueID: issueID, OrderID: "order-1", OrderItemID: "item-1", UserID: "user-1",
		Reason: "damaged", Description: "arrived torn", SubmittedAt: requestedAt.Add(-time.Hour),
	}))
	require.NoError(t, eventStore.AddEvent(issueID, issue.AggregateType, issue.EventIssueQueuedForReview, issue.IssueQueuedForReview{
		IssueID: issueID, QueuedAt: requestedAt.Add(-time.Hour),
	}))
	require.NoError(t, eventStore.AddEvent(issueID, issue.AggregateType, issue.EventInfoRequested, issue.InfoRequested{
		IssueID: issueID, AdminID: "admin-1", Note: "need a photo", RequestedAt: requestedAt,
	}))

	readStore.SetData("issues", issueID, &readmodel.IssueReadModel{
		ID:              issueID,
		UserID:          "user-1",
		Status:          string(issue.StatusInfoRequested),
		InfoRequestedAt: &requestedAt,
	})
}

func TestSweep_ClosesStaleIssues(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	readStore := mocks.NewMockReadStore()
	issueSvc := issue.NewService(eventStore)

	requestedAt := time.Now().Add(-72 * time.Hour)
	seedInfoRequestedIssue(t, eventStore, readStore, "issue-stale", requestedAt)

	s := New(issueSvc, readStore, time.Minute, 48*time.Hour)
	s.Sweep(context.Background())

	require.Len(t, eventStore.AppendCalls, 2)
	assert.Equal(t, issue.EventIssueClosed, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, issue.EventIssueConcluded, eventStore.AppendCalls[1].EventType)
	assert.Equal(t, "issue-stale", eventStore.AppendCalls[0].AggregateID)
}

func TestSweep_LeavesFreshIssuesAlone(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	readStore := mocks.NewMockReadStore()
	issueSvc := issue.NewService(eventStore)

	requestedAt := time.Now().Add(-2 * time.Hour)
	seedInfoRequestedIssue(t, eventStore, readStore, "issue-fresh", requestedAt)

	s := New(issueSvc, readStore, time.Minute, 48*time.Hour)
	s.Sweep(context.Background())

	assert.Empty(t, eventStore.AppendCalls)
}

func TestSweep_SkipsConcludedAndOtherStatuses(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	readStore := mocks.NewMockReadStore()
	issueSvc := issue.NewService(eventStore)

	old := time.Now().Add(-72 * time.Hour)
	readStore.SetData("issues", "issue-concluded", &readmodel.IssueReadModel{
		ID: "issue-concluded", Status: string(issue.StatusInfoRequested),
		InfoRequestedAt: &old, IsConcluded: true,
	})
	readStore.SetData("issues", "issue-reviewing", &readmodel.IssueReadModel{
		ID: "issue-reviewing", Status: string(issue.StatusAwaitingReview),
	})

	s := New(issueSvc, readStore, time.Minute, 48*time.Hour)
	s.Sweep(context.Background())

	assert.Empty(t, eventStore.AppendCalls)
}
