package issue

import (
	"context"
	"testing"
	"time"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssueService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	return service, eventStore
}

func seedSubmittedIssue(eventStore *mocks.MockEventStore, issueID string) {
	_ = eventStore.AddEvent(issueID, AggregateType, EventIssueSubmitted, IssueSubmitted{
		IssueID:     issueID,
		OrderID:     "order-1",
		OrderItemID: "item-1",
		UserID:      "user-123",
		Reason:      "damaged",
		Description: "Print arrived cracked",
		SubmittedAt: time.Now(),
	})
	_ = eventStore.AddEvent(issueID, AggregateType, EventIssueQueuedForReview, IssueQueuedForReview{
		IssueID:  issueID,
		QueuedAt: time.Now(),
	})
}

// ============================================
// Submit Tests
// ============================================

func TestService_Submit_Success(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issue, err := service.Submit(ctx, "user-123", "order-1", "item-1", "damaged", "Print arrived cracked", []string{"https://img/1.jpg"})

	require.NoError(t, err)
	assert.NotEmpty(t, issue.ID)
	assert.Equal(t, "user-123", issue.UserID)
	assert.Equal(t, StatusAwaitingReview, issue.Status)
	assert.Equal(t, FaultUnknown, issue.CarrierFault)
	assert.Equal(t, ClaimNotFiled, issue.ClaimStatus)
	assert.False(t, issue.IsConcluded)

	// Submit enters the review queue in the same command
	require.Len(t, eventStore.AppendCalls, 2)
	assert.Equal(t, EventIssueSubmitted, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, EventIssueQueuedForReview, eventStore.AppendCalls[1].EventType)
}

func TestService_Submit_EmptyDescription(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issue, err := service.Submit(ctx, "user-123", "order-1", "item-1", "damaged", "", nil)

	assert.ErrorIs(t, err, ErrEmptyDescription)
	assert.Nil(t, issue)
	assert.Empty(t, eventStore.AppendCalls)
}

// ============================================
// Review Transition Tests
// ============================================

func TestService_RequestInfo_Success(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	err := service.RequestInfo(ctx, issueID, "admin-1", "Please share a photo of the packaging")

	require.NoError(t, err)
	assert.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventInfoRequested, eventStore.AppendCalls[0].EventType)
}

func TestService_RequestInfo_NotFound(t *testing.T) {
	service, _ := newTestIssueService()

	err := service.RequestInfo(context.Background(), "missing", "admin-1", "note")

	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestService_ApproveReprint_Success(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	err := service.ApproveReprint(ctx, issueID, "admin-1", "order-reprint-1")

	require.NoError(t, err)
	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, StatusApprovedReprint, issue.Status)
	assert.Equal(t, "reprint", issue.ResolvedType)
	assert.Equal(t, "order-reprint-1", issue.ReprintOrderID)
}

func TestService_ApproveRefund_Success(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	err := service.ApproveRefund(ctx, issueID, "admin-1", 2500)

	require.NoError(t, err)
	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, StatusApprovedRefund, issue.Status)
	assert.Equal(t, 2500, issue.RefundAmount)
}

func TestService_ApproveRefund_InvalidAmount(t *testing.T) {
	service, eventStore := newTestIssueService()
	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	err := service.ApproveRefund(context.Background(), issueID, "admin-1", 0)

	assert.ErrorIs(t, err, ErrRefundAmountInvalid)
}

func TestService_ApproveRefund_FromInfoRequested_Invalid(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.RequestInfo(ctx, issueID, "admin-1", "note"))

	err := service.ApproveRefund(ctx, issueID, "admin-1", 1000)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_FullResolutionLifecycle(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	require.NoError(t, service.ApproveReprint(ctx, issueID, "admin-1", "order-r1"))
	require.NoError(t, service.StartProcessing(ctx, issueID))
	require.NoError(t, service.Complete(ctx, issueID))

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, issue.Status)

	// Completed is terminal
	err = service.StartProcessing(ctx, issueID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Complete_WithoutProcessing_Invalid(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	err := service.Complete(ctx, issueID)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// ============================================
// Conclude / Reopen Tests
// ============================================

func TestService_Conclude_BlocksTransitions(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.Reject(ctx, issueID, "admin-1", "not our fault"))
	require.NoError(t, service.Conclude(ctx, issueID, "admin-1", "resolved"))

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.True(t, issue.IsConcluded)
	assert.Equal(t, "admin-1", issue.ConcludedBy)

	// Concluding twice is an error
	err = service.Conclude(ctx, issueID, "admin-1", "again")
	assert.ErrorIs(t, err, ErrIssueConcluded)
}

func TestService_Conclude_BlocksCustomerMessages(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.Close(ctx, issueID, ConcludedBySystem, "stale"))
	require.NoError(t, service.Conclude(ctx, issueID, ConcludedBySystem, "stale"))

	_, err := service.PostMessage(ctx, issueID, SenderCustomer, "user-123", "hello?", nil)
	assert.ErrorIs(t, err, ErrIssueConcluded)

	// Admins can still annotate the thread
	msg, err := service.PostMessage(ctx, issueID, SenderAdmin, "admin-1", "claim update", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
}

func TestService_Reopen_ClearsConclusion(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.Reject(ctx, issueID, "admin-1", "duplicate"))
	require.NoError(t, service.Conclude(ctx, issueID, "admin-1", "rejected"))

	require.NoError(t, service.Reopen(ctx, issueID, "admin-1"))

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingReview, issue.Status)
	assert.False(t, issue.IsConcluded)
	assert.Empty(t, issue.ConcludedBy)
	assert.Nil(t, issue.ConcludedAt)
}

func TestService_Reopen_FromActiveStatus_Invalid(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	err := service.Reopen(ctx, issueID, "admin-1")

	assert.ErrorIs(t, err, ErrNotReopenable)
}

func TestService_Reopen_UnfreezesConcludedActiveIssue(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	// Concluded while still in info_requested, not in a terminal status
	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.RequestInfo(ctx, issueID, "admin-1", "need photos"))
	require.NoError(t, service.Conclude(ctx, issueID, "admin-1", "concluded by mistake"))

	require.NoError(t, service.Reopen(ctx, issueID, "admin-1"))

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingReview, issue.Status)
	assert.False(t, issue.IsConcluded)

	// Customer messages flow again after the reopen
	_, err = service.PostMessage(ctx, issueID, SenderCustomer, "user-123", "photos attached", nil)
	require.NoError(t, err)
}

// ============================================
// Carrier Fault / Claim Tests
// ============================================

func TestService_ClassifyCarrierFault(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	require.NoError(t, service.ClassifyCarrierFault(ctx, issueID, "admin-1", FaultCarrier))

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, FaultCarrier, issue.CarrierFault)
}

func TestService_ClassifyCarrierFault_InvalidValue(t *testing.T) {
	service, eventStore := newTestIssueService()
	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	err := service.ClassifyCarrierFault(context.Background(), issueID, "admin-1", "maybe")

	assert.ErrorIs(t, err, ErrInvalidFault)
}

func TestService_FileClaim_RequiresCarrierFault(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	err := service.FileClaim(ctx, issueID, "CLM-001")
	assert.ErrorIs(t, err, ErrNotCarrierFault)

	require.NoError(t, service.ClassifyCarrierFault(ctx, issueID, "admin-1", FaultCarrier))
	require.NoError(t, service.FileClaim(ctx, issueID, "CLM-001"))

	err = service.FileClaim(ctx, issueID, "CLM-002")
	assert.ErrorIs(t, err, ErrClaimAlreadyFiled)
}

func TestService_ClaimLifecycle(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.ClassifyCarrierFault(ctx, issueID, "admin-1", FaultCarrier))
	require.NoError(t, service.FileClaim(ctx, issueID, "CLM-001"))

	require.NoError(t, service.UpdateClaimStatus(ctx, issueID, ClaimApproved, 0))
	require.NoError(t, service.UpdateClaimStatus(ctx, issueID, ClaimPaid, 1800))

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, ClaimPaid, issue.ClaimStatus)
	assert.Equal(t, 1800, issue.ClaimPayoutAmount)

	err = service.UpdateClaimStatus(ctx, issueID, ClaimDenied, 0)
	assert.ErrorIs(t, err, ErrInvalidClaimTransition)
}

func TestService_UpdateClaimStatus_PayoutOnlyOnPaid(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.ClassifyCarrierFault(ctx, issueID, "admin-1", FaultCarrier))
	require.NoError(t, service.FileClaim(ctx, issueID, "CLM-001"))

	// A payout sent alongside a non-paid transition is discarded
	require.NoError(t, service.UpdateClaimStatus(ctx, issueID, ClaimApproved, 5000))

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, ClaimApproved, issue.ClaimStatus)
	assert.Zero(t, issue.ClaimPayoutAmount)

	require.NoError(t, service.UpdateClaimStatus(ctx, issueID, ClaimPaid, 5000))

	issue, err = service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, 5000, issue.ClaimPayoutAmount)
}

func TestService_ClaimContinuesAfterConclusion(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.ClassifyCarrierFault(ctx, issueID, "admin-1", FaultCarrier))
	require.NoError(t, service.FileClaim(ctx, issueID, "CLM-001"))
	require.NoError(t, service.Reject(ctx, issueID, "admin-1", "customer damage"))
	require.NoError(t, service.Conclude(ctx, issueID, "admin-1", "done"))

	// The carrier claim runs on the carrier's timeline
	err := service.UpdateClaimStatus(ctx, issueID, ClaimApproved, 0)
	require.NoError(t, err)
}

// ============================================
// Message Thread Tests
// ============================================

func TestService_PostMessage_Success(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	msg, err := service.PostMessage(ctx, issueID, SenderCustomer, "user-123", "Here is another photo", []string{"https://img/2.jpg"})

	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.True(t, msg.ReadByCustomer)
	assert.False(t, msg.ReadByAdmin)
}

func TestService_PostMessage_EmptyBody(t *testing.T) {
	service, eventStore := newTestIssueService()
	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	_, err := service.PostMessage(context.Background(), issueID, SenderCustomer, "user-123", "", nil)

	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestService_PostMessage_InvalidSender(t *testing.T) {
	service, eventStore := newTestIssueService()
	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	_, err := service.PostMessage(context.Background(), issueID, "bot", "x", "hi", nil)

	assert.ErrorIs(t, err, ErrInvalidSender)
}

func TestService_CustomerReplyRequeuesInfoRequested(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.RequestInfo(ctx, issueID, "admin-1", "need packaging photo"))

	_, err := service.PostMessage(ctx, issueID, SenderCustomer, "user-123", "Attached", nil)
	require.NoError(t, err)

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingReview, issue.Status)
	assert.Nil(t, issue.InfoRequestedAt)
}

func TestService_AdminReplyDoesNotRequeue(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	require.NoError(t, service.RequestInfo(ctx, issueID, "admin-1", "need packaging photo"))

	_, err := service.PostMessage(ctx, issueID, SenderAdmin, "admin-1", "Any update?", nil)
	require.NoError(t, err)

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, StatusInfoRequested, issue.Status)
}

func TestService_MarkMessagesRead(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)
	_, err := service.PostMessage(ctx, issueID, SenderCustomer, "user-123", "message one", nil)
	require.NoError(t, err)
	_, err = service.PostMessage(ctx, issueID, SenderCustomer, "user-123", "message two", nil)
	require.NoError(t, err)

	issue, err := service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, 2, issue.UnreadCount(SenderAdmin))
	assert.Equal(t, 0, issue.UnreadCount(SenderCustomer))

	require.NoError(t, service.MarkMessagesRead(ctx, issueID, SenderAdmin))

	issue, err = service.Load(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, 0, issue.UnreadCount(SenderAdmin))
}

func TestService_MarkMessagesRead_NoopWhenAllRead(t *testing.T) {
	service, eventStore := newTestIssueService()
	ctx := context.Background()

	issueID := "issue-1"
	seedSubmittedIssue(eventStore, issueID)

	before := len(eventStore.AppendCalls)
	require.NoError(t, service.MarkMessagesRead(ctx, issueID, SenderAdmin))
	assert.Len(t, eventStore.AppendCalls, before)
}
