package issue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Issue"

type Status string

const (
	StatusSubmitted       Status = "submitted"
	StatusAwaitingReview  Status = "awaiting_review"
	StatusInfoRequested   Status = "info_requested"
	StatusApprovedReprint Status = "approved_reprint"
	StatusApprovedRefund  Status = "approved_refund"
	StatusProcessing      Status = "processing"
	StatusCompleted       Status = "completed"
	StatusRejected        Status = "rejected"
	StatusClosed          Status = "closed"
)

// CarrierFault classifies whether the shipping carrier caused the problem.
// Independent of the lifecycle status: an issue can be resolved for the
// customer while the carrier claim is still being pursued.
type CarrierFault string

const (
	FaultUnknown    CarrierFault = "unknown"
	FaultCarrier    CarrierFault = "carrier_fault"
	FaultNotCarrier CarrierFault = "not_carrier_fault"
)

type ClaimStatus string

const (
	ClaimNotFiled    ClaimStatus = "not_filed"
	ClaimFiledStatus ClaimStatus = "filed"
	ClaimApproved    ClaimStatus = "approved"
	ClaimPaid        ClaimStatus = "paid"
	ClaimDenied      ClaimStatus = "denied"
)

const (
	SenderCustomer = "customer"
	SenderAdmin    = "admin"

	ConcludedBySystem = "system"
)

var (
	ErrIssueNotFound          = errors.New("issue not found")
	ErrEmptyDescription       = errors.New("issue must have a description")
	ErrInvalidTransition      = errors.New("invalid issue status transition")
	ErrIssueConcluded         = errors.New("issue is concluded")
	ErrIssueNotConcluded      = errors.New("issue is not concluded")
	ErrNotReopenable          = errors.New("issue must be rejected, closed, or concluded to be reopened")
	ErrNotCarrierFault        = errors.New("issue is not classified as carrier fault")
	ErrClaimAlreadyFiled      = errors.New("carrier claim already filed")
	ErrInvalidClaimTransition = errors.New("invalid claim status transition")
	ErrInvalidFault           = errors.New("invalid carrier fault classification")
	ErrEmptyMessage           = errors.New("message body must not be empty")
	ErrInvalidSender          = errors.New("sender must be customer or admin")
	ErrRefundAmountInvalid    = errors.New("refund amount must be positive")
)

// validTransitions defines allowed lifecycle transitions
var validTransitions = map[Status][]Status{
	StatusSubmitted:       {StatusAwaitingReview},
	StatusAwaitingReview:  {StatusInfoRequested, StatusApprovedReprint, StatusApprovedRefund, StatusRejected, StatusClosed},
	StatusInfoRequested:   {StatusAwaitingReview, StatusRejected, StatusClosed},
	StatusApprovedReprint: {StatusProcessing},
	StatusApprovedRefund:  {StatusProcessing},
	StatusProcessing:      {StatusCompleted},
	StatusCompleted:       {}, // terminal
	StatusRejected:        {}, // terminal, reopenable
	StatusClosed:          {}, // terminal, reopenable
}

// validClaimTransitions defines allowed carrier claim transitions
var validClaimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimNotFiled:    {ClaimFiledStatus},
	ClaimFiledStatus: {ClaimApproved, ClaimDenied},
	ClaimApproved:    {ClaimPaid},
	ClaimPaid:        {},
	ClaimDenied:      {},
}

// Message is one entry of an issue's conversation thread
type Message struct {
	ID             string    `json:"id"`
	Sender         string    `json:"sender"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	ImageURLs      []string  `json:"image_urls,omitempty"`
	ReadByAdmin    bool      `json:"read_by_admin"`
	ReadByCustomer bool      `json:"read_by_customer"`
	PostedAt       time.Time `json:"posted_at"`
}

type Issue struct {
	ID          string   `json:"id"`
	OrderID     string   `json:"order_id"`
	OrderItemID string   `json:"order_item_id"`
	UserID      string   `json:"user_id"`
	Reason      string   `json:"reason"`
	Description string   `json:"description"`
	PhotoURLs   []string `json:"photo_urls,omitempty"`
	Status      Status   `json:"status"`

	CarrierFault      CarrierFault `json:"carrier_fault"`
	ClaimStatus       ClaimStatus  `json:"claim_status"`
	ClaimReference    string       `json:"claim_reference,omitempty"`
	ClaimPayoutAmount int          `json:"claim_payout_amount,omitempty"`

	ResolvedType   string `json:"resolved_type,omitempty"`
	ReprintOrderID string `json:"reprint_order_id,omitempty"`
	RefundAmount   int    `json:"refund_amount,omitempty"`

	IsConcluded     bool       `json:"is_concluded"`
	ConcludedBy     string     `json:"concluded_by,omitempty"`
	ConcludedReason string     `json:"concluded_reason,omitempty"`
	ConcludedAt     *time.Time `json:"concluded_at,omitempty"`

	Messages        []Message  `json:"messages,omitempty"`
	InfoRequestedAt *time.Time `json:"info_requested_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"` // Current event version
}

// Aggregate interface implementation
func (i *Issue) GetID() string    { return i.ID }
func (i *Issue) GetVersion() int  { return i.Version }
func (i *Issue) SetVersion(v int) { i.Version = v }

// CanTransitionTo checks if the issue can transition to the target status
func (i *Issue) CanTransitionTo(target Status) bool {
	if i.IsConcluded {
		return false
	}
	allowed, exists := validTransitions[i.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// transitionError returns an appropriate error for an invalid transition
func (i *Issue) transitionError(target Status) error {
	if i.IsConcluded {
		return ErrIssueConcluded
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, i.Status, target)
}

// CanClaimTransitionTo checks if the carrier claim can move to the target status
func (i *Issue) CanClaimTransitionTo(target ClaimStatus) bool {
	allowed, exists := validClaimTransitions[i.ClaimStatus]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// ApplyEvent applies a single event to the issue state (implements aggregate.Aggregate)
func (i *Issue) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventIssueSubmitted:
		var data IssueSubmitted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.ID = data.IssueID
		i.OrderID = data.OrderID
		i.OrderItemID = data.OrderItemID
		i.UserID = data.UserID
		i.Reason = data.Reason
		i.Description = data.Description
		i.PhotoURLs = data.PhotoURLs
		i.Status = StatusSubmitted
		i.CarrierFault = FaultUnknown
		i.ClaimStatus = ClaimNotFiled
		i.CreatedAt = data.SubmittedAt
		i.UpdatedAt = data.SubmittedAt
	case EventIssueQueuedForReview:
		var data IssueQueuedForReview
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.Status = StatusAwaitingReview
		i.InfoRequestedAt = nil
		i.UpdatedAt = data.QueuedAt
	case EventInfoRequested:
		var data InfoRequested
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.Status = StatusInfoRequested
		i.InfoRequestedAt = &data.RequestedAt
		i.UpdatedAt = data.RequestedAt
	case EventIssueApproved:
		var data IssueApproved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if data.ResolvedType == "reprint" {
			i.Status = StatusApprovedReprint
		} else {
			i.Status = StatusApprovedRefund
		}
		i.ResolvedType = data.ResolvedType
		i.ReprintOrderID = data.ReprintOrderID
		i.RefundAmount = data.RefundAmount
		i.UpdatedAt = data.ApprovedAt
	case EventProcessingStarted:
		var data ProcessingStarted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.Status = StatusProcessing
		i.UpdatedAt = data.StartedAt
	case EventIssueCompleted:
		var data IssueCompleted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.Status = StatusCompleted
		i.UpdatedAt = data.CompletedAt
	case EventIssueRejected:
		var data IssueRejected
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.Status = StatusRejected
		i.UpdatedAt = data.RejectedAt
	case EventIssueClosed:
		var data IssueClosed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.Status = StatusClosed
		i.UpdatedAt = data.ClosedAt
	case EventIssueReopened:
		var data IssueReopened
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.Status = StatusAwaitingReview
		i.IsConcluded = false
		i.ConcludedBy = ""
		i.ConcludedReason = ""
		i.ConcludedAt = nil
		i.UpdatedAt = data.ReopenedAt
	case EventIssueConcluded:
		var data IssueConcluded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.IsConcluded = true
		i.ConcludedBy = data.ConcludedBy
		i.ConcludedReason = data.Reason
		i.ConcludedAt = &data.ConcludedAt
		i.UpdatedAt = data.ConcludedAt
	case EventCarrierFaultClassified:
		var data CarrierFaultClassified
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.CarrierFault = CarrierFault(data.Fault)
		i.UpdatedAt = data.ClassifiedAt
	case EventClaimFiled:
		var data ClaimFiled
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.ClaimStatus = ClaimFiledStatus
		i.ClaimReference = data.Reference
		i.UpdatedAt = data.FiledAt
	case EventClaimStatusChanged:
		var data ClaimStatusChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.ClaimStatus = ClaimStatus(data.Status)
		if i.ClaimStatus == ClaimPaid {
			i.ClaimPayoutAmount = data.PayoutAmount
		}
		i.UpdatedAt = data.ChangedAt
	case EventMessagePosted:
		var data MessagePosted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.Messages = append(i.Messages, Message{
			ID:             data.MessageID,
			Sender:         data.Sender,
			SenderID:       data.SenderID,
			Body:           data.Body,
			ImageURLs:      data.ImageURLs,
			ReadByAdmin:    data.Sender == SenderAdmin,
			ReadByCustomer: data.Sender == SenderCustomer,
			PostedAt:       data.PostedAt,
		})
		i.UpdatedAt = data.PostedAt
	case EventMessagesRead:
		var data MessagesRead
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		for idx := range i.Messages {
			switch data.Side {
			case SenderAdmin:
				i.Messages[idx].ReadByAdmin = true
			case SenderCustomer:
				i.Messages[idx].ReadByCustomer = true
			}
		}
		i.UpdatedAt = data.ReadAt
	}
	i.Version = event.Version
	return nil
}

// UnreadCount returns how many messages the given side has not read yet
func (i *Issue) UnreadCount(side string) int {
	count := 0
	for _, m := range i.Messages {
		switch side {
		case SenderAdmin:
			if !m.ReadByAdmin {
				count++
			}
		case SenderCustomer:
			if !m.ReadByCustomer {
				count++
			}
		}
	}
	return count
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// loadIssue loads an issue by replaying events, using snapshot if available
func (s *Service) loadIssue(ctx context.Context, issueID string) (*Issue, error) {
	issue, found, err := aggregate.LoadAggregate(ctx, s.eventStore, issueID, func() *Issue {
		return &Issue{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrIssueNotFound
	}
	return issue, nil
}

// Load exposes the replayed aggregate for ownership checks and views
func (s *Service) Load(ctx context.Context, issueID string) (*Issue, error) {
	return s.loadIssue(ctx, issueID)
}

func (s *Service) checkSnapshot(ctx context.Context, issue *Issue) {
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, issue, AggregateType); err != nil {
		log.Printf("[Issue] Failed to create snapshot for issue %s: %v", issue.ID, err)
	}
}

// Submit reports a problem with a delivered order item. The issue enters
// the review queue immediately.
func (s *Service) Submit(ctx context.Context, userID, orderID, orderItemID, reason, description string, photoURLs []string) (*Issue, error) {
	if description == "" {
		return nil, ErrEmptyDescription
	}

	issueID := uuid.New().String()
	now := time.Now()

	submitted := IssueSubmitted{
		IssueID:     issueID,
		OrderID:     orderID,
		OrderItemID: orderItemID,
		UserID:      userID,
		Reason:      reason,
		Description: description,
		PhotoURLs:   photoURLs,
		SubmittedAt: now,
	}
	if _, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueSubmitted, submitted); err != nil {
		return nil, err
	}

	queued := IssueQueuedForReview{IssueID: issueID, QueuedAt: now}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueQueuedForReview, queued)
	if err != nil {
		return nil, err
	}

	issue := &Issue{
		ID:           issueID,
		OrderID:      orderID,
		OrderItemID:  orderItemID,
		UserID:       userID,
		Reason:       reason,
		Description:  description,
		PhotoURLs:    photoURLs,
		Status:       StatusAwaitingReview,
		CarrierFault: FaultUnknown,
		ClaimStatus:  ClaimNotFiled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}

	s.checkSnapshot(ctx, issue)
	return issue, nil
}

// RequestInfo asks the customer for more details. The issue leaves the
// review queue until the customer replies.
func (s *Service) RequestInfo(ctx context.Context, issueID, adminID, note string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.CanTransitionTo(StatusInfoRequested) {
		return issue.transitionError(StatusInfoRequested)
	}

	now := time.Now()
	event := InfoRequested{IssueID: issueID, AdminID: adminID, Note: note, RequestedAt: now}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventInfoRequested, event)
	if err != nil {
		return err
	}

	issue.Status = StatusInfoRequested
	issue.InfoRequestedAt = &now
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// ApproveReprint resolves the issue with a replacement print run.
// The reprint order itself is placed by the command layer.
func (s *Service) ApproveReprint(ctx context.Context, issueID, adminID, reprintOrderID string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.CanTransitionTo(StatusApprovedReprint) {
		return issue.transitionError(StatusApprovedReprint)
	}

	event := IssueApproved{
		IssueID:        issueID,
		AdminID:        adminID,
		ResolvedType:   "reprint",
		ReprintOrderID: reprintOrderID,
		ApprovedAt:     time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueApproved, event)
	if err != nil {
		return err
	}

	issue.Status = StatusApprovedReprint
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// ApproveRefund resolves the issue with a refund in cents
func (s *Service) ApproveRefund(ctx context.Context, issueID, adminID string, refundAmount int) error {
	if refundAmount <= 0 {
		return ErrRefundAmountInvalid
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.CanTransitionTo(StatusApprovedRefund) {
		return issue.transitionError(StatusApprovedRefund)
	}

	event := IssueApproved{
		IssueID:      issueID,
		AdminID:      adminID,
		ResolvedType: "refund",
		RefundAmount: refundAmount,
		ApprovedAt:   time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueApproved, event)
	if err != nil {
		return err
	}

	issue.Status = StatusApprovedRefund
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// StartProcessing marks an approved resolution as being worked on
func (s *Service) StartProcessing(ctx context.Context, issueID string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.CanTransitionTo(StatusProcessing) {
		return issue.transitionError(StatusProcessing)
	}

	event := ProcessingStarted{IssueID: issueID, StartedAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventProcessingStarted, event)
	if err != nil {
		return err
	}

	issue.Status = StatusProcessing
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// Complete marks the resolution as delivered to the customer
func (s *Service) Complete(ctx context.Context, issueID string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.CanTransitionTo(StatusCompleted) {
		return issue.transitionError(StatusCompleted)
	}

	event := IssueCompleted{IssueID: issueID, CompletedAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueCompleted, event)
	if err != nil {
		return err
	}

	issue.Status = StatusCompleted
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// Reject turns the issue down without a resolution
func (s *Service) Reject(ctx context.Context, issueID, adminID, reason string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.CanTransitionTo(StatusRejected) {
		return issue.transitionError(StatusRejected)
	}

	event := IssueRejected{IssueID: issueID, AdminID: adminID, Reason: reason, RejectedAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueRejected, event)
	if err != nil {
		return err
	}

	issue.Status = StatusRejected
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// Close ends the issue without resolving it, e.g. when the customer
// stopped responding or withdrew the report
func (s *Service) Close(ctx context.Context, issueID, closedBy, reason string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.CanTransitionTo(StatusClosed) {
		return issue.transitionError(StatusClosed)
	}

	event := IssueClosed{IssueID: issueID, ClosedBy: closedBy, Reason: reason, ClosedAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueClosed, event)
	if err != nil {
		return err
	}

	issue.Status = StatusClosed
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// Conclude freezes the issue. A concluded issue rejects further customer
// messages and lifecycle transitions until an admin reopens it. Carrier
// claim bookkeeping stays allowed.
func (s *Service) Conclude(ctx context.Context, issueID, concludedBy, reason string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if issue.IsConcluded {
		return ErrIssueConcluded
	}

	now := time.Now()
	event := IssueConcluded{IssueID: issueID, ConcludedBy: concludedBy, Reason: reason, ConcludedAt: now}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueConcluded, event)
	if err != nil {
		return err
	}

	issue.IsConcluded = true
	issue.ConcludedBy = concludedBy
	issue.ConcludedReason = reason
	issue.ConcludedAt = &now
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// Reopen puts an issue back into the review queue, clearing any
// conclusion. Covers rejected and closed issues as well as issues an
// admin froze with Conclude in any other status; it is the only way
// out of a conclusion. Admin only.
func (s *Service) Reopen(ctx context.Context, issueID, adminID string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.IsConcluded && issue.Status != StatusRejected && issue.Status != StatusClosed {
		return ErrNotReopenable
	}

	event := IssueReopened{IssueID: issueID, AdminID: adminID, ReopenedAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueReopened, event)
	if err != nil {
		return err
	}

	issue.Status = StatusAwaitingReview
	issue.IsConcluded = false
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// ClassifyCarrierFault records whether the shipping carrier caused the damage
func (s *Service) ClassifyCarrierFault(ctx context.Context, issueID, adminID string, fault CarrierFault) error {
	if fault != FaultCarrier && fault != FaultNotCarrier {
		return ErrInvalidFault
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	event := CarrierFaultClassified{
		IssueID:      issueID,
		AdminID:      adminID,
		Fault:        string(fault),
		ClassifiedAt: time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventCarrierFaultClassified, event)
	if err != nil {
		return err
	}

	issue.CarrierFault = fault
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// FileClaim records that a claim was filed with the carrier. Allowed even
// on concluded issues, since the claim runs on the carrier's timeline.
func (s *Service) FileClaim(ctx context.Context, issueID, reference string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if issue.CarrierFault != FaultCarrier {
		return ErrNotCarrierFault
	}
	if issue.ClaimStatus != ClaimNotFiled {
		return ErrClaimAlreadyFiled
	}

	event := ClaimFiled{IssueID: issueID, Reference: reference, FiledAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventClaimFiled, event)
	if err != nil {
		return err
	}

	issue.ClaimStatus = ClaimFiledStatus
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// UpdateClaimStatus advances the carrier claim. PayoutAmount is only
// meaningful when moving to paid.
func (s *Service) UpdateClaimStatus(ctx context.Context, issueID string, status ClaimStatus, payoutAmount int) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if !issue.CanClaimTransitionTo(status) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidClaimTransition, issue.ClaimStatus, status)
	}

	// A payout exists only once the carrier actually paid
	if status != ClaimPaid {
		payoutAmount = 0
	}

	event := ClaimStatusChanged{
		IssueID:      issueID,
		Status:       string(status),
		PayoutAmount: payoutAmount,
		ChangedAt:    time.Now(),
	}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventClaimStatusChanged, event)
	if err != nil {
		return err
	}

	issue.ClaimStatus = status
	if status == ClaimPaid {
		issue.ClaimPayoutAmount = payoutAmount
	}
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}

// PostMessage adds a message to the issue thread. Customer messages are
// rejected on concluded issues. A customer reply while info is requested
// puts the issue back into the review queue.
func (s *Service) PostMessage(ctx context.Context, issueID, sender, senderID, body string, imageURLs []string) (*Message, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if sender != SenderCustomer && sender != SenderAdmin {
		return nil, ErrInvalidSender
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if sender == SenderCustomer && issue.IsConcluded {
		return nil, ErrIssueConcluded
	}

	now := time.Now()
	messageID := uuid.New().String()
	event := MessagePosted{
		IssueID:   issueID,
		MessageID: messageID,
		Sender:    sender,
		SenderID:  senderID,
		Body:      body,
		ImageURLs: imageURLs,
		PostedAt:  now,
	}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventMessagePosted, event)
	if err != nil {
		return nil, err
	}
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}

	if sender == SenderCustomer && issue.Status == StatusInfoRequested {
		queued := IssueQueuedForReview{IssueID: issueID, QueuedAt: now}
		requeued, err := s.eventStore.Append(ctx, issueID, AggregateType, EventIssueQueuedForReview, queued)
		if err != nil {
			return nil, err
		}
		issue.Status = StatusAwaitingReview
		if requeued != nil {
			issue.Version = requeued.Version
		}
	}

	s.checkSnapshot(ctx, issue)

	return &Message{
		ID:             messageID,
		Sender:         sender,
		SenderID:       senderID,
		Body:           body,
		ImageURLs:      imageURLs,
		ReadByAdmin:    sender == SenderAdmin,
		ReadByCustomer: sender == SenderCustomer,
		PostedAt:       now,
	}, nil
}

// MarkMessagesRead marks every message in the thread as read by one side
func (s *Service) MarkMessagesRead(ctx context.Context, issueID, side string) error {
	if side != SenderCustomer && side != SenderAdmin {
		return ErrInvalidSender
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}

	if issue.UnreadCount(side) == 0 {
		return nil
	}

	event := MessagesRead{IssueID: issueID, Side: side, ReadAt: time.Now()}
	storedEvent, err := s.eventStore.Append(ctx, issueID, AggregateType, EventMessagesRead, event)
	if err != nil {
		return err
	}
	if storedEvent != nil {
		issue.Version = storedEvent.Version
	}
	s.checkSnapshot(ctx, issue)
	return nil
}
