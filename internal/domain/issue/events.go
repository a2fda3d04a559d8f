package issue

import "time"

const (
	EventIssueSubmitted         = "IssueSubmitted"
	EventIssueQueuedForReview   = "IssueQueuedForReview"
	EventInfoRequested          = "InfoRequested"
	EventIssueApproved          = "IssueApproved"
	EventProcessingStarted      = "ProcessingStarted"
	EventIssueCompleted         = "IssueCompleted"
	EventIssueRejected          = "IssueRejected"
	EventIssueClosed            = "IssueClosed"
	EventIssueReopened          = "IssueReopened"
	EventIssueConcluded         = "IssueConcluded"
	EventCarrierFaultClassified = "CarrierFaultClassified"
	EventClaimFiled             = "ClaimFiled"
	EventClaimStatusChanged     = "ClaimStatusChanged"
	EventMessagePosted          = "MessagePosted"
	EventMessagesRead           = "MessagesRead"
)

type IssueSubmitted struct {
	IssueID     string    `json:"issue_id"`
	OrderID     string    `json:"order_id"`
	OrderItemID string    `json:"order_item_id"`
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	PhotoURLs   []string  `json:"photo_urls,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type IssueQueuedForReview struct {
	IssueID  string    `json:"issue_id"`
	QueuedAt time.Time `json:"queued_at"`
}

type InfoRequested struct {
	IssueID     string    `json:"issue_id"`
	AdminID     string    `json:"admin_id"`
	Note        string    `json:"note"`
	RequestedAt time.Time `json:"requested_at"`
}

type IssueApproved struct {
	IssueID        string    `json:"issue_id"`
	AdminID        string    `json:"admin_id"`
	ResolvedType   string    `json:"resolved_type"` // "reprint" or "refund"
	ReprintOrderID string    `json:"reprint_order_id,omitempty"`
	RefundAmount   int       `json:"refund_amount,omitempty"`
	ApprovedAt     time.Time `json:"approved_at"`
}

type ProcessingStarted struct {
	IssueID   string    `json:"issue_id"`
	StartedAt time.Time `json:"started_at"`
}

type IssueCompleted struct {
	IssueID     string    `json:"issue_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type IssueRejected struct {
	IssueID    string    `json:"issue_id"`
	AdminID    string    `json:"admin_id"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejected_at"`
}

type IssueClosed struct {
	IssueID  string    `json:"issue_id"`
	ClosedBy string    `json:"closed_by"`
	Reason   string    `json:"reason"`
	ClosedAt time.Time `json:"closed_at"`
}

type IssueReopened struct {
	IssueID    string    `json:"issue_id"`
	AdminID    string    `json:"admin_id"`
	ReopenedAt time.Time `json:"reopened_at"`
}

type IssueConcluded struct {
	IssueID     string    `json:"issue_id"`
	ConcludedBy string    `json:"concluded_by"`
	Reason      string    `json:"reason"`
	ConcludedAt time.Time `json:"concluded_at"`
}

type CarrierFaultClassified struct {
	IssueID      string    `json:"issue_id"`
	AdminID      string    `json:"admin_id"`
	Fault        string    `json:"fault"` // carrier_fault or not_carrier_fault
	ClassifiedAt time.Time `json:"classified_at"`
}

type ClaimFiled struct {
	IssueID   string    `json:"issue_id"`
	Reference string    `json:"reference"`
	FiledAt   time.Time `json:"filed_at"`
}

type ClaimStatusChanged struct {
	IssueID      string    `json:"issue_id"`
	Status       string    `json:"status"`
	PayoutAmount int       `json:"payout_amount,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
}

type MessagePosted struct {
	IssueID   string    `json:"issue_id"`
	MessageID string    `json:"message_id"`
	Sender    string    `json:"sender"` // "customer" or "admin"
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	ImageURLs []string  `json:"image_urls,omitempty"`
	PostedAt  time.Time `json:"posted_at"`
}

type MessagesRead struct {
	IssueID string    `json:"issue_id"`
	Side    string    `json:"side"` // "customer" or "admin"
	ReadAt  time.Time `json:"read_at"`
}
