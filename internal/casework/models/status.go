// Package models holds the SocialCase aggregate, its items and the rules that
// derive a case's status from the status of its items.
package models

// CaseStatus is the lifecycle state of a SocialCase.
type CaseStatus string

const (
	CaseStatusOpen       CaseStatus = "open"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusApproved   CaseStatus = "approved"
	CaseStatusRejected   CaseStatus = "rejected"
	CaseStatusClosed     CaseStatus = "closed"
)

func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusInProgress, CaseStatusApproved, CaseStatusRejected, CaseStatusClosed:
		return true
	}
	return false
}

// IsActive reports whether the status blocks a second case for the same
// beneficiary and category.
func (s CaseStatus) IsActive() bool {
	return s == CaseStatusOpen || s == CaseStatusInProgress
}

// IsTerminal reports whether the case accepts no further item mutation.
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusClosed || s == CaseStatusRejected
}

func (s CaseStatus) String() string {
	return string(s)
}

// ItemStatus is the lifecycle state of a CaseItem.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusApproved  ItemStatus = "approved"
	ItemStatusRejected  ItemStatus = "rejected"
	ItemStatusFulfilled ItemStatus = "fulfilled"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusApproved, ItemStatusRejected, ItemStatusFulfilled:
		return true
	}
	return false
}

// IsDecision reports whether s is a valid review outcome.
func (s ItemStatus) IsDecision() bool {
	return s == ItemStatusApproved || s == ItemStatusRejected
}

func (s ItemStatus) String() string {
	return string(s)
}

// Channel is how the request reached the office.
type Channel string

const (
	ChannelWalkIn   Channel = "walk_in"
	ChannelPhone    Channel = "phone"
	ChannelWeb      Channel = "web"
	ChannelReferral Channel = "referral"
	ChannelOutreach Channel = "outreach"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelWalkIn, ChannelPhone, ChannelWeb, ChannelReferral, ChannelOutreach:
		return true
	}
	return false
}
