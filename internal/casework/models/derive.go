package models

// ItemCounts tallies a case's items by status.
type ItemCounts struct {
	Total     int
	Pending   int
	Approved  int
	Rejected  int
	Fulfilled int
}

// Closed counts items that reached a final disposition.
func (c ItemCounts) Closed() int {
	return c.Approved + c.Rejected + c.Fulfilled
}

func CountItems(items []*CaseItem) ItemCounts {
	var c ItemCounts
	for _, item := range items {
		c.Total++
		switch item.Status {
		case ItemStatusPending:
			c.Pending++
		case ItemStatusApproved:
			c.Approved++
		case ItemStatusRejected:
			c.Rejected++
		case ItemStatusFulfilled:
			c.Fulfilled++
		}
	}
	return c
}

// DeriveMajorityStatus recomputes a case status from its items:
//
//  1. no items: unchanged
//  2. every item approved, rejected or fulfilled: closed
//  3. more than half the items approved: approved
//  4. otherwise unchanged
//
// Rule 2 wins over rule 3. The result depends only on the inputs, so calling
// it repeatedly is safe.
func DeriveMajorityStatus(current CaseStatus, items []*CaseItem) CaseStatus {
	c := CountItems(items)
	if c.Total == 0 {
		return current
	}
	if c.Closed() == c.Total {
		return CaseStatusClosed
	}
	if c.Approved*2 > c.Total && current != CaseStatusApproved {
		return CaseStatusApproved
	}
	return current
}

// DeriveCompletionStatus is the delivery-desk rule: once every item is
// fulfilled or rejected the case is closed if anything was delivered and
// rejected otherwise. Before that point the status is unchanged.
//
// It disagrees with DeriveMajorityStatus on purpose-built inputs, e.g. an
// all-rejected case is closed by one and rejected by the other.
func DeriveCompletionStatus(current CaseStatus, items []*CaseItem) CaseStatus {
	c := CountItems(items)
	if c.Total == 0 || c.Fulfilled+c.Rejected != c.Total {
		return current
	}
	if c.Fulfilled > 0 {
		return CaseStatusClosed
	}
	return CaseStatusRejected
}
