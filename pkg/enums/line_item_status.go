package enums

import "fmt"

// LineItemStatus tracks supplier fulfillment progress for one line item.
type LineItemStatus string

const (
	LineItemStatusPending   LineItemStatus = "pending"
	LineItemStatusConfirmed LineItemStatus = "confirmed"
	LineItemStatusPreparing LineItemStatus = "preparing"
	LineItemStatusShipped   LineItemStatus = "shipped"
	LineItemStatusDelivered LineItemStatus = "delivered"
	LineItemStatusCancelled LineItemStatus = "cancelled"
)

var validLineItemStatuses = []LineItemStatus{
	LineItemStatusPending,
	LineItemStatusConfirmed,
	LineItemStatusPreparing,
	LineItemStatusShipped,
	LineItemStatusDelivered,
	LineItemStatusCancelled,
}

// lineItemStatusRank orders the forward progression of the fulfillment chain.
// Terminal states carry no rank.
var lineItemStatusRank = map[LineItemStatus]int{
	LineItemStatusPending:   0,
	LineItemStatusConfirmed: 1,
	LineItemStatusPreparing: 2,
	LineItemStatusShipped:   3,
	LineItemStatusDelivered: 4,
}

// String implements fmt.Stringer.
func (l LineItemStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineItemStatus.
func (l LineItemStatus) IsValid() bool {
	for _, candidate := range validLineItemStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from this state.
func (l LineItemStatus) IsTerminal() bool {
	return l == LineItemStatusDelivered || l == LineItemStatusCancelled
}

// CanTransition reports whether a supplier may move a line item from the
// current state to the target. Progression is forward-only along
// pending, confirmed, preparing, shipped, delivered; cancellation is
// allowed from any non-terminal state.
func (l LineItemStatus) CanTransition(target LineItemStatus) bool {
	if !l.IsValid() || !target.IsValid() {
		return false
	}
	if l.IsTerminal() {
		return false
	}
	if target == LineItemStatusCancelled {
		return true
	}
	from, ok := lineItemStatusRank[l]
	if !ok {
		return false
	}
	to, ok := lineItemStatusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// ParseLineItemStatus converts raw input into a LineItemStatus.
func ParseLineItemStatus(value string) (LineItemStatus, error) {
	for _, candidate := range validLineItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item status %q", value)
}
