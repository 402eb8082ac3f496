package entity

import (
	"time"

	"baybook/core/entity"
)

type (
	Role             string
	MembershipStatus string
)

const (
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
	RoleAdmin  Role = "admin"

	MembershipActive    MembershipStatus = "active"
	MembershipCancelled MembershipStatus = "cancelled"
)

// User covers both registered members and guests created on the fly during
// guest checkout. Membership fields are nil until a subscription event for
// the user's customer ref arrives.
type User struct {
	Email              string            `db:"email" json:"email"`
	Name               string            `db:"name" json:"name"`
	Phone              *string           `db:"phone" json:"phone,omitempty"`
	Role               Role              `db:"role" json:"role"`
	MembershipTier     *string           `db:"membership_tier" json:"membershipTier,omitempty"`
	MembershipStatus   *MembershipStatus `db:"membership_status" json:"membershipStatus,omitempty"`
	CurrentPeriodStart *time.Time        `db:"current_period_start" json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   *time.Time        `db:"current_period_end" json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd  bool              `db:"cancel_at_period_end" json:"cancelAtPeriodEnd"`
	CustomerRef        *string           `db:"customer_ref" json:"-"`
	entity.BaseEntity
}

func (u *User) HasActiveMembership() bool {
	return u.MembershipStatus != nil && *u.MembershipStatus == MembershipActive && u.MembershipTier != nil
}
