package domain

// DenyReason describes why an authorization check was denied.
type DenyReason int

const (
	// ReasonNone accompanies an Allow decision.
	ReasonNone DenyReason = iota

	// ReasonNoIdentity means the request is unauthenticated.
	ReasonNoIdentity

	// ReasonInsufficientRole means the identity's role is not one of the
	// roles the action requires.
	ReasonInsufficientRole

	// ReasonPendingApproval means an Owner has not been approved by an
	// Admin yet.
	ReasonPendingApproval
)

func (r DenyReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoIdentity:
		return "no identity"
	case ReasonInsufficientRole:
		return "insufficient role"
	case ReasonPendingApproval:
		return "pending approval"
	}
	return "unknown"
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision                  { return Decision{Allowed: true} }
func deny(reason DenyReason) Decision { return Decision{Reason: reason} }

// Err converts a denial into the error taxonomy. It returns nil for an
// allowed decision.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonNoIdentity:
		return ErrMissingToken
	case d.Reason == ReasonPendingApproval:
		return ErrPendingApproval
	}
	return NewError(KindForbidden, "not authorized to access this route, insufficient role")
}

// Authorize decides whether identity may act in one of the required
// roles. The Owner approval gate is applied whenever the identity acts as
// an Owner, regardless of which route asked.
func Authorize(identity *Identity, required ...Role) Decision {
	if identity == nil {
		return deny(ReasonNoIdentity)
	}
	if !hasRole(required, identity.Role) {
		return deny(ReasonInsufficientRole)
	}
	principal, err := identity.Principal()
	if err != nil {
		return deny(ReasonInsufficientRole)
	}
	switch p := principal.(type) {
	case OwnerPrincipal:
		if !p.Approved {
			return deny(ReasonPendingApproval)
		}
	case RenterPrincipal, AdminPrincipal:
	}
	return allow()
}

func hasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
