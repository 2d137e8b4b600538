package domain

// Capability checks over (actor, resource). Each answers one question
// independently of how identifiers are encoded or stored.

// CanMutateListing reports whether actor may update, delete or toggle
// the availability of listing.
func CanMutateListing(actor Identity, listing Listing) bool {
	if !Authorize(&actor, RoleOwner).Allowed {
		return false
	}
	return sameID(actor.ID, listing.OwnerID)
}

// CanTransitionBooking reports whether actor may change booking's
// status. Only the owner captured on the booking qualifies.
func CanTransitionBooking(actor Identity, booking Booking) bool {
	return sameID(actor.ID, booking.OwnerID)
}

// CanViewBooking reports whether actor may read booking.
func CanViewBooking(actor Identity, booking Booking) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleRenter:
		return sameID(actor.ID, booking.RenterID)
	case RoleOwner:
		return sameID(actor.ID, booking.OwnerID)
	}
	return false
}

// CanDeleteIdentity reports whether actor may delete target. Admins are
// never deletable, not even by themselves.
func CanDeleteIdentity(actor Identity, target Identity) bool {
	if actor.Role != RoleAdmin {
		return false
	}
	return target.Role != RoleAdmin
}

func sameID(a, b string) bool {
	return a != "" && a == b
}
