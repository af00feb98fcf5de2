package handler

import (
	"net/http"

	snapshotdomain "hotel-ops-go/internal/domain/snapshot"
	syncdomain "hotel-ops-go/internal/domain/sync"
	"hotel-ops-go/internal/transport/httpserver/middleware"
)

func parseRole(value string) (syncdomain.Role, bool) {
	switch syncdomain.Role(value) {
	case syncdomain.RoleAdmin, syncdomain.RoleManager, syncdomain.RoleStaff, syncdomain.RoleGuest:
		return syncdomain.Role(value), true
	default:
		return "", false
	}
}

// requireActor pulls the verified principal off the request. A principal
// with an unknown role never reaches the domain layer.
func requireActor(w http.ResponseWriter, r *http.Request) (syncdomain.Actor, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return syncdomain.Actor{}, false
	}

	role, ok := parseRole(user.Role)
	if !ok {
		writeError(w, http.StatusForbidden, "unknown_role", "account role is not recognized")
		return syncdomain.Actor{}, false
	}

	return syncdomain.Actor{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    role,
		HotelID: user.HotelID,
	}, true
}

func snapshotActor(actor syncdomain.Actor) snapshotdomain.Actor {
	return snapshotdomain.Actor{
		ID:      actor.ID,
		Role:    snapshotdomain.Role(actor.Role),
		HotelID: actor.HotelID,
	}
}
