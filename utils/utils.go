package utils

import (
	"net/http"
	"time"

	"wayfare/globals"
	"wayfare/middleware"
)

// GetUserIDFromRequest pulls the authenticated user id out of the request
// context set by the auth middleware.
func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetRolesFromRequest(r *http.Request) []string {
	roles, ok := r.Context().Value(globals.RoleKey).([]string)
	if !ok {
		return nil
	}
	return roles
}

func GetEmailFromRequest(r *http.Request) string {
	tokenString := r.Header.Get("Authorization")
	claims, err := middleware.ValidateJWT(tokenString)
	if err != nil {
		return ""
	}
	return claims.Email
}

// TodayUTC is midnight of the current day in UTC, the reference point for
// all date-window checks.
func TodayUTC() time.Time {
	return MidnightUTC(time.Now().UTC())
}

func MidnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
