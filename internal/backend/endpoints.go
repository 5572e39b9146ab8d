package backend

import (
	"strconv"
	"strings"
)

// Collection and action paths relative to the API base URL.
const (
	PathExhibitors = "exhibitor-registrations/"
	PathVisitors   = "visitor-registrations/"
	PathEvents     = "events/"
	PathCategories = "categories/"
	PathGallery    = "gallery/"

	PathTeamList   = "team/list/"
	PathTeamCreate = "team/create/"
	PathTeamDelete = "team/delete/"

	PathLogin          = "login/"
	PathSendOTP        = "password/send-otp/"
	PathVerifyOTP      = "password/verify-otp/"
	PathCreatePassword = "password/create/"

	PathHealth = "health/"
)

// ItemPath returns "{collection}{id}/".
func ItemPath(collection string, id int64) string {
	if !strings.HasSuffix(collection, "/") {
		collection += "/"
	}
	return collection + strconv.FormatInt(id, 10) + "/"
}

// EndpointLabel collapses numeric path segments so metric labels stay bounded.
func EndpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/") + "/"
}
