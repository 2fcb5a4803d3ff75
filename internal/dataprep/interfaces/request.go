package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"lantern/internal/dataprep/application"
	dataprep "lantern/internal/dataprep/domain"
)

const maxRequestBytes = 1 << 16

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = errors.New("invalid json")

type requestPayload struct {
	CommunitySize *int    `json:"community_size"`
	Season        *string `json:"season"`
	PVPercentage  *int    `json:"pv_percentage"`
	SDPercentage  *int    `json:"sd_percentage"`
	WithBattery   bool    `json:"with_battery"`
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (application.PrepareRequest, error) {
	defer r.Body.Close()
	var payload requestPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&payload); err != nil {
		return application.PrepareRequest{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return payload.toRequest()
}

func (p requestPayload) toRequest() (application.PrepareRequest, error) {
	switch {
	case p.Season == nil:
		return application.PrepareRequest{}, fmt.Errorf("%w: missing season", dataprep.ErrInvalidSeason)
	case p.CommunitySize == nil:
		return application.PrepareRequest{}, missing("community_size")
	case p.PVPercentage == nil:
		return application.PrepareRequest{}, missing("pv_percentage")
	case p.SDPercentage == nil:
		return application.PrepareRequest{}, missing("sd_percentage")
	}
	return application.PrepareRequest{
		CommunitySize: *p.CommunitySize,
		Season:        *p.Season,
		PVPercentage:  *p.PVPercentage,
		SDPercentage:  *p.SDPercentage,
		WithBattery:   p.WithBattery,
	}, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", dataprep.ErrInvalidParameter, field)
}
