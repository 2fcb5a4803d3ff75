package dataprep

const (
	MinCommunitySize = 5
	MaxCommunitySize = 100
	MinPercentage    = 0
	MaxPercentage    = 100
)

// SamplingParameters are the validated user choices for one pipeline run.
type SamplingParameters struct {
	CommunitySize int
	Season        Season
	PVPercentage  int
	SDPercentage  int
	WithBattery   bool
}

// NewSamplingParameters validates raw inputs. The season is checked first, then
// community size, PV percentage and smart-device percentage, in that order.
func NewSamplingParameters(communitySize int, season string, pvPercentage, sdPercentage int, withBattery bool) (SamplingParameters, error) {
	parsed, err := ParseSeason(season)
	if err != nil {
		return SamplingParameters{}, err
	}
	if err := checkRange("community_size", communitySize, MinCommunitySize, MaxCommunitySize); err != nil {
		return SamplingParameters{}, err
	}
	if err := checkRange("pv_percentage", pvPercentage, MinPercentage, MaxPercentage); err != nil {
		return SamplingParameters{}, err
	}
	if err := checkRange("sd_percentage", sdPercentage, MinPercentage, MaxPercentage); err != nil {
		return SamplingParameters{}, err
	}
	return SamplingParameters{
		CommunitySize: communitySize,
		Season:        parsed,
		PVPercentage:  pvPercentage,
		SDPercentage:  sdPercentage,
		WithBattery:   withBattery,
	}, nil
}

// MembersWithoutPV returns community_size - floor(pv_percentage * community_size / 100).
func (p SamplingParameters) MembersWithoutPV() int {
	return MembersWithoutPV(p.CommunitySize, p.PVPercentage)
}

// MembersWithoutPV rounds owners down, so an uneven split yields more non-owners.
func MembersWithoutPV(communitySize, pvPercentage int) int {
	return communitySize - pvPercentage*communitySize/100
}

func checkRange(name string, value, min, max int) error {
	if value < min || value > max {
		return &ParameterError{Name: name, Value: value, Min: min, Max: max}
	}
	return nil
}
