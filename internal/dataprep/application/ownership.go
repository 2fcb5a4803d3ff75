package application

import (
	"fmt"

	dataprep "lantern/internal/dataprep/domain"
)

// AssignOwnership zeroes the PV rows of the members drawn as non-owners.
// It returns the updated table and the zeroed member indices in draw order.
func AssignOwnership(pv *dataprep.Table, sampler *Sampler, pvPercentage int) (*dataprep.Table, []int, error) {
	if pv == nil {
		return nil, nil, dataprep.ErrNilTable
	}
	members := pv.Rows()
	nonOwners, err := sampler.Sample(members, dataprep.MembersWithoutPV(members, pvPercentage))
	if err != nil {
		return nil, nil, fmt.Errorf("sample members without pv: %w", err)
	}
	if len(nonOwners) == 0 {
		return pv, nonOwners, nil
	}
	zeroed, err := pv.ZeroRows(nonOwners)
	if err != nil {
		return nil, nil, err
	}
	return zeroed, nonOwners, nil
}
