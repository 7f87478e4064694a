package models

import (
	"context"

	"github.com/hostpilotpro/hostpilot_backend/utils"
)

type Resource interface {
	GetOrganizationId() string
}

// first find in redis, then in db, using organization_id in WHERE, cache result
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, organizationId string, id int) (*T, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	result, err := utils.RetrieveRedis[T](organizationId, id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result, err = utils.FetchModel[T](ctx, organizationId, id)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedis[T](result, organizationId, id); err != nil {
			return nil, err
		}
		return result, nil
	}
	// keys are tenant-prefixed; still refuse a mismatched payload
	if (*result).GetOrganizationId() != organizationId {
		return nil, utils.ErrorRecordNotFound
	}
	return result, nil
}
