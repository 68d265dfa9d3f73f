package store

import (
	"context"
	"strings"

	"github.com/nikbrunner/netmark/internal/logger"
	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/validate"
)

// AddOrganization creates an organization. The active organization is
// left unchanged unless none was active.
func (s *Store) AddOrganization(ctx context.Context, params model.NewOrganizationParams) (model.Organization, error) {
	if err := validate.Struct(params); err != nil {
		return model.Organization{}, err
	}
	params.Name = strings.TrimSpace(params.Name)
	org := model.NewOrganization(params)

	err := s.mutate(ctx, "add organization", func(st *model.AppState) error {
		st.Organizations = append(st.Organizations, org)
		if st.ActiveOrganization() == nil {
			st.ActiveOrgID = org.ID
		}
		return nil
	})
	if err != nil {
		return model.Organization{}, err
	}

	s.log.Debug("organization added", logger.String("id", org.ID), logger.String("name", org.Name))
	return org, nil
}

// SetActiveOrg switches organizations and returns the view to the
// dashboard.
func (s *Store) SetActiveOrg(ctx context.Context, orgID string) error {
	return s.mutate(ctx, "set active organization", func(st *model.AppState) error {
		if st.GetOrganizationByID(orgID) == nil {
			return &model.NotFoundError{Kind: "organization", ID: orgID}
		}
		st.ActiveOrgID = orgID
		st.ActiveFolder = model.Dashboard()
		return nil
	})
}

// requireActiveOrg returns the active organization id of st.
func requireActiveOrg(st *model.AppState) (string, error) {
	if st.ActiveOrgID == "" {
		return "", &model.ValidationError{Field: "orgId", Reason: "no active organization"}
	}
	if st.ActiveOrganization() == nil {
		return "", &model.NotFoundError{Kind: "organization", ID: st.ActiveOrgID}
	}
	return st.ActiveOrgID, nil
}
