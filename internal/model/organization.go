package model

// DefaultOrgColor is used when an organization is created without a color.
const DefaultOrgColor = "blue"

// Organization is a top-level workspace isolating folders and bookmarks.
type Organization struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// NewOrganizationParams holds parameters for creating a new Organization.
type NewOrganizationParams struct {
	Name  string `json:"name" validate:"notblank"`
	Color string `json:"color"`
}

// NewOrganization creates an Organization with generated id.
func NewOrganization(params NewOrganizationParams) Organization {
	color := params.Color
	if color == "" {
		color = DefaultOrgColor
	}
	return Organization{
		ID:    GenerateID(),
		Name:  params.Name,
		Color: color,
	}
}
