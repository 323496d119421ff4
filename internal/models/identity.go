package models

// Identity is the caller identity resolved once at the request boundary.
// OrganizationID is set when the caller acts on behalf of an organization
// they are a member of.
type Identity struct {
	UserID         uint64  `json:"user_id"`
	OrganizationID *uint64 `json:"organization_id,omitempty"`
}

// OwnerID returns the tenant partition key: the organization ID when
// present, otherwise the user ID.
func (i Identity) OwnerID() uint64 {
	if i.OrganizationID != nil {
		return *i.OrganizationID
	}
	return i.UserID
}
