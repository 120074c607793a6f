package model

// Capability names checked by the authorization collaborator.
const (
	CapabilityView        = "mod/snippet:view"
	CapabilityAddSnip     = "mod/snippet:addsnip"
	CapabilityAddCategory = "mod/snippet:addcategory"
)
