package model

// ContainmentLink describes how a child type points at its parent.
type ContainmentLink struct {
	Child NodeType
	// Field is the child attribute holding the parent id.
	Field string
	// ExcludeField, when set, drops children that carry this attribute. It
	// keeps nested locations under their parent location instead of the
	// campaign.
	ExcludeField string
}

const (
	FieldWorldID          = "world_id"
	FieldCampaignID       = "campaign_id"
	FieldParentLocationID = "parent_location_id"
)

var containment = map[NodeType][]ContainmentLink{
	NodeWorld: {
		{Child: NodeCampaign, Field: FieldWorldID},
	},
	NodeCampaign: {
		{Child: NodeSession, Field: FieldCampaignID},
		{Child: NodeCharacter, Field: FieldCampaignID},
		{Child: NodeLocation, Field: FieldCampaignID, ExcludeField: FieldParentLocationID},
		{Child: NodeItem, Field: FieldCampaignID},
		{Child: NodeEvent, Field: FieldCampaignID},
		{Child: NodePower, Field: FieldCampaignID},
	},
	NodeLocation: {
		{Child: NodeLocation, Field: FieldParentLocationID},
	},
}

// ChildLinks returns the containment links of a parent type in schema order.
func ChildLinks(parent NodeType) []ContainmentLink {
	return containment[parent]
}

// IsChildOf reports whether e is contained by the parent under link.
func (l ContainmentLink) IsChildOf(e Entity, parentID string) bool {
	if e.Type != l.Child || e.Attr(l.Field) != parentID {
		return false
	}
	if l.ExcludeField != "" && e.Attr(l.ExcludeField) != "" {
		return false
	}
	return true
}
