package model

type ScopeKind string

const (
	ScopeNone      ScopeKind = "none"
	ScopeWorld     ScopeKind = "world"
	ScopeCampaign  ScopeKind = "campaign"
	ScopeSession   ScopeKind = "session"
	ScopeCharacter ScopeKind = "character"
	ScopeLocation  ScopeKind = "location"
	ScopeItem      ScopeKind = "item"
	ScopeEvent     ScopeKind = "event"
	ScopePower     ScopeKind = "power"
)

type scopeInfo struct {
	kind     ScopeKind
	param    string
	nodeType NodeType
}

// scopePrecedence decides which scope wins when several ids are supplied.
var scopePrecedence = []scopeInfo{
	{ScopeWorld, "worldId", NodeWorld},
	{ScopeCampaign, "campaignId", NodeCampaign},
	{ScopeSession, "sessionId", NodeSession},
	{ScopeCharacter, "characterId", NodeCharacter},
	{ScopeLocation, "locationId", NodeLocation},
	{ScopeItem, "itemId", NodeItem},
	{ScopeEvent, "eventId", NodeEvent},
	{ScopePower, "powerId", NodePower},
}

// Scope anchors a graph request. The zero value is the global scope.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

func (s Scope) IsGlobal() bool {
	return s.Kind == "" || s.Kind == ScopeNone
}

// Param is the query parameter that selects this scope.
func (s Scope) Param() string {
	for _, info := range scopePrecedence {
		if info.kind == s.Kind {
			return info.param
		}
	}
	return ""
}

// Ref returns the root entity of the scope; ok is false for the global scope.
func (s Scope) Ref() (EntityRef, bool) {
	for _, info := range scopePrecedence {
		if info.kind == s.Kind {
			return EntityRef{Type: info.nodeType, ID: s.ID}, true
		}
	}
	return EntityRef{}, false
}

// ResolveScope picks the first supplied id in precedence order. ids is keyed
// by query parameter name. ignored lists the other non-empty parameters.
func ResolveScope(ids map[string]string) (scope Scope, ignored []string) {
	scope = Scope{Kind: ScopeNone}
	for _, info := range scopePrecedence {
		id := ids[info.param]
		if id == "" {
			continue
		}
		if scope.IsGlobal() {
			scope = Scope{Kind: info.kind, ID: id}
			continue
		}
		ignored = append(ignored, info.param)
	}
	return scope, ignored
}
