package model

import (
	"fmt"
	"strings"
)

type NodeType string

const (
	NodeWorld     NodeType = "World"
	NodeCampaign  NodeType = "Campaign"
	NodeSession   NodeType = "Session"
	NodeCharacter NodeType = "Character"
	NodeLocation  NodeType = "Location"
	NodeItem      NodeType = "Item"
	NodeEvent     NodeType = "Event"
	NodePower     NodeType = "Power"
)

// NodeTypes lists every node type in schema order.
var NodeTypes = []NodeType{
	NodeWorld,
	NodeCampaign,
	NodeSession,
	NodeCharacter,
	NodeLocation,
	NodeItem,
	NodeEvent,
	NodePower,
}

// ParseNodeType accepts a node type token in any letter case.
func ParseNodeType(token string) (NodeType, error) {
	t := strings.TrimSpace(token)
	for _, nt := range NodeTypes {
		if strings.EqualFold(string(nt), t) {
			return nt, nil
		}
	}
	return "", fmt.Errorf("unknown node type %q", token)
}

func (t NodeType) Valid() bool {
	for _, nt := range NodeTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// NodeTypeSet is an allow-list of node types. A nil set allows everything.
type NodeTypeSet map[NodeType]struct{}

func NewNodeTypeSet(types ...NodeType) NodeTypeSet {
	s := make(NodeTypeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

func (s NodeTypeSet) Allows(t NodeType) bool {
	if s == nil {
		return true
	}
	_, ok := s[t]
	return ok
}

// EntityRef identifies a stored entity.
type EntityRef struct {
	Type NodeType `json:"type"`
	ID   string   `json:"id"`
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s(%s)", r.Type, r.ID)
}

// Entity is the record returned by an entity store.
type Entity struct {
	ID         string                 `json:"id" yaml:"id"`
	Type       NodeType               `json:"type" yaml:"type"`
	Name       string                 `json:"name" yaml:"name"`
	Image      string                 `json:"image,omitempty" yaml:"image,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

func (e Entity) Ref() EntityRef {
	return EntityRef{Type: e.Type, ID: e.ID}
}

// Attr returns the attribute as a string, or "" when absent or not a string.
func (e Entity) Attr(key string) string {
	if e.Attributes == nil {
		return ""
	}
	s, _ := e.Attributes[key].(string)
	return s
}

func (e Entity) Label() string {
	if e.Name != "" {
		return e.Name
	}
	if title := e.Attr("title"); title != "" {
		return title
	}
	return e.ID
}

type Node struct {
	ID       string                 `json:"id"`
	Type     NodeType               `json:"type"`
	Label    string                 `json:"label"`
	Image    string                 `json:"image,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NodeFromEntity builds the output node for a stored entity. Containment and
// other attributes are carried in metadata; the image is kept only when asked.
func NodeFromEntity(e Entity, includeImage bool) Node {
	n := Node{
		ID:    e.ID,
		Type:  e.Type,
		Label: e.Label(),
	}
	if includeImage {
		n.Image = e.Image
	}
	if len(e.Attributes) > 0 {
		n.Metadata = make(map[string]interface{}, len(e.Attributes))
		for k, v := range e.Attributes {
			n.Metadata[k] = v
		}
	}
	return n
}

func (n Node) Ref() EntityRef {
	return EntityRef{Type: n.Type, ID: n.ID}
}
