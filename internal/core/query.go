package core

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agenthands/loregraph/internal/config"
	"github.com/agenthands/loregraph/internal/core/format"
	"github.com/agenthands/loregraph/internal/core/model"
	apperrors "github.com/agenthands/loregraph/internal/errors"
)

// GraphQuery holds the raw query parameters of a graph request.
type GraphQuery struct {
	WorldID     string `form:"worldId"`
	CampaignID  string `form:"campaignId"`
	SessionID   string `form:"sessionId"`
	CharacterID string `form:"characterId"`
	LocationID  string `form:"locationId"`
	ItemID      string `form:"itemId"`
	EventID     string `form:"eventId"`
	PowerID     string `form:"powerId"`

	Depth         string `form:"depth" validate:"omitempty,number"`
	NodeTypes     string `form:"nodeTypes"`
	EdgeTypes     string `form:"edgeTypes"`
	IncludeImages string `form:"includeImages" validate:"omitempty,boolean"`
	Layout        string `form:"layout" validate:"omitempty,oneof=force hierarchy radial"`
}

// ScopeIDs returns the scope parameters keyed by query parameter name.
func (q GraphQuery) ScopeIDs() map[string]string {
	return map[string]string{
		"worldId":     q.WorldID,
		"campaignId":  q.CampaignID,
		"sessionId":   q.SessionID,
		"characterId": q.CharacterID,
		"locationId":  q.LocationID,
		"itemId":      q.ItemID,
		"eventId":     q.EventID,
		"powerId":     q.PowerID,
	}
}

type HierarchyQuery struct {
	WorldID       string `form:"worldId"`
	CampaignID    string `form:"campaignId"`
	Depth         string `form:"depth" validate:"omitempty,number"`
	IncludeImages string `form:"includeImages" validate:"omitempty,boolean"`
}

type GraphOptions struct {
	Depth         int
	NodeTypes     model.NodeTypeSet
	EdgeTypes     model.EdgeTypeSet
	IncludeImages bool
	Layout        format.Layout
	// IgnoredScopes lists scope parameters that lost to a higher precedence
	// one.
	IgnoredScopes []string
}

type HierarchyOptions struct {
	Depth         int
	IncludeImages bool
	IgnoredScopes []string
}

// Limits bound the depth parameters.
type Limits struct {
	DefaultDepth          int
	DefaultHierarchyDepth int
	MaxDepth              int
}

func LimitsFromConfig(cfg config.GraphConfig) Limits {
	return Limits{
		DefaultDepth:          cfg.DefaultDepth,
		DefaultHierarchyDepth: cfg.DefaultHierarchyDepth,
		MaxDepth:              cfg.MaxDepth,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report query parameter names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return apperrors.NewValidationError("", err.Error())
	}
	fe := ves[0]
	var msg string
	switch fe.Tag() {
	case "number":
		msg = "must be a non-negative integer"
	case "boolean":
		msg = "must be a boolean"
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		msg = fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
	return apperrors.NewValidationError(fe.Field(), msg)
}

// ParseGraphQuery resolves the scope and filters of a graph request.
func ParseGraphQuery(q GraphQuery, limits Limits) (model.Scope, GraphOptions, error) {
	if err := validate.Struct(q); err != nil {
		return model.Scope{}, GraphOptions{}, validationError(err)
	}

	scope, ignored := model.ResolveScope(q.ScopeIDs())
	opts := GraphOptions{Layout: format.LayoutForce, IgnoredScopes: ignored}

	var err error
	if opts.Depth, err = parseDepth(q.Depth, limits.DefaultDepth, limits.MaxDepth); err != nil {
		return model.Scope{}, GraphOptions{}, err
	}
	if opts.NodeTypes, err = parseNodeTypes(q.NodeTypes); err != nil {
		return model.Scope{}, GraphOptions{}, err
	}
	if opts.EdgeTypes, err = parseEdgeTypes(q.EdgeTypes); err != nil {
		return model.Scope{}, GraphOptions{}, err
	}
	opts.IncludeImages = parseBool(q.IncludeImages)
	if q.Layout != "" {
		if opts.Layout, err = format.ParseLayout(q.Layout); err != nil {
			return model.Scope{}, GraphOptions{}, apperrors.NewValidationError("layout", err.Error())
		}
	}
	return scope, opts, nil
}

// ParseHierarchyQuery resolves a hierarchy request; only worlds and campaigns
// can anchor a tree.
func ParseHierarchyQuery(q HierarchyQuery, limits Limits) (model.Scope, HierarchyOptions, error) {
	if err := validate.Struct(q); err != nil {
		return model.Scope{}, HierarchyOptions{}, validationError(err)
	}

	scope, ignored := model.ResolveScope(map[string]string{
		"worldId":    q.WorldID,
		"campaignId": q.CampaignID,
	})
	depth, err := parseDepth(q.Depth, limits.DefaultHierarchyDepth, limits.MaxDepth)
	if err != nil {
		return model.Scope{}, HierarchyOptions{}, err
	}
	return scope, HierarchyOptions{
		Depth:         depth,
		IncludeImages: parseBool(q.IncludeImages),
		IgnoredScopes: ignored,
	}, nil
}

func parseDepth(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	d, err := strconv.Atoi(raw)
	if err != nil || d < 0 || d > max {
		return 0, apperrors.NewValidationError("depth", fmt.Sprintf("must be an integer within [0, %d], got %q", max, raw))
	}
	return d, nil
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}

// splitTokens splits a comma separated list, ignoring blanks. It returns nil
// when no token is left.
func splitTokens(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func parseNodeTypes(raw string) (model.NodeTypeSet, error) {
	tokens := splitTokens(raw)
	if tokens == nil {
		return nil, nil
	}
	types := make([]model.NodeType, 0, len(tokens))
	for _, tok := range tokens {
		nt, err := model.ParseNodeType(tok)
		if err != nil {
			return nil, apperrors.NewValidationError("nodeTypes", err.Error())
		}
		types = append(types, nt)
	}
	return model.NewNodeTypeSet(types...), nil
}

func parseEdgeTypes(raw string) (model.EdgeTypeSet, error) {
	tokens := splitTokens(raw)
	if tokens == nil {
		return nil, nil
	}
	types := make([]model.EdgeType, 0, len(tokens))
	for _, tok := range tokens {
		et, err := model.ParseEdgeType(tok)
		if err != nil {
			return nil, apperrors.NewValidationError("edgeTypes", err.Error())
		}
		types = append(types, et)
	}
	return model.NewEdgeTypeSet(types...), nil
}
