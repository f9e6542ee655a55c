package graph

import (
	"hash/fnv"
	"maps"
	"slices"
	"strings"
)

// TypeStyle describes how a relationship type is presented.
type TypeStyle struct {
	Color string `json:"color"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// DefaultTypeStyle is used for relationship types missing from the table.
var DefaultTypeStyle = TypeStyle{Color: "#94a3b8", Label: "Connection", Icon: "🔗"}

var relationshipTypes = map[string]TypeStyle{
	"colleague":    {Color: "#3b82f6", Label: "Colleague", Icon: "💼"},
	"friend":       {Color: "#22c55e", Label: "Friend", Icon: "🤝"},
	"family":       {Color: "#ef4444", Label: "Family", Icon: "🏠"},
	"mentor":       {Color: "#a855f7", Label: "Mentor", Icon: "🎓"},
	"mentee":       {Color: "#c084fc", Label: "Mentee", Icon: "📘"},
	"business":     {Color: "#f59e0b", Label: "Business", Icon: "📈"},
	"client":       {Color: "#14b8a6", Label: "Client", Icon: "🧾"},
	"investor":     {Color: "#eab308", Label: "Investor", Icon: "💰"},
	"classmate":    {Color: "#06b6d4", Label: "Classmate", Icon: "🏫"},
	"partner":      {Color: "#ec4899", Label: "Partner", Icon: "💞"},
	"acquaintance": {Color: "#64748b", Label: "Acquaintance", Icon: "👋"},
}

// TypeInfo returns the presentation of a relationship type. Lookup is case
// insensitive; unknown types get DefaultTypeStyle.
func TypeInfo(relType string) TypeStyle {
	if s, ok := relationshipTypes[strings.ToLower(strings.TrimSpace(relType))]; ok {
		return s
	}
	return DefaultTypeStyle
}

// KnownTypes returns the relationship types with a dedicated style, sorted.
func KnownTypes() []string {
	return slices.Sorted(maps.Keys(relationshipTypes))
}

// DefaultNodeColor is the color of nodes without a company.
const DefaultNodeColor = "#9ca3af"

var companyPalette = []string{
	"#2563eb", "#16a34a", "#dc2626", "#9333ea",
	"#ea580c", "#0891b2", "#db2777", "#65a30d",
	"#4f46e5", "#0d9488", "#ca8a04", "#be123c",
}

// CompanyColor maps a company name to a stable palette color. Names are
// compared case-insensitively so "Acme" and "acme " share a color.
func CompanyColor(company string) string {
	key := strings.ToLower(strings.TrimSpace(company))
	if key == "" {
		return DefaultNodeColor
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return companyPalette[h.Sum32()%uint32(len(companyPalette))]
}
