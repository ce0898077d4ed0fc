package entry

import (
	"fmt"
	"strings"
)

// EntityType identifies one of the fixed record kinds stored in the table.
// The set is closed: adding a type is additive, removing or renaming one
// would orphan existing entryId prefixes and requires a data migration.
type EntityType string

const (
	EntityTypeDailyLog EntityType = "DAILY_LOG"
	EntityTypeBecome   EntityType = "BECOME"
	EntityTypeSuccess  EntityType = "SUCCESS"
	EntityTypeLetGod   EntityType = "LETGOD"
	EntityTypeSelfReg  EntityType = "SELFREG"
)

// LegacyEntriesRoute is the backward-compatible alias route that predates the
// generic entity routes. It maps to the daily-log entity type but keeps its
// own, smaller list limits.
const LegacyEntriesRoute = "entries"

// AllEntityTypes lists every registered entity type.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTypeDailyLog,
		EntityTypeBecome,
		EntityTypeSuccess,
		EntityTypeLetGod,
		EntityTypeSelfReg,
	}
}

// Schema describes how an entity type appears on the wire and in storage.
type Schema struct {
	// RouteSegment is the path segment under /api/.
	RouteSegment string
	// StoragePrefix is the sort-key prefix embedded in every entryId.
	StoragePrefix string
	// Legacy marks the alias route, which uses tighter list limits.
	Legacy bool
}

// UnknownEntityTypeError is returned when a route segment or logical name is
// not registered.
type UnknownEntityTypeError struct {
	Name string
}

func (e *UnknownEntityTypeError) Error() string {
	return fmt.Sprintf("unknown entity type: %s", e.Name)
}

// Schema returns the wire/storage mapping for the entity type.
func (t EntityType) Schema() Schema {
	switch t {
	case EntityTypeDailyLog:
		return Schema{RouteSegment: "daily-log", StoragePrefix: "DAILY_LOG"}
	case EntityTypeBecome:
		return Schema{RouteSegment: "become", StoragePrefix: "BECOME"}
	case EntityTypeSuccess:
		return Schema{RouteSegment: "success", StoragePrefix: "SUCCESS"}
	case EntityTypeLetGod:
		return Schema{RouteSegment: "letgod", StoragePrefix: "LETGOD"}
	case EntityTypeSelfReg:
		return Schema{RouteSegment: "selfreg", StoragePrefix: "SELFREG"}
	}
	return Schema{}
}

// Valid reports whether the entity type is one of the registered kinds.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeDailyLog, EntityTypeBecome, EntityTypeSuccess,
		EntityTypeLetGod, EntityTypeSelfReg:
		return true
	}
	return false
}

// ResolveRoute maps a URL route segment (case-insensitive) to its entity
// type. The legacy "entries" alias resolves to the daily-log type with
// Legacy set on the returned schema.
func ResolveRoute(segment string) (EntityType, Schema, error) {
	seg := strings.ToLower(strings.TrimSpace(segment))
	if seg == LegacyEntriesRoute {
		s := EntityTypeDailyLog.Schema()
		s.RouteSegment = LegacyEntriesRoute
		s.Legacy = true
		return EntityTypeDailyLog, s, nil
	}
	for _, t := range AllEntityTypes() {
		if t.Schema().RouteSegment == seg {
			return t, t.Schema(), nil
		}
	}
	return "", Schema{}, &UnknownEntityTypeError{Name: segment}
}

// ResolveName maps a logical entity name (the route segment spelling) to its
// schema. It exists for callers that hold a name rather than a request path.
func ResolveName(name string) (EntityType, Schema, error) {
	return ResolveRoute(name)
}
