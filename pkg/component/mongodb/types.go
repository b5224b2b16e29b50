package mongodb

// collectionTypeView is the type reported by listCollections for views.
const collectionTypeView = "view"

// ReplSetMember is one member entry of a replSetGetStatus payload.
type ReplSetMember struct {
	Name     string `bson:"name"`
	State    int32  `bson:"state"`
	StateStr string `bson:"stateStr"`
	Self     bool   `bson:"self"`
}

// ReplSetStatus is the subset of the replSetGetStatus payload the checklist
// reports on.
type ReplSetStatus struct {
	Set     string          `bson:"set"`
	MyState int32           `bson:"myState"`
	Members []ReplSetMember `bson:"members"`
}

// Primary returns the name of the PRIMARY member. When no member reports
// PRIMARY state it falls back to the first member, matching the degraded
// cluster case where the listing is still worth printing.
func (s ReplSetStatus) Primary() string {
	for _, m := range s.Members {
		if m.StateStr == "PRIMARY" {
			return m.Name
		}
	}
	if len(s.Members) > 0 {
		return s.Members[0].Name
	}
	return ""
}

// CollectionInfo is the name and type metadata of one collection.
type CollectionInfo struct {
	Name string
	Type string
}

// IsView reports whether the name refers to a view rather than a base
// collection. Validate and index operations are not defined on views.
func (c CollectionInfo) IsView() bool {
	return c.Type == collectionTypeView
}

// ValidationResult is the outcome of the validate command on one collection.
// Details carries the full server payload as canonical extended JSON.
type ValidationResult struct {
	Valid   bool
	Details string
}

// IndexInfo is one index of a collection: its name and key document.
type IndexInfo struct {
	Name string
	Keys string
}
