package mongodb

import "testing"

func TestReplSetStatusPrimary(t *testing.T) {
	tests := []struct {
		name    string
		members []ReplSetMember
		want    string
	}{
		{
			name: "primary present",
			members: []ReplSetMember{
				{Name: "mongo-1:27017", StateStr: "SECONDARY"},
				{Name: "mongo-0:27017", StateStr: "PRIMARY"},
			},
			want: "mongo-0:27017",
		},
		{
			name: "no primary falls back to first member",
			members: []ReplSetMember{
				{Name: "mongo-1:27017", StateStr: "SECONDARY"},
				{Name: "mongo-2:27017", StateStr: "SECONDARY"},
			},
			want: "mongo-1:27017",
		},
		{
			name: "no members",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := ReplSetStatus{Members: tt.members}
			if got := status.Primary(); got != tt.want {
				t.Errorf("Primary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollectionInfoIsView(t *testing.T) {
	if (CollectionInfo{Name: "users", Type: "collection"}).IsView() {
		t.Error("base collection misreported as view")
	}
	if !(CollectionInfo{Name: "active_users", Type: "view"}).IsView() {
		t.Error("view not detected")
	}
	if (CollectionInfo{Name: "ts", Type: "timeseries"}).IsView() {
		t.Error("timeseries collection misreported as view")
	}
}
